package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

func TestNewChatClient(t *testing.T) {
	tests := []struct {
		name      string
		apiKey    string
		model     string
		wantError bool
	}{
		{
			name:   "valid api key and default model",
			apiKey: "sk-test-key",
		},
		{
			name:   "valid api key and custom model",
			apiKey: "sk-test-key",
			model:  "deepseek-reasoner",
		},
		{
			name:      "empty api key",
			apiKey:    "  ",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewDeepSeekClient(ChatConfig{APIKey: tt.apiKey, Model: tt.model})
			if tt.wantError {
				require.Error(t, err)
				assert.Equal(t, domain.ErrorTypeConfiguration, domain.KindOf(err))
				return
			}

			require.NoError(t, err)
			expectedModel := tt.model
			if expectedModel == "" {
				expectedModel = "deepseek-chat"
			}
			assert.Equal(t, expectedModel, client.model)
			assert.Equal(t, deepseekBaseURL, client.baseURL)
			assert.Equal(t, "deepseek", client.Name())
		})
	}
}

func TestBuildRequest(t *testing.T) {
	client, err := NewGroqClient(ChatConfig{APIKey: "test-key", Temperature: 0.3, MaxTokens: 8000})
	require.NoError(t, err)

	req := client.buildRequest("classify this", domain.CompletionOptions{})
	assert.Equal(t, "llama-3.3-70b-versatile", req.Model)
	assert.Equal(t, float32(0.3), req.Temperature)
	assert.Equal(t, 8000, req.MaxTokens)
	assert.False(t, req.Stream)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, logisticsSystemPrompt, req.Messages[0].Content)
	assert.Equal(t, "classify this", req.Messages[1].Content)

	fast := client.buildRequest("x", domain.CompletionOptions{Fast: true, Temperature: domain.Temperature(0), MaxTokens: 50})
	assert.Equal(t, "llama-3.1-8b-instant", fast.Model)
	assert.Equal(t, float32(0), fast.Temperature)
	assert.Equal(t, 50, fast.MaxTokens)

	explicit := client.buildRequest("x", domain.CompletionOptions{Fast: true, Model: "custom"})
	assert.Equal(t, "custom", explicit.Model)
}

func newTestChatClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *ChatClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewChatClient(ChatConfig{
		Name:    "test",
		APIKey:  "sk-test",
		BaseURL: server.URL,
		Model:   "test-model",
		Timeout: timeout,
	})
	require.NoError(t, err)
	return client
}

func TestCompleteSuccess(t *testing.T) {
	client := newTestChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"message":{"role":"assistant","content":"  [1,2]  "}}]}`))
	}, time.Second)

	text, err := client.Complete(context.Background(), "prompt", domain.CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", text)
}

func TestCompleteClassifiesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Invalid API key"}}`, domain.ErrorTypeUnauthorized},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, domain.ErrorTypeRateLimited},
		{"server error", http.StatusBadGateway, `upstream`, domain.ErrorTypeServerError},
		{"no choices", http.StatusOK, `{"choices":[]}`, domain.ErrorTypeMalformedResponse},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`, domain.ErrorTypeMalformedResponse},
		{"not json", http.StatusOK, `<html>`, domain.ErrorTypeMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestChatClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, time.Second)

			_, err := client.Complete(context.Background(), "prompt", domain.CompletionOptions{})
			require.Error(t, err)
			assert.Equal(t, tt.want, domain.KindOf(err))
			assert.True(t, domain.IsProviderFailure(err))
		})
	}
}

func TestCompleteErrorDetail(t *testing.T) {
	client := newTestChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API key"}}`))
	}, time.Second)

	_, err := client.Complete(context.Background(), "prompt", domain.CompletionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401: Invalid API key")
}

func TestCompleteTimeout(t *testing.T) {
	client := newTestChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)

	_, err := client.Complete(context.Background(), "prompt", domain.CompletionOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeTimeout, domain.KindOf(err))
}

func TestCompleteCallerCancellationIsNotProviderFailure(t *testing.T) {
	client := newTestChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		// The server only notices the client hanging up once the body is read.
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Complete(ctx, "prompt", domain.CompletionOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, domain.IsProviderFailure(err))
}

func TestCompleteRejectsEmptyPrompt(t *testing.T) {
	client := newTestChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, time.Second)

	_, err := client.Complete(context.Background(), "  ", domain.CompletionOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeInvalidRequest, domain.KindOf(err))
}

func TestCompleteTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewChatClient(ChatConfig{Name: "test", APIKey: "k", BaseURL: url, Model: "m", Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "prompt", domain.CompletionOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeTransport, domain.KindOf(err))
}
