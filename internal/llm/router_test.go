package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

// fakeProvider is a scripted provider that records how it was called.
type fakeProvider struct {
	name  string
	reply string
	err   error
	calls int
	opts  []domain.CompletionOptions
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	f.calls++
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

var testFallbacks = map[string]string{"gemini": "deepseek", "deepseek": "gemini"}

func TestRouterPrimarySuccess(t *testing.T) {
	primary := &fakeProvider{name: "gemini", reply: "primary"}
	secondary := &fakeProvider{name: "deepseek", reply: "secondary"}
	router := NewRouter([]domain.Provider{primary, secondary}, testFallbacks, nil)

	text, err := router.Call(context.Background(), "gemini", "prompt", domain.CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "primary", text)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, secondary.calls)
}

func TestRouterFallsBackExactlyOnce(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: domain.TimeoutError("gemini request timed out", context.DeadlineExceeded)}
	secondary := &fakeProvider{name: "deepseek", reply: "secondary"}
	router := NewRouter([]domain.Provider{primary, secondary}, testFallbacks, nil)

	text, err := router.Call(context.Background(), "gemini", "prompt", domain.CompletionOptions{Model: "gemini-2.5-pro"})
	require.NoError(t, err)
	assert.Equal(t, "secondary", text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)

	assert.Equal(t, "gemini-2.5-pro", primary.opts[0].Model)
	assert.Empty(t, secondary.opts[0].Model)
}

func TestRouterAllProvidersFailed(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: domain.RateLimitedError("gemini returned status 429")}
	secondary := &fakeProvider{name: "deepseek", err: domain.ServerError("deepseek returned status 503")}
	router := NewRouter([]domain.Provider{primary, secondary}, testFallbacks, nil)

	_, err := router.Call(context.Background(), "gemini", "prompt", domain.CompletionOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeAllProvidersFailed, domain.KindOf(err))
	assert.Contains(t, err.Error(), "gemini returned status 429")
	assert.Contains(t, err.Error(), "deepseek returned status 503")
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestRouterDoesNotFallBackOnCallerErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"invalid request", domain.InvalidRequestError("prompt is empty")},
		{"cancelled", context.Canceled},
		{"unclassified", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &fakeProvider{name: "gemini", err: tt.err}
			secondary := &fakeProvider{name: "deepseek", reply: "secondary"}
			router := NewRouter([]domain.Provider{primary, secondary}, testFallbacks, nil)

			_, err := router.Call(context.Background(), "gemini", "prompt", domain.CompletionOptions{})
			assert.ErrorIs(t, err, tt.err)
			assert.Zero(t, secondary.calls)
		})
	}
}

func TestRouterUnknownPrimary(t *testing.T) {
	router := NewRouter([]domain.Provider{&fakeProvider{name: "gemini"}}, testFallbacks, nil)

	_, err := router.Call(context.Background(), "groq", "prompt", domain.CompletionOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConfiguration, domain.KindOf(err))
}

func TestRouterWithoutSecondarySurfacesPrimaryError(t *testing.T) {
	primaryErr := domain.ServerError("down")
	primary := &fakeProvider{name: "gemini", err: primaryErr}
	router := NewRouter([]domain.Provider{primary}, testFallbacks, nil)

	_, err := router.Call(context.Background(), "gemini", "prompt", domain.CompletionOptions{})
	assert.ErrorIs(t, err, primaryErr)
	assert.Equal(t, domain.ErrorTypeServerError, domain.KindOf(err))
}

func TestRouterFor(t *testing.T) {
	primary := &fakeProvider{name: "deepseek", err: domain.UnauthorizedError("bad key")}
	secondary := &fakeProvider{name: "gemini", reply: "8421290000"}
	router := NewRouter([]domain.Provider{primary, secondary}, testFallbacks, nil)

	text, err := router.For("deepseek").Complete(context.Background(), "hs", domain.CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "8421290000", text)
}

func TestRouterPing(t *testing.T) {
	ok := &fakeProvider{name: "gemini", reply: "OK."}
	odd := &fakeProvider{name: "groq", reply: "hello"}
	down := &fakeProvider{name: "deepseek", err: domain.UnauthorizedError("bad key")}
	router := NewRouter([]domain.Provider{ok, odd, down}, nil, nil)

	results := router.Ping(context.Background())
	require.Len(t, results, 3)
	assert.NoError(t, results["gemini"])
	assert.Equal(t, domain.ErrorTypeMalformedResponse, domain.KindOf(results["groq"]))
	assert.Equal(t, domain.ErrorTypeUnauthorized, domain.KindOf(results["deepseek"]))
	assert.True(t, ok.opts[0].Fast)
	assert.Equal(t, []string{"deepseek", "gemini", "groq"}, router.Providers())
}
