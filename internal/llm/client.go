package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/metrics"
	"github.com/Atarvano/ManifestAi/internal/observability"
)

const (
	deepseekBaseURL = "https://api.deepseek.com/v1"
	groqBaseURL     = "https://api.groq.com/openai/v1"

	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.3
	defaultMaxTokens   = 8000

	// logisticsSystemPrompt primes chat models for manifest work.
	logisticsSystemPrompt = "You are a logistics and customs expert specializing in Indonesian shipping manifest data normalization and HS code classification."
)

// ChatClient talks to an OpenAI-compatible chat completions endpoint
// (DeepSeek, Groq).
type ChatClient struct {
	name         string
	apiKey       string
	baseURL      string
	model        string
	fastModel    string
	systemPrompt string
	timeout      time.Duration
	temperature  float32
	maxTokens    int
	httpClient   *http.Client
	logger       *observability.Logger
}

// ChatConfig configures a ChatClient.
type ChatConfig struct {
	Name         string
	APIKey       string
	BaseURL      string
	Model        string
	FastModel    string
	SystemPrompt string
	Timeout      time.Duration
	Temperature  float32
	MaxTokens    int
	HTTPClient   *http.Client
	Logger       *observability.Logger
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents the API request structure
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

// Response represents the API response structure
type Response struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
}

// Choice represents a single completion choice
type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// NewChatClient creates a new chat completions client. A missing API key is
// a configuration error reported before any network call.
func NewChatClient(cfg ChatConfig) (*ChatClient, error) {
	if cfg.Name == "" {
		return nil, domain.ConfigurationError("provider name is required", nil)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ConfigurationError(fmt.Sprintf("%s API key not configured", cfg.Name), nil)
	}
	if cfg.BaseURL == "" {
		return nil, domain.ConfigurationError(fmt.Sprintf("%s base URL not configured", cfg.Name), nil)
	}
	if cfg.Model == "" {
		return nil, domain.ConfigurationError(fmt.Sprintf("%s model not configured", cfg.Name), nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &ChatClient{
		name:         cfg.Name,
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		model:        cfg.Model,
		fastModel:    cfg.FastModel,
		systemPrompt: cfg.SystemPrompt,
		timeout:      cfg.Timeout,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		httpClient:   cfg.HTTPClient,
		logger:       observability.OrNop(cfg.Logger).WithProvider(cfg.Name),
	}, nil
}

// NewDeepSeekClient creates a client for the DeepSeek chat API.
func NewDeepSeekClient(cfg ChatConfig) (*ChatClient, error) {
	cfg.Name = "deepseek"
	if cfg.BaseURL == "" {
		cfg.BaseURL = deepseekBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	return NewChatClient(cfg)
}

// NewGroqClient creates a client for the Groq chat API.
func NewGroqClient(cfg ChatConfig) (*ChatClient, error) {
	cfg.Name = "groq"
	if cfg.BaseURL == "" {
		cfg.BaseURL = groqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	if cfg.FastModel == "" {
		cfg.FastModel = "llama-3.1-8b-instant"
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = logisticsSystemPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return NewChatClient(cfg)
}

// Name returns the provider name.
func (c *ChatClient) Name() string {
	return c.name
}

// Complete sends one chat completion request and returns the reply text.
func (c *ChatClient) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", domain.InvalidRequestError("prompt is empty")
	}

	req := c.buildRequest(prompt, opts)
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()
	text, err := c.send(ctx, body)
	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
		if outcome == "" {
			outcome = "canceled"
		}
	}
	metrics.ObserveProviderCall(c.name, outcome, time.Since(start))

	c.logger.Debug().
		Str("model", req.Model).
		Dur("elapsed", time.Since(start)).
		Str("outcome", outcome).
		Msg("chat completion finished")

	return text, err
}

// buildRequest constructs the API request for a prompt
func (c *ChatClient) buildRequest(prompt string, opts domain.CompletionOptions) *Request {
	model := c.model
	if opts.Fast && c.fastModel != "" {
		model = c.fastModel
	}
	if opts.Model != "" {
		model = opts.Model
	}

	temperature := c.temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	maxTokens := c.maxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}

	messages := make([]Message, 0, 2)
	if c.systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: c.systemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	return &Request{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      false,
	}
}

// send performs the HTTP exchange under the per-call timeout
func (c *ChatClient) send(ctx context.Context, body []byte) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransport(c.name, ctx, callCtx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(c.name, ctx, callCtx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", classifyStatus(c.name, resp.StatusCode, respBody)
	}

	var parsed Response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", domain.MalformedResponseError(fmt.Sprintf("%s returned a non-JSON body", c.name))
	}
	if len(parsed.Choices) == 0 {
		return "", domain.MalformedResponseError(fmt.Sprintf("%s response has no choices", c.name))
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", domain.MalformedResponseError(fmt.Sprintf("%s response has empty content", c.name))
	}
	return text, nil
}

var _ domain.Provider = (*ChatClient)(nil)
