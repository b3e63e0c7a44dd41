package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/metrics"
	"github.com/Atarvano/ManifestAi/internal/observability"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient generates text with Google's Gemini API through the genai SDK.
type GeminiClient struct {
	client      *genai.Client
	model       string
	fastModel   string
	timeout     time.Duration
	temperature float32
	maxTokens   int
	logger      *observability.Logger
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	FastModel   string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	Logger      *observability.Logger
}

// NewGeminiClient creates a Gemini provider. A missing API key is a
// configuration error reported before any network call.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ConfigurationError("gemini API key not configured", nil)
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, domain.ConfigurationError("create gemini client", err)
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		fastModel:   cfg.FastModel,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      observability.OrNop(cfg.Logger).WithProvider("gemini"),
	}, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Complete sends a single-turn prompt and returns the reply text.
func (c *GeminiClient) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", domain.InvalidRequestError("prompt is empty")
	}

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

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.generate(ctx, callCtx, model, prompt, temperature, maxTokens)

	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
		if outcome == "" {
			outcome = "canceled"
		}
	}
	metrics.ObserveProviderCall("gemini", outcome, time.Since(start))

	c.logger.Debug().
		Str("model", model).
		Dur("elapsed", time.Since(start)).
		Str("outcome", outcome).
		Msg("gemini generation finished")

	return text, err
}

func (c *GeminiClient) generate(parent, callCtx context.Context, model, prompt string, temperature float32, maxTokens int) (string, error) {
	resp, err := c.client.Models.GenerateContent(callCtx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", classifyStatus("gemini", apiErr.Code, []byte(apiErr.Message))
		}
		return "", classifyTransport("gemini", parent, callCtx, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", domain.MalformedResponseError("gemini response has no candidates")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		reason := ""
		if resp.Candidates[0] != nil {
			reason = string(resp.Candidates[0].FinishReason)
		}
		return "", domain.MalformedResponseError(fmt.Sprintf("gemini response has no text (finish reason %q)", reason))
	}
	return text, nil
}

var _ domain.Provider = (*GeminiClient)(nil)
