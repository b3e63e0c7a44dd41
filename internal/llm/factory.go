package llm

import (
	"context"
	"strings"

	"github.com/Atarvano/ManifestAi/internal/config"
	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/observability"
)

const pingPrompt = `Respond with "OK"`

func containsOK(text string) bool {
	return strings.Contains(strings.ToLower(text), "ok")
}

// NewProviders builds every provider that has credentials. Providers that
// could not be built are returned in skipped with the reason.
func NewProviders(ctx context.Context, cfg config.LLMConfig, logger *observability.Logger) ([]domain.Provider, map[string]error) {
	var providers []domain.Provider
	skipped := make(map[string]error)

	gemini, err := NewGeminiClient(ctx, GeminiConfig{
		APIKey:      cfg.Gemini.APIKey,
		BaseURL:     cfg.Gemini.BaseURL,
		Model:       cfg.Gemini.Model,
		FastModel:   cfg.Gemini.FastModel,
		Timeout:     cfg.Gemini.Timeout,
		Temperature: cfg.Gemini.Temperature,
		MaxTokens:   cfg.Gemini.MaxTokens,
		Logger:      logger,
	})
	if err != nil {
		skipped[config.ProviderGemini] = err
	} else {
		providers = append(providers, gemini)
	}

	deepseek, err := NewDeepSeekClient(chatConfig(cfg.DeepSeek, logger))
	if err != nil {
		skipped[config.ProviderDeepSeek] = err
	} else {
		providers = append(providers, deepseek)
	}

	groq, err := NewGroqClient(chatConfig(cfg.Groq, logger))
	if err != nil {
		skipped[config.ProviderGroq] = err
	} else {
		providers = append(providers, groq)
	}

	return providers, skipped
}

// NewRouterFromConfig builds the providers and a router with the configured
// fallback pairs. It fails with a configuration error when primary has no
// credentials, so no network call is attempted.
func NewRouterFromConfig(ctx context.Context, cfg config.LLMConfig, primary string, logger *observability.Logger) (*Router, error) {
	if !config.IsProvider(primary) {
		return nil, domain.ConfigurationError("invalid model source "+primary+", use gemini, deepseek or groq", nil)
	}

	providers, skipped := NewProviders(ctx, cfg, logger)
	if err, ok := skipped[primary]; ok {
		return nil, err
	}

	log := observability.OrNop(logger)
	if secondary, ok := cfg.Fallbacks[primary]; ok {
		if err, missing := skipped[secondary]; missing {
			log.Warn().Str("primary", primary).Str("secondary", secondary).Err(err).
				Msg("fallback provider unavailable, calls will not fall back")
		}
	}

	return NewRouter(providers, cfg.Fallbacks, logger), nil
}

func chatConfig(p config.ProviderConfig, logger *observability.Logger) ChatConfig {
	return ChatConfig{
		APIKey:      p.APIKey,
		BaseURL:     p.BaseURL,
		Model:       p.Model,
		FastModel:   p.FastModel,
		Timeout:     p.Timeout,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		Logger:      logger,
	}
}
