package llm

import (
	"context"
	"fmt"
	"sort"

	"github.com/Atarvano/ManifestAi/internal/domain"
	"github.com/Atarvano/ManifestAi/internal/metrics"
	"github.com/Atarvano/ManifestAi/internal/observability"
)

// Router sends a prompt to a primary provider and, when that provider fails
// at the provider or transport layer, to its configured secondary exactly once.
// Calls are strictly sequential and never cached.
type Router struct {
	providers map[string]domain.Provider
	fallbacks map[string]string
	logger    *observability.Logger
}

// NewRouter creates a router over the given providers. fallbacks maps a
// primary provider name to its secondary.
func NewRouter(providers []domain.Provider, fallbacks map[string]string, logger *observability.Logger) *Router {
	byName := make(map[string]domain.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	fb := make(map[string]string, len(fallbacks))
	for k, v := range fallbacks {
		fb[k] = v
	}

	return &Router{
		providers: byName,
		fallbacks: fb,
		logger:    observability.OrNop(logger).WithOperation("router"),
	}
}

// Providers returns the names of the configured providers, sorted.
func (r *Router) Providers() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the named provider is configured.
func (r *Router) Has(name string) bool {
	_, ok := r.providers[name]
	return ok
}

// Secondary returns the configured fallback for primary, if that provider
// is available.
func (r *Router) Secondary(primary string) (string, bool) {
	name, ok := r.fallbacks[primary]
	if !ok || name == primary {
		return "", false
	}
	if _, ok := r.providers[name]; !ok {
		return "", false
	}
	return name, true
}

// Call sends prompt to primary, falling back to its secondary once on a
// provider failure. When both fail the error is AllProvidersFailed and
// carries both messages.
func (r *Router) Call(ctx context.Context, primary, prompt string, opts domain.CompletionOptions) (string, error) {
	first, ok := r.providers[primary]
	if !ok {
		return "", domain.ConfigurationError(fmt.Sprintf("model source %q is not configured", primary), nil)
	}

	text, err := first.Complete(ctx, prompt, opts)
	if err == nil {
		return text, nil
	}
	if !domain.IsProviderFailure(err) {
		return "", err
	}

	secondaryName, ok := r.Secondary(primary)
	if !ok {
		r.logger.Warn().Str("primary", primary).Err(err).Msg("provider failed and no fallback is configured")
		return "", err
	}

	r.logger.Warn().
		Str("primary", primary).
		Str("secondary", secondaryName).
		Err(err).
		Msg("primary provider failed, trying fallback")
	metrics.RecordFallback(primary, secondaryName)

	// Model names are provider specific and do not carry over.
	fallbackOpts := opts
	fallbackOpts.Model = ""

	text, secondErr := r.providers[secondaryName].Complete(ctx, prompt, fallbackOpts)
	if secondErr == nil {
		return text, nil
	}

	return "", domain.AllProvidersFailedError([]domain.ProviderFailure{
		{Provider: primary, Err: err},
		{Provider: secondaryName, Err: secondErr},
	})
}

// For returns a Completer that routes every call through primary.
func (r *Router) For(primary string) domain.Completer {
	return &boundRouter{router: r, primary: primary}
}

// Ping sends a trivial prompt to every configured provider directly,
// without fallback, and reports whether each replied with "OK".
func (r *Router) Ping(ctx context.Context) map[string]error {
	results := make(map[string]error, len(r.providers))
	for _, name := range r.Providers() {
		text, err := r.providers[name].Complete(ctx, pingPrompt, domain.CompletionOptions{Fast: true, MaxTokens: 10})
		if err == nil && !containsOK(text) {
			err = domain.MalformedResponseError(fmt.Sprintf("unexpected ping reply %q", text))
		}
		results[name] = err
	}
	return results
}

type boundRouter struct {
	router  *Router
	primary string
}

func (b *boundRouter) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	return b.router.Call(ctx, b.primary, prompt, opts)
}
