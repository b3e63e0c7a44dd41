package domain

import "context"

// CompletionOptions tunes a single completion request. Zero values mean
// "use the provider default".
type CompletionOptions struct {
	// Model overrides the provider's configured model. The router only
	// forwards it to the primary provider.
	Model string
	// Fast selects the provider's low-latency model when it has one.
	Fast        bool
	Temperature *float32
	MaxTokens   int
}

// Temperature returns a pointer suitable for CompletionOptions.Temperature.
func Temperature(t float32) *float32 {
	return &t
}

// Completer sends a prompt to a language model and returns its text reply
type Completer interface {
	// Complete returns the non-empty text of the model's reply
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// Provider is a Completer bound to one named AI service
type Provider interface {
	Completer

	// Name identifies the provider, e.g. "gemini"
	Name() string
}
