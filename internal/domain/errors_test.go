package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), ""},
		{"domain error", TimeoutError("deadline", nil), ErrorTypeTimeout},
		{"wrapped domain error", fmt.Errorf("call: %w", RateLimitedError("429")), ErrorTypeRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsProviderFailure(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{TimeoutError("t", nil), true},
		{MalformedResponseError("m"), true},
		{RateLimitedError("r"), true},
		{UnauthorizedError("u"), true},
		{ServerError("s"), true},
		{TransportError("dial", errors.New("refused")), true},
		{InvalidRequestError("empty prompt"), false},
		{ConfigurationError("no key", nil), false},
		{InvalidJSONError("bad", nil), false},
		{errors.New("context canceled"), false},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, IsProviderFailure(tt.err))
		})
	}
}

func TestAllProvidersFailedError(t *testing.T) {
	primary := TimeoutError("gemini timed out", nil)
	secondary := ServerError("deepseek returned 502")

	err := AllProvidersFailedError([]ProviderFailure{
		{Provider: "gemini", Err: primary},
		{Provider: "deepseek", Err: secondary},
	})

	assert.Equal(t, ErrorTypeAllProvidersFailed, KindOf(err))
	assert.Contains(t, err.Error(), "gemini: [timeout] gemini timed out")
	assert.Contains(t, err.Error(), "deepseek: [server_error] deepseek returned 502")
	assert.True(t, errors.Is(err, primary))
	assert.True(t, errors.Is(err, secondary))
}
