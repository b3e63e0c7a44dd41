package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

// maxErrorBody bounds how much of an error response body is kept in messages.
const maxErrorBody = 512

// classifyStatus maps a non-2xx provider HTTP status to the error taxonomy
func classifyStatus(provider string, statusCode int, body []byte) error {
	detail := errorDetail(body)
	msg := fmt.Sprintf("%s returned status %d", provider, statusCode)
	if detail != "" {
		msg += ": " + detail
	}

	switch {
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return domain.UnauthorizedError(msg)
	case statusCode == http.StatusTooManyRequests:
		return domain.RateLimitedError(msg)
	default:
		// 5xx and any unexpected status are treated as provider-side faults
		return domain.ServerError(msg)
	}
}

// classifyTransport maps an error raised while sending a request. parent is
// the caller's context; callCtx carries the per-call timeout.
func classifyTransport(provider string, parent, callCtx context.Context, err error) error {
	if parent.Err() != nil {
		// The caller gave up; no other provider will fare better.
		return fmt.Errorf("%s request: %w", provider, parent.Err())
	}

	if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return domain.TimeoutError(provider+" request timed out", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.TimeoutError(provider+" request timed out", err)
	}

	return domain.TransportError(provider+" request failed", err)
}

// errorDetail extracts a readable message from an error response body.
// OpenAI-compatible APIs use {"error":{"message":"..."}}.
func errorDetail(body []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if err := json.Unmarshal(payload.Error, &flat); err == nil && flat != "" {
			return flat
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return text
}
