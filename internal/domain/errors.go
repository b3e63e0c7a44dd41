package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeEmptyInput         ErrorType = "empty_input"
	ErrorTypeConfiguration      ErrorType = "configuration"
	ErrorTypeInvalidRequest     ErrorType = "invalid_request"
	ErrorTypeTimeout            ErrorType = "timeout"
	ErrorTypeMalformedResponse  ErrorType = "malformed_response"
	ErrorTypeRateLimited        ErrorType = "rate_limited"
	ErrorTypeUnauthorized       ErrorType = "unauthorized"
	ErrorTypeServerError        ErrorType = "server_error"
	ErrorTypeTransport          ErrorType = "transport"
	ErrorTypeAllProvidersFailed ErrorType = "all_providers_failed"
	ErrorTypeInvalidJSON        ErrorType = "invalid_json"
	ErrorTypeUnexpectedShape    ErrorType = "unexpected_shape"
	ErrorTypeValidation         ErrorType = "validation"
	ErrorTypeIO                 ErrorType = "io"
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func EmptyInputError(message string) *DomainError {
	return NewError(ErrorTypeEmptyInput, message, nil)
}

func ConfigurationError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfiguration, message, err)
}

func InvalidRequestError(message string) *DomainError {
	return NewError(ErrorTypeInvalidRequest, message, nil)
}

func TimeoutError(message string, err error) *DomainError {
	return NewError(ErrorTypeTimeout, message, err)
}

func MalformedResponseError(message string) *DomainError {
	return NewError(ErrorTypeMalformedResponse, message, nil)
}

func RateLimitedError(message string) *DomainError {
	return NewError(ErrorTypeRateLimited, message, nil)
}

func UnauthorizedError(message string) *DomainError {
	return NewError(ErrorTypeUnauthorized, message, nil)
}

func ServerError(message string) *DomainError {
	return NewError(ErrorTypeServerError, message, nil)
}

func TransportError(message string, err error) *DomainError {
	return NewError(ErrorTypeTransport, message, err)
}

func InvalidJSONError(message string, err error) *DomainError {
	return NewError(ErrorTypeInvalidJSON, message, err)
}

func UnexpectedShapeError(message string, err error) *DomainError {
	return NewError(ErrorTypeUnexpectedShape, message, err)
}

func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

// ProvidersFailedError reports that every provider in a fallback chain failed.
// Failures is keyed by provider name in call order.
type ProvidersFailedError struct {
	Failures []ProviderFailure
}

// ProviderFailure pairs a provider name with the error it returned.
type ProviderFailure struct {
	Provider string
	Err      error
}

func (e *ProvidersFailedError) Error() string {
	msg := "all AI providers failed"
	for i, f := range e.Failures {
		sep := "; "
		if i == 0 {
			sep = ": "
		}
		msg += sep + f.Provider + ": " + f.Err.Error()
	}
	return msg
}

// Unwrap exposes every underlying provider error to errors.Is/As.
func (e *ProvidersFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// AllProvidersFailedError wraps the per-provider failures in a DomainError.
func AllProvidersFailedError(failures []ProviderFailure) *DomainError {
	return NewError(ErrorTypeAllProvidersFailed, "provider fallback exhausted", &ProvidersFailedError{Failures: failures})
}

// KindOf returns the type of the outermost DomainError in err's chain,
// or "" when err carries none.
func KindOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

// IsKind reports whether the outermost DomainError in err's chain has the given type.
func IsKind(err error, t ErrorType) bool {
	return err != nil && KindOf(err) == t
}

// IsProviderFailure reports whether err originates from the provider or
// transport layer and is therefore eligible for fallback to another provider.
func IsProviderFailure(err error) bool {
	switch KindOf(err) {
	case ErrorTypeTimeout, ErrorTypeMalformedResponse, ErrorTypeRateLimited,
		ErrorTypeUnauthorized, ErrorTypeServerError, ErrorTypeTransport:
		return true
	default:
		return false
	}
}
