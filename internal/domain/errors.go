package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuestionRequired signals an empty (or whitespace-only) question.
	ErrQuestionRequired = errors.New("Question is required") //nolint:staticcheck // client-visible message
	// ErrNotConfigured signals a missing credential or setting for an operation.
	ErrNotConfigured = errors.New("not configured")
	// ErrSearchProviderError signals a web search provider failure.
	ErrSearchProviderError = errors.New("search provider error")
	// ErrCompletionProviderError signals a completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrCompletionQuotaExceeded signals an exhausted completion token budget.
	ErrCompletionQuotaExceeded = errors.New("Completion token budget exceeded") //nolint:staticcheck // client-visible message
	// ErrInvalidCorpus signals a corpus file that failed validation.
	ErrInvalidCorpus = errors.New("invalid corpus")
	// ErrInvalidQuery signals a malformed retrieval request.
	ErrInvalidQuery = errors.New("invalid query")
)

// ConfigError wraps ErrNotConfigured with a message that names the missing setting.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

func (e *ConfigError) Unwrap() error { return ErrNotConfigured }

// NewConfigError creates a configuration error.
func NewConfigError(format string, args ...any) error {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// ProviderError is an upstream failure reported by an external service.
// Message is the upstream-provided text, or "Unknown error" when absent.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Kind       error
	// Cause is the transport error, when the call failed before a response.
	Cause error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// NewProviderError creates a provider error. kind is the sentinel it unwraps to.
func NewProviderError(kind error, provider string, status int, message string) error {
	if message == "" {
		message = "Unknown error"
	}
	return &ProviderError{Provider: provider, StatusCode: status, Message: message, Kind: kind}
}

// WrapProviderError creates a provider error for a call that failed without an
// upstream response (network error, cancellation). cause stays in the chain.
func WrapProviderError(kind error, provider string, cause error) error {
	return &ProviderError{Provider: provider, Message: cause.Error(), Kind: kind, Cause: cause}
}

// publicSentinels carry messages meant for the client as-is.
var publicSentinels = []error{ErrQuestionRequired, ErrCompletionQuotaExceeded}

// PublicMessage returns the message a caller should see for err: the text of the
// first typed domain error in the chain, the error text itself otherwise, or a
// generic fallback for nil/empty errors.
func PublicMessage(err error) string {
	const fallback = "An unexpected error occurred"
	if err == nil {
		return fallback
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	for _, s := range publicSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
