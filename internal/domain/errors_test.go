package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestConfigError_UnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("complete: %w", NewConfigError("GROQ_API_KEY is not configured"))

	if !errors.Is(err, ErrNotConfigured) {
		t.Fatal("expected ErrNotConfigured in chain")
	}
	if got := PublicMessage(err); got != "GROQ_API_KEY is not configured" {
		t.Errorf("unexpected public message: %q", got)
	}
}

func TestProviderError_Message(t *testing.T) {
	err := fmt.Errorf("search: %w", NewProviderError(ErrSearchProviderError, "Google Search", 403, "API key not valid"))

	if !errors.Is(err, ErrSearchProviderError) {
		t.Fatal("expected ErrSearchProviderError in chain")
	}
	if got := PublicMessage(err); got != "Google Search API error: API key not valid" {
		t.Errorf("unexpected public message: %q", got)
	}
}

func TestProviderError_EmptyMessageFallsBack(t *testing.T) {
	err := NewProviderError(ErrCompletionProviderError, "Groq", 500, "")
	if err.Error() != "Groq API error: Unknown error" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestWrapProviderError_KeepsCause(t *testing.T) {
	err := WrapProviderError(ErrCompletionProviderError, "Groq", context.Canceled)

	if !errors.Is(err, ErrCompletionProviderError) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected kind and cause in chain, got %v", err)
	}
	if err.Error() != "Groq API error: context canceled" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"empty", errors.New(""), "An unexpected error occurred"},
		{"plain", errors.New("boom"), "boom"},
		{"question", fmt.Errorf("ask: %w", ErrQuestionRequired), "Question is required"},
		{"quota", fmt.Errorf("complete: %w", ErrCompletionQuotaExceeded), "Completion token budget exceeded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PublicMessage(tc.err); got != tc.want {
				t.Errorf("PublicMessage() = %q, want %q", got, tc.want)
			}
		})
	}
}
