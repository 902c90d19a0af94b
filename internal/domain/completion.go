package domain

import (
	"context"

	"github.com/kailas-cloud/foodrag/internal/domain/prompt"
)

// KeyPrefix namespaces every key this service writes to the KV store.
const KeyPrefix = "foodrag:"

// Completer is the shared text completion contract between layers.
type Completer interface {
	Complete(ctx context.Context, p prompt.Prompt) (CompletionResult, error)
}

// HealthChecker verifies completion provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CompletionResult carries the generated text and token usage through the decorator chain.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Cached           bool
}
