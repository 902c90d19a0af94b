package rag

import (
	"context"
	"time"

	"github.com/kailas-cloud/foodrag/internal/domain/passage"
)

// Retriever returns the top passages for a query under one strategy.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]passage.Passage, error)
	Strategy() string
}

// CorpusInfo describes the static corpus for status reporting.
type CorpusInfo interface {
	Count() int
	UpdatedAt() time.Time
}
