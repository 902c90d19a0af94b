package retrieval

import (
	"context"

	"github.com/kailas-cloud/foodrag/internal/domain"
	"github.com/kailas-cloud/foodrag/internal/domain/document"
)

// Corpus provides the immutable document set in store order.
type Corpus interface {
	Documents() []document.Document
}

// Searcher queries an external web search service.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}
