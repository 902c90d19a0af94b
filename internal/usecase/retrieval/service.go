package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/foodrag/internal/domain/passage"
	"github.com/kailas-cloud/foodrag/internal/logger"
	"github.com/kailas-cloud/foodrag/internal/metrics"
)

// DefaultTopK is the number of passages retrieved when k is not positive.
const DefaultTopK = 3

// Strategy names, used as metric labels and in status reports.
const (
	StrategyCorpus    = "corpus"
	StrategyWebSearch = "websearch"
)

// Scoring selects which view of a document the lexical scorer sees.
type Scoring string

const (
	// ScoringTags scores the plain text and boosts on region/type tags.
	ScoringTags Scoring = "tags"
	// ScoringEnriched scores the text with the tags appended, without boosts.
	ScoringEnriched Scoring = "enriched"
)

// Retriever ranks the in-memory corpus lexically.
type Retriever struct {
	corpus  Corpus
	scoring Scoring
}

// New creates a corpus retriever. An empty scoring defaults to ScoringTags.
func New(corpus Corpus, scoring Scoring) *Retriever {
	if scoring == "" {
		scoring = ScoringTags
	}
	return &Retriever{corpus: corpus, scoring: scoring}
}

// Strategy returns StrategyCorpus.
func (r *Retriever) Strategy() string { return StrategyCorpus }

// Retrieve scores every document, stable-sorts by score descending and returns
// the first k. Ties keep store order; all-zero scores still yield k passages.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]passage.Passage, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	start := time.Now()

	docs := r.corpus.Documents()
	scored := make([]passage.Passage, len(docs))
	for i := range docs {
		d := &docs[i]
		var s float64
		if r.scoring == ScoringEnriched {
			s = Score(query, d.EnrichedText(), "", "")
		} else {
			s = Score(query, d.Text(), d.Region(), d.Type())
		}
		scored[i] = passage.FromDocument(d, s)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score() > scored[j].Score()
	})
	if len(scored) > k {
		scored = scored[:k]
	}

	observe(ctx, StrategyCorpus, start, len(scored))
	return scored, nil
}

// WebRetriever adapts a web Searcher to passages.
type WebRetriever struct {
	searcher Searcher
}

// NewWeb creates a web search retriever.
func NewWeb(searcher Searcher) *WebRetriever {
	return &WebRetriever{searcher: searcher}
}

// Strategy returns StrategyWebSearch.
func (w *WebRetriever) Strategy() string { return StrategyWebSearch }

// Retrieve returns up to k search hits in provider rank order.
func (w *WebRetriever) Retrieve(ctx context.Context, query string, k int) ([]passage.Passage, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	start := time.Now()

	results, err := w.searcher.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	if len(results) > k {
		results = results[:k]
	}

	out := make([]passage.Passage, len(results))
	for i, res := range results {
		out[i] = passage.FromWebResult(strconv.Itoa(i), res.Title, res.Link, res.Snippet)
	}

	observe(ctx, StrategyWebSearch, start, len(out))
	return out, nil
}

func observe(ctx context.Context, strategy string, start time.Time, n int) {
	d := time.Since(start)
	metrics.RetrievalDuration.WithLabelValues(strategy).Observe(d.Seconds())
	metrics.RetrievalResults.WithLabelValues(strategy).Observe(float64(n))
	logger.FromContext(ctx).Debug("Retrieval completed",
		zap.String("strategy", strategy),
		zap.Int("results", n),
		zap.Duration("duration", d),
	)
}
