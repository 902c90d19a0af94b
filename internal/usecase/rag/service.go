package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/foodrag/internal/domain"
	"github.com/kailas-cloud/foodrag/internal/domain/answer"
	"github.com/kailas-cloud/foodrag/internal/domain/passage"
	"github.com/kailas-cloud/foodrag/internal/logger"
	"github.com/kailas-cloud/foodrag/internal/usecase/retrieval"
)

// MaxPreviewK caps the number of passages a retrieval preview may request.
const MaxPreviewK = 50

// Status is the service self-description returned by GET /api/rag.
type Status struct {
	Message  string
	Strategy string
	// HasCorpus is false for web search; DocumentCount and LastUpdated are then unset.
	HasCorpus     bool
	DocumentCount int
	LastUpdated   time.Time
}

// Service answers food questions: retrieve, build prompt, complete.
type Service struct {
	retriever Retriever
	completer domain.Completer
	corpus    CorpusInfo
	profile   Profile
	topK      int
}

// New creates a Service. corpus can be nil (web search strategy).
// A non-positive topK falls back to retrieval.DefaultTopK.
func New(retriever Retriever, completer domain.Completer, corpus CorpusInfo, topK int) *Service {
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}
	return &Service{
		retriever: retriever,
		completer: completer,
		corpus:    corpus,
		profile:   ProfileFor(retriever.Strategy()),
		topK:      topK,
	}
}

// Ask answers question. A blank question fails with ErrQuestionRequired before
// any retrieval or completion call. An empty retrieval still reaches completion.
func (s *Service) Ask(ctx context.Context, question string) (answer.Answer, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return answer.Answer{}, domain.ErrQuestionRequired
	}
	ctx = logger.With(ctx, zap.String("strategy", s.retriever.Strategy()))

	passages, err := s.retriever.Retrieve(ctx, q, s.topK)
	if err != nil {
		return answer.Answer{}, fmt.Errorf("retrieve: %w", err)
	}

	p := s.profile.Template.Build(q, passages)
	res, err := s.completer.Complete(ctx, p)
	if err != nil {
		return answer.Answer{}, fmt.Errorf("complete: %w", err)
	}

	logger.FromContext(ctx).Info("Question answered",
		zap.Int("sources", len(passages)),
		zap.Int("tokens", res.TotalTokens),
		zap.Bool("cached", res.Cached),
	)

	return answer.New(res.Text, passages, s.profile.Labels), nil
}

// Retrieve runs retrieval only. k <= 0 uses the configured top-K; k is capped at MaxPreviewK.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]passage.Passage, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if k <= 0 {
		k = s.topK
	}
	k = min(k, MaxPreviewK)

	passages, err := s.retriever.Retrieve(ctx, q, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return passages, nil
}

// Labels returns the fallback source labels of the active strategy.
func (s *Service) Labels() answer.Labels { return s.profile.Labels }

// Status describes the active strategy.
func (s *Service) Status() Status {
	st := Status{
		Message:  s.profile.Message,
		Strategy: s.retriever.Strategy(),
	}
	if s.corpus != nil {
		st.HasCorpus = true
		st.DocumentCount = s.corpus.Count()
		st.LastUpdated = s.corpus.UpdatedAt()
	}
	return st
}
