package foodrag

import (
	"context"

	domanswer "github.com/kailas-cloud/foodrag/internal/domain/answer"
	"github.com/kailas-cloud/foodrag/internal/domain/passage"
	healthuc "github.com/kailas-cloud/foodrag/internal/usecase/health"
	raguc "github.com/kailas-cloud/foodrag/internal/usecase/rag"
)

// --- ragUseCase mock ---

type mockRagUC struct {
	askFn      func(ctx context.Context, question string) (domanswer.Answer, error)
	retrieveFn func(ctx context.Context, query string, k int) ([]passage.Passage, error)
	labels     domanswer.Labels
	status     raguc.Status
}

func (m *mockRagUC) Ask(ctx context.Context, question string) (domanswer.Answer, error) {
	return m.askFn(ctx, question)
}

func (m *mockRagUC) Retrieve(ctx context.Context, query string, k int) ([]passage.Passage, error) {
	return m.retrieveFn(ctx, query, k)
}

func (m *mockRagUC) Labels() domanswer.Labels { return m.labels }

func (m *mockRagUC) Status() raguc.Status { return m.status }

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }
