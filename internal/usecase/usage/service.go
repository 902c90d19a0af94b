package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/foodrag/internal/domain/usage"
	"github.com/kailas-cloud/foodrag/internal/domain/usage/budget"
	"github.com/kailas-cloud/foodrag/internal/domain/usage/metrics"
)

// Service handles usage reporting.
type Service struct {
	br    BudgetReader
	model string
	now   func() time.Time
}

// New creates a Service. br can be nil (unlimited mode, nothing tracked).
func New(br BudgetReader, model string) *Service {
	return &Service{br: br, model: model, now: time.Now}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()
	var start, end int64
	var limit, used, requests int64
	remaining := int64(-1)

	switch period {
	case domusage.PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		start = dayStart.UnixMilli()
		end = dayStart.Add(24 * time.Hour).UnixMilli()
		if s.br != nil {
			limit = s.br.DailyLimit()
			used = s.br.DailyUsed()
			requests = s.br.DailyRequests()
			remaining = s.br.RemainingDaily()
		}
	case domusage.PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start = monthStart.UnixMilli()
		end = monthStart.AddDate(0, 1, 0).UnixMilli()
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			requests = s.br.MonthlyRequests()
			remaining = s.br.RemainingMonthly()
		}
	default:
		// total: the longest tracked window, no period boundaries
		if s.br != nil {
			limit = s.br.MonthlyLimit()
			used = s.br.MonthlyUsed()
			requests = s.br.MonthlyRequests()
			remaining = s.br.RemainingMonthly()
		}
	}

	b := budget.New(int(limit), int(used), int(remaining), end)
	m := metrics.New(int(requests), int(used))

	return domusage.NewReport(period, start, end, s.model, m, b)
}
