package completion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/foodrag/internal/domain"
	"github.com/kailas-cloud/foodrag/internal/domain/prompt"
	"github.com/kailas-cloud/foodrag/internal/logger"
	"github.com/kailas-cloud/foodrag/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedCompleter wraps a Completer with budget enforcement and logging.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai;
// this layer owns budget tracking and the budget gauges.
type InstrumentedCompleter struct {
	inner    domain.Completer
	provider string
	model    string
	budget   BudgetChecker
}

// NewInstrumentedCompleter wraps a completer. budget may be nil.
func NewInstrumentedCompleter(
	inner domain.Completer, provider, model string, budget BudgetChecker,
) *InstrumentedCompleter {
	return &InstrumentedCompleter{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
	}
}

// Complete checks the budget, delegates to the inner completer and records usage.
func (c *InstrumentedCompleter) Complete(ctx context.Context, p prompt.Prompt) (domain.CompletionResult, error) {
	log := logger.FromContext(ctx).With(
		zap.String("provider", c.provider),
		zap.String("model", c.model),
	)

	if c.budget != nil {
		if err := c.budget.Check(ctx); err != nil {
			log.Warn("Completion budget exceeded", zap.Error(err))
			return domain.CompletionResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	result, err := c.inner.Complete(ctx, p)
	duration := time.Since(start)

	if err != nil {
		log.Error("Completion request failed", zap.Duration("duration", duration), zap.Error(err))
		return domain.CompletionResult{}, fmt.Errorf("complete: %w", err)
	}

	// Cache hits count as requests with zero tokens.
	if c.budget != nil {
		c.budget.Record(int64(result.TotalTokens))
		remaining := metrics.CompletionBudgetTokensRemaining
		remaining.WithLabelValues(c.provider, "daily").Set(float64(c.budget.RemainingDaily()))
		remaining.WithLabelValues(c.provider, "monthly").Set(float64(c.budget.RemainingMonthly()))
	}

	domain.UsageFromContext(ctx).Record(result)

	log.Debug("Completion request completed",
		zap.Duration("duration", duration),
		zap.Bool("cached", result.Cached),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
