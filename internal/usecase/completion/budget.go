package completion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/foodrag/internal/domain"
)

// BudgetAction defines behavior when the token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but lets the completion through.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject fails the request with ErrCompletionQuotaExceeded.
	BudgetActionReject BudgetAction = "reject"
)

// BudgetStore persists budget counters. IncrBy may be called repeatedly for the same key.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

type counters struct {
	tokens   int64
	requests int64
}

// BudgetTracker keeps daily and monthly completion token counters in memory,
// with optional write-behind persistence. Check never touches the store.
type BudgetTracker struct {
	mu             sync.Mutex
	daily          counters
	monthly        counters
	dailyLimit     int64
	monthlyLimit   int64
	action         BudgetAction
	provider       string
	lastDayReset   time.Time
	lastMonthReset time.Time
	store          BudgetStore
	logger         *zap.Logger
	now            func() time.Time
}

// NewBudgetTracker creates a tracker. A zero limit disables that period's cap.
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	b := &BudgetTracker{
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		action:       action,
		provider:     provider,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
	now := b.now()
	b.lastDayReset = truncateToDay(now)
	b.lastMonthReset = truncateToMonth(now)
	return b
}

// WithStore attaches a persistence store and loads the current period's counters.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.store = store
	b.loadFromStore(ctx)
	return b
}

func (b *BudgetTracker) loadFromStore(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	load := func(key string, dst *int64) {
		val, err := b.store.Get(ctx, key)
		if err != nil {
			b.logger.Warn("Failed to load budget counter", zap.String("key", key), zap.Error(err))
			return
		}
		*dst = val
	}
	load(b.key("daily", "tokens", now), &b.daily.tokens)
	load(b.key("daily", "requests", now), &b.daily.requests)
	load(b.key("monthly", "tokens", now), &b.monthly.tokens)
	load(b.key("monthly", "requests", now), &b.monthly.requests)

	b.logger.Info("Completion budget loaded from store",
		zap.String("provider", b.provider),
		zap.Int64("daily_tokens", b.daily.tokens),
		zap.Int64("monthly_tokens", b.monthly.tokens),
	)
}

// key builds foodrag:budget:<provider>:<period>:<counter>:<date>.
func (b *BudgetTracker) key(period, counter string, t time.Time) string {
	layout := "2006-01-02"
	if period == "monthly" {
		layout = "2006-01"
	}
	return fmt.Sprintf("%sbudget:%s:%s:%s:%s", domain.KeyPrefix, b.provider, period, counter, t.Format(layout))
}

// Check reports whether another completion may run.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()

	dailyExceeded := b.dailyLimit > 0 && b.daily.tokens >= b.dailyLimit
	monthlyExceeded := b.monthlyLimit > 0 && b.monthly.tokens >= b.monthlyLimit
	if !dailyExceeded && !monthlyExceeded {
		return nil
	}

	if b.action == BudgetActionReject {
		return domain.ErrCompletionQuotaExceeded
	}

	b.logger.Warn("Completion token budget exceeded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.daily.tokens),
		zap.Int64("daily_limit", b.dailyLimit),
		zap.Int64("monthly_used", b.monthly.tokens),
		zap.Int64("monthly_limit", b.monthlyLimit),
	)
	return nil
}

// Record registers one completed request and the tokens it consumed.
func (b *BudgetTracker) Record(tokens int64) {
	b.mu.Lock()
	b.resetIfNeeded()
	b.daily.tokens += tokens
	b.daily.requests++
	b.monthly.tokens += tokens
	b.monthly.requests++
	store := b.store
	now := b.now()
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Write-behind on a detached context with its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	writes := []struct {
		key string
		val int64
	}{
		{b.key("daily", "tokens", now), tokens},
		{b.key("daily", "requests", now), 1},
		{b.key("monthly", "tokens", now), tokens},
		{b.key("monthly", "requests", now), 1},
	}
	for _, w := range writes {
		if err := store.IncrBy(ctx, w.key, w.val); err != nil {
			b.logger.Warn("Failed to persist budget counter", zap.String("key", w.key), zap.Error(err))
		}
	}
}

// RemainingDaily returns tokens left today (-1 if unlimited).
func (b *BudgetTracker) RemainingDaily() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return remaining(b.dailyLimit, b.daily.tokens)
}

// RemainingMonthly returns tokens left this month (-1 if unlimited).
func (b *BudgetTracker) RemainingMonthly() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return remaining(b.monthlyLimit, b.monthly.tokens)
}

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	return max(limit-used, 0)
}

// DailyLimit returns the daily token cap.
func (b *BudgetTracker) DailyLimit() int64 { return b.dailyLimit }

// MonthlyLimit returns the monthly token cap.
func (b *BudgetTracker) MonthlyLimit() int64 { return b.monthlyLimit }

// DailyUsed returns tokens consumed today.
func (b *BudgetTracker) DailyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.daily.tokens
}

// MonthlyUsed returns tokens consumed this month.
func (b *BudgetTracker) MonthlyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.monthly.tokens
}

// DailyRequests returns completions recorded today.
func (b *BudgetTracker) DailyRequests() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.daily.requests
}

// MonthlyRequests returns completions recorded this month.
func (b *BudgetTracker) MonthlyRequests() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.monthly.requests
}

// resetIfNeeded zeroes counters when the day or month rolls over.
func (b *BudgetTracker) resetIfNeeded() {
	now := b.now()
	today := truncateToDay(now)
	thisMonth := truncateToMonth(now)

	if today.After(b.lastDayReset) {
		b.daily = counters{}
		b.lastDayReset = today
	}
	if thisMonth.After(b.lastMonthReset) {
		b.monthly = counters{}
		b.lastMonthReset = thisMonth
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
