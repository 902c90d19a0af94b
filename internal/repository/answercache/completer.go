package answercache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/foodrag/internal/db"
	"github.com/kailas-cloud/foodrag/internal/domain"
	"github.com/kailas-cloud/foodrag/internal/domain/prompt"
)

var cacheKeyPrefix = domain.KeyPrefix + "answer_cache:"

// store is the consumer interface for the answer cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedCompleter caches generated answers by model and prompt.
type CachedCompleter struct {
	inner      domain.Completer
	store      store
	model      string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Completer,
	s store,
	model string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedCompleter {
	return &CachedCompleter{
		inner:      inner,
		store:      s,
		model:      model,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Complete returns a cached answer or calls the inner completer.
// Cache hit: zero tokens and Cached set.
func (c *CachedCompleter) Complete(ctx context.Context, p prompt.Prompt) (domain.CompletionResult, error) {
	key := c.cacheKey(p)

	if text, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.CompletionResult{Text: text, Cached: true}, nil
	}

	c.incCache("miss")

	result, err := c.inner.Complete(ctx, p)
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("complete prompt: %w", err)
	}

	if result.Text != "" {
		c.putToCache(ctx, key, result.Text)
	}
	return result, nil
}

func (c *CachedCompleter) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedCompleter) cacheKey(p prompt.Prompt) string {
	h := sha256.New()
	for _, part := range []string{c.model, p.System, p.User} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedCompleter) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached answer", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (c *CachedCompleter) putToCache(ctx context.Context, key, text string) {
	if err := c.store.SetWithTTL(ctx, key, []byte(text), c.ttl); err != nil {
		c.logger.Warn("Failed to cache answer", zap.String("key", key), zap.Error(err))
	}
}
