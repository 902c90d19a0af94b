package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/foodrag/internal/db"
)

// store is the consumer interface for budget operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrByWithTTL(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error)
}

// Store persists completion budget counters. Each key expires a fixed time
// after the first write of its period.
type Store struct {
	store    store
	dailyTTL time.Duration
	monthTTL time.Duration
}

// New creates a budget store. Daily keys expire after dailyTTL, monthly keys
// after monthTTL.
func New(s store, dailyTTL, monthTTL time.Duration) *Store {
	return &Store{
		store:    s,
		dailyTTL: dailyTTL,
		monthTTL: monthTTL,
	}
}

// IncrBy adds val to the counter at key.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if _, err := s.store.IncrByWithTTL(ctx, key, val, s.ttlForKey(key)); err != nil {
		return fmt.Errorf("budget counter: %w", err)
	}
	return nil
}

// Get returns the current counter value, 0 for a missing key.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("budget counter: %w", err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("budget counter %s is not an integer: %w", key, err)
	}
	return val, nil
}

// ttlForKey picks the TTL from the period segment of foodrag:budget:{provider}:{period}:...
func (s *Store) ttlForKey(key string) time.Duration {
	if strings.Contains(key, ":daily:") {
		return s.dailyTTL
	}
	return s.monthTTL
}
