package db

import (
	"context"
	"time"
)

// Store is the key-value store behind the answer cache and the budget counters.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore holds expiring values and counters. A non-positive ttl means no expiry.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// IncrByWithTTL adds val to a counter and sets ttl only when the key has none,
	// so the first write of a period fixes its expiry.
	IncrByWithTTL(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error)
}
