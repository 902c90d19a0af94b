package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/foodrag/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	clientName       = "foodrag"
	firstRetryDelay  = 50 * time.Millisecond
	maxRetryDelay    = time.Second
	connWriteTimeout = 5 * time.Second
)

// Config holds connection parameters. Redis and Valkey speak the same protocol;
// Driver only labels logs and errors.
type Config struct {
	Driver   string
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store is a rueidis-backed db.Store without client-side caching.
type Store struct {
	client rueidis.Client
	driver string
}

// NewStore creates a store. The connection is established by rueidis on creation.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	driver := driverName(cfg.Driver)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      cfg.Addrs,
		Username:         cfg.Username,
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		ClientName:       clientName,
		ConnWriteTimeout: connWriteTimeout,
		DisableCache:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: connect %v: %w", driver, cfg.Addrs, err)
	}

	return &Store{client: client, driver: driver}, nil
}

// Driver returns "redis" or "valkey".
func (s *Store) Driver() string { return s.driver }

func driverName(d string) string {
	if d == "" {
		return "redis"
	}
	return d
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings immediately, then retries with doubling delays until the
// store answers or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	delay := firstRetryDelay
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s not ready (last error: %v): %w", s.driver, err, ctx.Err())
		case <-timer.C:
		}
		delay = min(delay*2, maxRetryDelay)
	}
}
