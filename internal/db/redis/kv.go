package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/foodrag/internal/db"
)

// Get returns the value at key, or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, &db.Error{Op: db.OpGet, Key: key, Err: err}
	}
	return data, nil
}

// SetWithTTL stores value under key, with EX when ttl is positive.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	set := s.client.B().Set().Key(key).Value(rueidis.BinaryString(value))
	var cmd rueidis.Completed
	if ttl > 0 {
		cmd = set.Ex(ttl).Build()
	} else {
		cmd = set.Build()
	}
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
	return nil
}

// IncrByWithTTL pipelines INCRBY and EXPIRE NX in one round trip and returns the
// counter value after the increment.
func (s *Store) IncrByWithTTL(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error) {
	cmds := rueidis.Commands{s.client.B().Incrby().Key(key).Increment(val).Build()}
	if ttl > 0 {
		cmds = append(cmds, s.client.B().Expire().Key(key).Seconds(int64(ttl/time.Second)).Nx().Build())
	}

	res := s.client.DoMulti(ctx, cmds...)
	n, err := res[0].AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpIncrBy, Key: key, Err: err}
	}
	if len(res) > 1 {
		if err := res[1].Error(); err != nil {
			return n, &db.Error{Op: db.OpExpire, Key: key, Err: err}
		}
	}
	return n, nil
}
