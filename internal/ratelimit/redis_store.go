package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// RedisStore is a fixed-window counter store backed by redis INCR. This is
// the shared, atomically-incrementing store required once the service runs
// on more than one instance.
type RedisStore struct {
	client *redis.Client
	window time.Duration
}

// NewRedisStore creates a redis-backed counter store.
func NewRedisStore(client *redis.Client, window time.Duration) *RedisStore {
	return &RedisStore{client: client, window: window}
}

// Incr bumps the counter for key. The window TTL is set when the key is
// first created so the whole window expires together.
func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKeyPrefix+key)
	pipe.ExpireNX(ctx, redisKeyPrefix+key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("ratelimit: redis incr %s: %w", key, err)
	}
	return incr.Val(), nil
}
