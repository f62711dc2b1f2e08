package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit/"

// RedisStore shares counters across replicas.
type RedisStore struct {
	Client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

func (s *RedisStore) Hit(ctx context.Context, key string, size time.Duration, now time.Time) (int, time.Time, error) {
	key = redisKeyPrefix + key

	// increment and read the remaining ttl in a single round-trip
	multi := s.Client.Pipeline()
	incr := multi.Incr(ctx, key)
	pttl := multi.PTTL(ctx, key)
	if _, err := multi.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}

	ttl := pttl.Val()
	if incr.Val() == 1 || ttl < 0 {
		if err := s.Client.PExpire(ctx, key, size).Err(); err != nil {
			return 0, time.Time{}, err
		}
		ttl = size
	}
	return int(incr.Val()), now.Add(ttl), nil
}
