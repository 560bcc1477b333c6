package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the limiter with Redis so counters survive restarts
// and are shared between instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(key string) (int, time.Time, bool) {
	ctx := context.Background()

	count, err := s.client.Get(ctx, key).Int()
	if err != nil {
		return 0, time.Time{}, false
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		return 0, time.Time{}, false
	}

	return count, time.Now().Add(ttl), true
}

func (s *RedisStore) Increment(key string, resetTime time.Time) int {
	ctx := context.Background()

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0
	}

	if count == 1 {
		s.client.Expire(ctx, key, time.Until(resetTime))
	}

	return int(count)
}

func (s *RedisStore) Reset(key string) {
	s.client.Del(context.Background(), key)
}
