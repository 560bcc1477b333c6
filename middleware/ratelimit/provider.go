package ratelimit

import (
	"fmt"

	"github.com/cesizen/cesizen/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(ProvideRateLimitStore),
)

func ProvideRateLimitStore(cfg *config.Config) (Store, error) {
	switch cfg.RateLimit.Store {
	case "memory", "":
		return NewMemoryStore(), nil
	case "redis":
		opts, err := redis.ParseURL(cfg.RateLimit.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		return NewRedisStore(redis.NewClient(opts)), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit store: %s (supported: memory, redis)", cfg.RateLimit.Store)
	}
}
