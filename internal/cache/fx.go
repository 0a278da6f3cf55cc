package cache

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/advisorhub/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewStore picks the Redis store when REDIS_ADDR is configured and an
// in-process store otherwise.
func NewStore(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Store {
	if cfg.RedisAddr == "" {
		log.Warn("redis not configured, using in-process cache")
		return NewMemory()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis ping failed", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return NewRedis(client)
}

// Module provides the shared cache store.
var Module = fx.Module("cache",
	fx.Provide(NewStore),
)
