package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"lifeos/internal/config"
)

// NewClient builds a Redis client from application config. Callers own the
// client's lifecycle; there is no package-level singleton.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping verifies connectivity with a short deadline.
func Ping(ctx context.Context, client *goredis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}
