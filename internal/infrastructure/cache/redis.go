package cache

import (
	"context"
	"fmt"

	"srp-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects to the Redis that backs idempotency keys and the name cache,
// and pings it once within the configured timeout.
func OpenRedis(cfg *config.Config) (*redis.Client, error) {
	timeout := cfg.RedisPingTimeout()
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: timeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}
