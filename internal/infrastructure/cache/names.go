package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"srp-backend/internal/infrastructure/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NameSource is the authoritative store behind a NameCache.
type NameSource interface {
	Lookup(ctx context.Context, kind string, id uint64) (string, error)
}

// NameCache is a read-through Redis cache of display names.
// Errors from the source, NotFound included, are returned as is and never cached.
type NameCache struct {
	rdb *redis.Client
	src NameSource
	ttl time.Duration
	log *zap.Logger
}

func NewNameCache(rdb *redis.Client, src NameSource, ttl time.Duration, log *zap.Logger) *NameCache {
	return &NameCache{rdb: rdb, src: src, ttl: ttl, log: logger.OrNop(log)}
}

func nameKey(kind string, id uint64) string { return fmt.Sprintf("name:%s:%d", kind, id) }

func (c *NameCache) Lookup(ctx context.Context, kind string, id uint64) (string, error) {
	key := nameKey(kind, id)
	name, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return name, nil
	case !errors.Is(err, redis.Nil):
		// fall back to the source when Redis is unavailable
		c.log.Warn("name cache read failed", zap.String("key", key), zap.Error(err))
	}

	name, err = c.src.Lookup(ctx, kind, id)
	if err != nil {
		return "", err
	}
	if err := c.rdb.Set(ctx, key, name, c.ttl).Err(); err != nil {
		c.log.Warn("name cache write failed", zap.String("key", key), zap.Error(err))
	}
	return name, nil
}
