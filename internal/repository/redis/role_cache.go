// Package redis implements caches on top of the shared Redis client.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/logger"
	"flowrk-backend/pkg/redis"
)

// RoleCache stores derived roles in Redis and degrades to the fallback cache
// whenever Redis is missing or failing.
type RoleCache struct {
	client   *goredis.Client
	ttl      time.Duration
	fallback domain.RoleCache
}

func NewRoleCache(client *goredis.Client, ttl time.Duration, fallback domain.RoleCache) *RoleCache {
	return &RoleCache{client: client, ttl: ttl, fallback: fallback}
}

func (c *RoleCache) Get(ctx context.Context, uid string) (domain.Role, error) {
	if c.client == nil {
		return c.fallback.Get(ctx, uid)
	}
	val, err := c.client.Get(ctx, redis.Key("role", uid)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		logger.Log.Warn("role cache read failed, using in-memory fallback", "uid", uid, "error", err)
		return c.fallback.Get(ctx, uid)
	}
	return domain.Role(val), nil
}

func (c *RoleCache) Set(ctx context.Context, uid string, role domain.Role) error {
	if c.client == nil {
		return c.fallback.Set(ctx, uid, role)
	}
	if err := c.client.Set(ctx, redis.Key("role", uid), string(role), c.ttl).Err(); err != nil {
		logger.Log.Warn("role cache write failed, using in-memory fallback", "uid", uid, "error", err)
		return c.fallback.Set(ctx, uid, role)
	}
	return nil
}

func (c *RoleCache) Invalidate(ctx context.Context, uid string) error {
	// The fallback may hold an entry from an earlier outage.
	_ = c.fallback.Invalidate(ctx, uid)
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, redis.Key("role", uid)).Err(); err != nil {
		logger.Log.Warn("role cache invalidate failed", "uid", uid, "error", err)
		return err
	}
	return nil
}
