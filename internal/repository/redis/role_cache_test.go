package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowrk-backend/internal/domain"
	"flowrk-backend/internal/repository/memory"
	"flowrk-backend/internal/repository/redis"
	pkgredis "flowrk-backend/pkg/redis"
)

func TestRoleCacheWithoutRedis(t *testing.T) {
	ctx := context.Background()

	t.Run("Should serve roles from the fallback when no client is configured", func(t *testing.T) {
		fallback := memory.NewRoleCache(time.Minute)
		cache := redis.NewRoleCache(nil, time.Minute, fallback)

		require.NoError(t, cache.Set(ctx, "u1", domain.RoleWorker))
		role, err := cache.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleWorker, role)

		fallbackRole, err := fallback.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleWorker, fallbackRole)
	})

	t.Run("Should clear the fallback on invalidate", func(t *testing.T) {
		fallback := memory.NewRoleCache(time.Minute)
		cache := redis.NewRoleCache(nil, time.Minute, fallback)
		require.NoError(t, cache.Set(ctx, "u1", domain.RoleEmployer))

		require.NoError(t, cache.Invalidate(ctx, "u1"))
		role, err := cache.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.Role(""), role)
	})
}

func TestRoleCacheWithRedis(t *testing.T) {
	ctx := context.Background()
	setup := func(t *testing.T) (*miniredis.Miniredis, *redis.RoleCache, *memory.RoleCache) {
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		fallback := memory.NewRoleCache(time.Hour)
		return mr, redis.NewRoleCache(client, 30*time.Minute, fallback), fallback
	}

	t.Run("Should store roles in Redis with the TTL", func(t *testing.T) {
		mr, cache, fallback := setup(t)
		require.NoError(t, cache.Set(ctx, "u1", domain.RoleWorker))

		key := pkgredis.Key("role", "u1")
		stored, err := mr.Get(key)
		require.NoError(t, err)
		assert.Equal(t, "worker", stored)
		assert.Equal(t, 30*time.Minute, mr.TTL(key))

		role, err := cache.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleWorker, role)

		fallbackRole, err := fallback.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.Role(""), fallbackRole)
	})

	t.Run("Should report a miss for unknown and expired roles", func(t *testing.T) {
		mr, cache, _ := setup(t)
		role, err := cache.Get(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, domain.Role(""), role)

		require.NoError(t, cache.Set(ctx, "u1", domain.RoleEmployer))
		mr.FastForward(31 * time.Minute)
		role, err = cache.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.Role(""), role)
	})

	t.Run("Should delete the key on invalidate", func(t *testing.T) {
		mr, cache, _ := setup(t)
		require.NoError(t, cache.Set(ctx, "u1", domain.RoleWorker))
		require.NoError(t, cache.Invalidate(ctx, "u1"))
		assert.False(t, mr.Exists(pkgredis.Key("role", "u1")))
	})

	t.Run("Should fall back to memory while Redis errors", func(t *testing.T) {
		mr, cache, fallback := setup(t)
		mr.SetError("ERR simulated outage")

		require.NoError(t, cache.Set(ctx, "u1", domain.RoleEmployer))
		fallbackRole, err := fallback.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleEmployer, fallbackRole)

		role, err := cache.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleEmployer, role)

		assert.Error(t, cache.Invalidate(ctx, "u1"))
		fallbackRole, err = fallback.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.Role(""), fallbackRole)
	})
}
