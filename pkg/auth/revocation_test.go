package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowrk-backend/pkg/redis"
)

func TestRevocationsWithRedis(t *testing.T) {
	ctx := context.Background()
	setup := func(t *testing.T) (*miniredis.Miniredis, *Revocations) {
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return mr, NewRevocations(client)
	}

	t.Run("Should keep revoked ids in Redis until the session would expire", func(t *testing.T) {
		mr, revocations := setup(t)
		require.NoError(t, revocations.Revoke(ctx, "s1", time.Now().Add(time.Hour)))

		key := redis.Key("revoked", "s1")
		assert.True(t, mr.Exists(key))
		assert.InDelta(t, time.Hour.Seconds(), mr.TTL(key).Seconds(), 5)
		assert.Empty(t, revocations.local)

		revoked, err := revocations.IsRevoked(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = revocations.IsRevoked(ctx, "s2")
		require.NoError(t, err)
		assert.False(t, revoked)

		mr.FastForward(time.Hour + time.Minute)
		revoked, err = revocations.IsRevoked(ctx, "s1")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("Should remember revocations made during an outage", func(t *testing.T) {
		mr, revocations := setup(t)
		mr.SetError("ERR simulated outage")
		require.NoError(t, revocations.Revoke(ctx, "s1", time.Now().Add(time.Hour)))

		revoked, err := revocations.IsRevoked(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, revoked)

		mr.SetError("")
		assert.False(t, mr.Exists(redis.Key("revoked", "s1")))
		revoked, err = revocations.IsRevoked(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})
}
