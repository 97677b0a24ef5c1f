package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"flowrk-backend/pkg/logger"
	"flowrk-backend/pkg/redis"
)

// Revocations remembers signed-out session ids until their tokens would have expired anyway.
type Revocations struct {
	client *goredis.Client

	mu    sync.Mutex
	local map[string]time.Time
	now   func() time.Time
}

// NewRevocations uses Redis when client is non-nil and process memory otherwise (or on Redis errors).
func NewRevocations(client *goredis.Client) *Revocations {
	return &Revocations{client: client, local: make(map[string]time.Time), now: time.Now}
}

func (r *Revocations) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if r.client != nil {
		err := r.client.Set(ctx, redis.Key("revoked", sessionID), "1", ttl).Err()
		if err == nil {
			return nil
		}
		logger.Log.Warn("session revocation falling back to memory", "error", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.local[sessionID] = until
	r.sweepLocked()
	return nil
}

func (r *Revocations) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	if r.client != nil {
		err := r.client.Get(ctx, redis.Key("revoked", sessionID)).Err()
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, goredis.Nil):
			// may still be in the local map from an outage
		default:
			logger.Log.Warn("session revocation lookup failed, checking memory", "error", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.local[sessionID]
	return ok && r.now().Before(until), nil
}

func (r *Revocations) sweepLocked() {
	now := r.now()
	for id, until := range r.local {
		if !now.Before(until) {
			delete(r.local, id)
		}
	}
}
