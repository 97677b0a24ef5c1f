package memory

import (
	"context"
	"sync"
	"time"

	"flowrk-backend/internal/domain"
)

type roleEntry struct {
	role      domain.Role
	expiresAt time.Time
}

// RoleCache keeps derived roles in process memory with a TTL.
type RoleCache struct {
	mu      sync.Mutex
	entries map[string]roleEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewRoleCache(ttl time.Duration) *RoleCache {
	return &RoleCache{
		entries: make(map[string]roleEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *RoleCache) Get(_ context.Context, uid string) (domain.Role, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[uid]
	if !ok {
		return "", nil
	}
	if c.ttl > 0 && c.now().After(entry.expiresAt) {
		delete(c.entries, uid)
		return "", nil
	}
	return entry.role, nil
}

func (c *RoleCache) Set(_ context.Context, uid string, role domain.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[uid] = roleEntry{role: role, expiresAt: c.now().Add(c.ttl)}
	return nil
}

func (c *RoleCache) Invalidate(_ context.Context, uid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, uid)
	return nil
}
