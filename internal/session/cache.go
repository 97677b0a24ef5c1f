// Package session owns the resolved-session cache shared by the auth middleware and the identity usecase.
package session

import (
	"context"
	"sync"
	"time"

	"flowrk-backend/internal/domain"
)

// signOutMemory is how long a signed-out token is remembered so an in-flight lookup for it
// cannot cache it again.
const signOutMemory = time.Minute

type entry struct {
	identity  domain.Identity
	expiresAt time.Time
}

type signOut struct {
	generation uint64
	at         time.Time
}

// Cache maps session tokens to identities. It is kept fresh by the provider's session
// events and re-publishes them to its own subscribers.
type Cache struct {
	provider domain.IdentityProvider
	maxAge   time.Duration
	now      func() time.Time

	mu         sync.RWMutex
	entries    map[string]entry
	generation uint64
	signedOut  map[string]signOut

	subMu       sync.RWMutex
	subscribers map[int]func(domain.SessionEvent)
	nextSubID   int

	unsubscribe func()
}

// NewCache subscribes to provider. Entries live until the session expires or maxAge passes,
// whichever comes first; maxAge bounds how long a revocation made elsewhere can go unseen.
func NewCache(provider domain.IdentityProvider, maxAge time.Duration) *Cache {
	c := &Cache{
		provider:    provider,
		maxAge:      maxAge,
		now:         time.Now,
		entries:     make(map[string]entry),
		signedOut:   make(map[string]signOut),
		subscribers: make(map[int]func(domain.SessionEvent)),
	}
	c.unsubscribe = provider.Subscribe(c.onEvent)
	return c
}

func (c *Cache) Lookup(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	c.mu.RLock()
	cached, ok := c.entries[token]
	generation := c.generation
	c.mu.RUnlock()
	if ok && c.now().Before(cached.expiresAt) {
		identity := cached.identity
		return &identity, nil
	}
	if ok {
		c.evict(token)
	}

	identity, err := c.provider.CurrentSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if !c.storeIfLive(token, identity, generation) {
		return nil, domain.ErrUnauthenticated
	}
	return identity, nil
}

// Subscribe registers fn for session events. The returned func unsubscribes; calling it twice is safe.
func (c *Cache) Subscribe(fn func(domain.SessionEvent)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			delete(c.subscribers, id)
		})
	}
}

// Close stops listening to the provider. Cached entries stay readable.
func (c *Cache) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Len reports the number of cached sessions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) onEvent(event domain.SessionEvent) {
	switch event.Kind {
	case domain.SessionSignedIn:
		if event.Identity != nil {
			c.store(event.Token, event.Identity)
		}
	case domain.SessionSignedOut:
		c.signOut(event.Token)
	}

	c.subMu.RLock()
	subs := make([]func(domain.SessionEvent), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.subMu.RUnlock()
	for _, fn := range subs {
		fn(event)
	}
}

func (c *Cache) store(token string, identity *domain.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(token, identity)
}

// storeIfLive caches identity unless token was signed out after generation was read.
func (c *Cache) storeIfLive(token string, identity *domain.Identity, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if out, ok := c.signedOut[token]; ok && out.generation > generation {
		return false
	}
	c.put(token, identity)
	return true
}

// put requires c.mu held for writing.
func (c *Cache) put(token string, identity *domain.Identity) {
	now := c.now()
	expiresAt := identity.ExpiresAt
	if c.maxAge > 0 && (expiresAt.IsZero() || now.Add(c.maxAge).Before(expiresAt)) {
		expiresAt = now.Add(c.maxAge)
	}

	c.entries[token] = entry{identity: *identity, expiresAt: expiresAt}
	if len(c.entries) > 10000 {
		for t, e := range c.entries {
			if !now.Before(e.expiresAt) {
				delete(c.entries, t)
			}
		}
	}
}

func (c *Cache) evict(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
}

func (c *Cache) signOut(token string) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
	c.generation++
	c.signedOut[token] = signOut{generation: c.generation, at: now}
	for t, out := range c.signedOut {
		if now.Sub(out.at) > signOutMemory {
			delete(c.signedOut, t)
		}
	}
}
