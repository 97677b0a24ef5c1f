package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flowrk-backend/internal/domain"
	"flowrk-backend/internal/session"
)

type MockProvider struct {
	mock.Mock

	mu   sync.Mutex
	subs []func(domain.SessionEvent)
}

func (m *MockProvider) AuthURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockProvider) SignIn(ctx context.Context, cred domain.Credential) (*domain.Identity, string, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.Identity), args.String(1), args.Error(2)
}

func (m *MockProvider) CurrentSession(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockProvider) Subscribe(fn func(domain.SessionEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
	return func() {}
}

func (m *MockProvider) publish(event domain.SessionEvent) {
	m.mu.Lock()
	subs := append([]func(domain.SessionEvent){}, m.subs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(event)
	}
}

func identity(uid string) *domain.Identity {
	return &domain.Identity{UID: uid, Email: uid + "@example.com", ExpiresAt: time.Now().Add(time.Hour)}
}

func TestCacheLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject an empty token without asking the provider", func(t *testing.T) {
		provider := new(MockProvider)
		cache := session.NewCache(provider, time.Minute)
		_, err := cache.Lookup(ctx, "")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		provider.AssertNotCalled(t, "CurrentSession", mock.Anything, mock.Anything)
	})

	t.Run("Should resolve once and serve later lookups from memory", func(t *testing.T) {
		provider := new(MockProvider)
		provider.On("CurrentSession", mock.Anything, "tok").Return(identity("u1"), nil).Once()
		cache := session.NewCache(provider, time.Minute)

		first, err := cache.Lookup(ctx, "tok")
		require.NoError(t, err)
		second, err := cache.Lookup(ctx, "tok")
		require.NoError(t, err)

		assert.Equal(t, "u1", first.UID)
		assert.Equal(t, "u1", second.UID)
		provider.AssertNumberOfCalls(t, "CurrentSession", 1)
	})

	t.Run("Should not cache provider failures", func(t *testing.T) {
		provider := new(MockProvider)
		provider.On("CurrentSession", mock.Anything, "bad").Return(nil, domain.ErrUnauthenticated)
		cache := session.NewCache(provider, time.Minute)

		_, err := cache.Lookup(ctx, "bad")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		assert.Equal(t, 0, cache.Len())
	})
}

func TestCacheEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("Should store sessions announced by sign-in", func(t *testing.T) {
		provider := new(MockProvider)
		cache := session.NewCache(provider, time.Minute)

		provider.publish(domain.SessionEvent{Kind: domain.SessionSignedIn, Token: "tok", Identity: identity("u1")})
		got, err := cache.Lookup(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.UID)
		provider.AssertNotCalled(t, "CurrentSession", mock.Anything, mock.Anything)
	})

	t.Run("Should evict on sign-out and ask the provider again", func(t *testing.T) {
		provider := new(MockProvider)
		provider.On("CurrentSession", mock.Anything, "tok").Return(nil, domain.ErrUnauthenticated)
		cache := session.NewCache(provider, time.Minute)

		provider.publish(domain.SessionEvent{Kind: domain.SessionSignedIn, Token: "tok", Identity: identity("u1")})
		provider.publish(domain.SessionEvent{Kind: domain.SessionSignedOut, Token: "tok", Identity: identity("u1")})

		_, err := cache.Lookup(ctx, "tok")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("Should forward events to subscribers until they unsubscribe", func(t *testing.T) {
		provider := new(MockProvider)
		cache := session.NewCache(provider, time.Minute)

		var received []domain.SessionEventKind
		unsubscribe := cache.Subscribe(func(event domain.SessionEvent) {
			received = append(received, event.Kind)
		})

		provider.publish(domain.SessionEvent{Kind: domain.SessionSignedIn, Token: "tok", Identity: identity("u1")})
		unsubscribe()
		unsubscribe()
		provider.publish(domain.SessionEvent{Kind: domain.SessionSignedOut, Token: "tok", Identity: identity("u1")})

		assert.Equal(t, []domain.SessionEventKind{domain.SessionSignedIn}, received)
	})
}

func TestCacheSignOutDuringLookup(t *testing.T) {
	t.Run("Should not cache a session signed out while it was being resolved", func(t *testing.T) {
		provider := new(MockProvider)
		started := make(chan struct{})
		release := make(chan struct{})
		provider.On("CurrentSession", mock.Anything, "tok").
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(identity("u1"), nil).Once()
		provider.On("CurrentSession", mock.Anything, "tok").Return(nil, domain.ErrUnauthenticated)
		cache := session.NewCache(provider, time.Minute)

		done := make(chan error, 1)
		go func() {
			_, err := cache.Lookup(context.Background(), "tok")
			done <- err
		}()

		<-started
		provider.publish(domain.SessionEvent{Kind: domain.SessionSignedOut, Token: "tok"})
		close(release)

		select {
		case err := <-done:
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		case <-time.After(2 * time.Second):
			t.Fatal("lookup did not return")
		}
		assert.Equal(t, 0, cache.Len())

		_, err := cache.Lookup(context.Background(), "tok")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("Should keep caching other tokens resolved across a sign-out", func(t *testing.T) {
		provider := new(MockProvider)
		started := make(chan struct{})
		release := make(chan struct{})
		provider.On("CurrentSession", mock.Anything, "tok-b").
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(identity("u2"), nil).Once()
		cache := session.NewCache(provider, time.Minute)

		done := make(chan error, 1)
		go func() {
			_, err := cache.Lookup(context.Background(), "tok-b")
			done <- err
		}()

		<-started
		provider.publish(domain.SessionEvent{Kind: domain.SessionSignedOut, Token: "tok-a"})
		close(release)

		require.NoError(t, <-done)
		assert.Equal(t, 1, cache.Len())
	})
}
