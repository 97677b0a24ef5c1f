// Package memory provides in-process implementations of the store and role cache,
// used for local development (STORE_DRIVER=memory) and as the test backend.
package memory

import (
	"context"
	"fmt"
	"sync"

	"flowrk-backend/internal/domain"
	"flowrk-backend/internal/repository/tree"
)

// Store is a mutex-guarded realtime-database tree.
type Store struct {
	mu     sync.RWMutex
	root   any
	newKey func() string
}

func NewStore() *Store {
	return &Store{newKey: tree.NewKey}
}

func (s *Store) Read(ctx context.Context, path string) (any, error) {
	segs, err := tree.Split(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return tree.DeepCopy(tree.Get(s.root, segs)), nil
}

func (s *Store) Write(ctx context.Context, path string, value any) error {
	segs, err := tree.Split(path)
	if err != nil {
		return err
	}
	normalized, err := tree.Normalize(value)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = tree.Set(s.root, segs, normalized)
	return nil
}

func (s *Store) Push(ctx context.Context, path string, value any) (map[string]any, error) {
	segs, err := tree.Split(path)
	if err != nil {
		return nil, err
	}
	normalized, err := tree.Normalize(value)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	key := s.newKey()
	stored := tree.WithID(normalized, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = tree.Set(s.root, append(segs, key), stored)
	return tree.DeepCopy(stored).(map[string]any), nil
}

func (s *Store) Merge(ctx context.Context, path string, patch map[string]any) error {
	segs, err := tree.Split(path)
	if err != nil {
		return err
	}

	type update struct {
		segs  []string
		value any
	}
	updates := make([]update, 0, len(patch))
	for field, value := range patch {
		fieldSegs, err := tree.Split(field)
		if err != nil {
			return err
		}
		normalized, err := tree.Normalize(value)
		if err != nil {
			return err
		}
		full := append(append([]string{}, segs...), fieldSegs...)
		updates = append(updates, update{segs: full, value: normalized})
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range updates {
		s.root = tree.Set(s.root, u.segs, u.value)
	}
	return nil
}
