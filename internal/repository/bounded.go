// Package repository holds cross-backend store plumbing; each backend lives in a subpackage.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/logger"
)

// BoundedStore runs every call of the wrapped store under a deadline, so callers never hang
// on a stalled backend, and logs transport failures before returning them.
type BoundedStore struct {
	next    domain.PathStore
	timeout time.Duration
	driver  string
}

func NewBoundedStore(next domain.PathStore, driver string, timeout time.Duration) *BoundedStore {
	return &BoundedStore{next: next, timeout: timeout, driver: driver}
}

func (s *BoundedStore) Read(ctx context.Context, path string) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	v, err := s.next.Read(ctx, path)
	return v, s.check(ctx, "read", path, err)
}

func (s *BoundedStore) Write(ctx context.Context, path string, value any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.check(ctx, "write", path, s.next.Write(ctx, path, value))
}

func (s *BoundedStore) Push(ctx context.Context, path string, value any) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	v, err := s.next.Push(ctx, path, value)
	return v, s.check(ctx, "push", path, err)
}

func (s *BoundedStore) Merge(ctx context.Context, path string, patch map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.check(ctx, "merge", path, s.next.Merge(ctx, path, patch))
}

// check lets path errors through untouched and tags everything else as unavailability.
func (s *BoundedStore) check(ctx context.Context, op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidPath) {
		return err
	}
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v: %v", domain.ErrStoreUnavailable, ctxErr, err)
		} else {
			err = fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}
	logger.Log.Error("store operation failed",
		"driver", s.driver,
		"op", op,
		"path", path,
		"error", err,
	)
	return err
}
