// Package firebase backs the path store with the Firebase Realtime Database.
package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"

	"flowrk-backend/internal/domain"
	"flowrk-backend/internal/repository/tree"
)

type store struct {
	client *db.Client
}

func NewStore(client *db.Client) domain.PathStore {
	return &store{client: client}
}

func (s *store) ref(path string) (*db.Ref, []string, error) {
	segs, err := tree.Split(path)
	if err != nil {
		return nil, nil, err
	}
	return s.client.NewRef(tree.Join(segs...)), segs, nil
}

func (s *store) Read(ctx context.Context, path string) (any, error) {
	ref, _, err := s.ref(path)
	if err != nil {
		return nil, err
	}
	var value any
	if err := ref.Get(ctx, &value); err != nil {
		return nil, unavailable(err)
	}
	return tree.Prune(value), nil
}

func (s *store) Write(ctx context.Context, path string, value any) error {
	ref, _, err := s.ref(path)
	if err != nil {
		return err
	}
	normalized, err := tree.Normalize(value)
	if err != nil {
		return err
	}
	if normalized == nil {
		err = ref.Delete(ctx)
	} else {
		err = ref.Set(ctx, normalized)
	}
	return unavailable(err)
}

// Push uses the database's own push ids: time-ordered, collision-free without coordination.
func (s *store) Push(ctx context.Context, path string, value any) (map[string]any, error) {
	ref, _, err := s.ref(path)
	if err != nil {
		return nil, err
	}
	normalized, err := tree.Normalize(value)
	if err != nil {
		return nil, err
	}

	child, err := ref.Push(ctx, nil)
	if err != nil {
		return nil, unavailable(err)
	}
	stored := tree.WithID(normalized, child.Key)
	if err := child.Set(ctx, stored); err != nil {
		return nil, unavailable(err)
	}
	return stored, nil
}

func (s *store) Merge(ctx context.Context, path string, patch map[string]any) error {
	ref, _, err := s.ref(path)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}

	update := make(map[string]any, len(patch))
	for field, value := range patch {
		fieldSegs, err := tree.Split(field)
		if err != nil {
			return err
		}
		normalized, err := tree.Normalize(value)
		if err != nil {
			return err
		}
		// nil entries in a multi-path update delete the child
		update[tree.Join(fieldSegs...)] = normalized
	}
	return unavailable(ref.Update(ctx, update))
}

func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: firebase: %v", domain.ErrStoreUnavailable, err)
}
