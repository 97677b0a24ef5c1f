// Package postgres stores the realtime tree in Postgres: one JSONB document per top-level key.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"flowrk-backend/internal/domain"
	"flowrk-backend/internal/repository/tree"
)

const schema = `
CREATE TABLE IF NOT EXISTS realtime_nodes (
	root       TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type Store struct {
	db     *pgxpool.Pool
	newKey func() string
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db, newKey: tree.NewKey}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create realtime_nodes: %w", err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, path string) (any, error) {
	segs, err := tree.Split(path)
	if err != nil {
		return nil, err
	}

	var raw []byte
	if len(segs) == 1 {
		err = s.db.QueryRow(ctx, `SELECT data FROM realtime_nodes WHERE root = $1`, segs[0]).Scan(&raw)
	} else {
		// #> walks the document with a text[] path, matching both object keys and array indexes
		err = s.db.QueryRow(ctx,
			`SELECT data #> $2 FROM realtime_nodes WHERE root = $1`,
			segs[0], pq.Array(segs[1:]),
		).Scan(&raw)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	if raw == nil {
		return nil, nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("decode node %s: %w", path, err)
	}
	return tree.Prune(value), nil
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
	return s.mutate(ctx, segs[0], func(doc any) any {
		return tree.Set(doc, segs[1:], normalized)
	})
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

	key := s.newKey()
	stored := tree.WithID(normalized, key)
	childSegs := append(segs[1:len(segs):len(segs)], key)
	err = s.mutate(ctx, segs[0], func(doc any) any {
		return tree.Set(doc, childSegs, tree.DeepCopy(stored))
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *Store) Merge(ctx context.Context, path string, patch map[string]any) error {
	segs, err := tree.Split(path)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
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
		full := append(append([]string{}, segs[1:]...), fieldSegs...)
		updates = append(updates, update{segs: full, value: normalized})
	}

	return s.mutate(ctx, segs[0], func(doc any) any {
		for _, u := range updates {
			doc = tree.Set(doc, u.segs, u.value)
		}
		return doc
	})
}

// mutate applies fn to the root document under a transaction-scoped advisory lock,
// so concurrent writers to the same root serialize instead of losing updates.
func (s *Store) mutate(ctx context.Context, root string, fn func(doc any) any) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return unavailable(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, root); err != nil {
		return unavailable(err)
	}

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT data FROM realtime_nodes WHERE root = $1`, root).Scan(&raw)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return unavailable(err)
	}

	var doc any
	if raw != nil {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("decode node %s: %w", root, err)
		}
	}

	doc = fn(doc)
	if doc == nil {
		if _, err := tx.Exec(ctx, `DELETE FROM realtime_nodes WHERE root = $1`, root); err != nil {
			return unavailable(err)
		}
	} else {
		encoded, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode node %s: %w", root, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO realtime_nodes (root, data, updated_at) VALUES ($1, $2::jsonb, NOW())
			ON CONFLICT (root) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
			root, string(encoded),
		)
		if err != nil {
			return unavailable(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: postgres: %v", domain.ErrStoreUnavailable, err)
}
