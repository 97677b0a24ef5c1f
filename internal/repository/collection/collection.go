// Package collection emulates a document-query API over a PathStore.
//
// Every Filter reads the whole collection subtree and scans it in memory: cost is
// O(collection size) per call and there are no indexes. That is fine for hundreds to low
// thousands of documents; it is not a query engine.
package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"flowrk-backend/internal/domain"
	"flowrk-backend/internal/repository/tree"
	"flowrk-backend/pkg/logger"
)

type KeyStrategy int

const (
	// GeneratedKeys lets the store assign ids on Create (jobs, logs).
	GeneratedKeys KeyStrategy = iota
	// CallerKeys uses the document's own "id" as its key (profiles keyed by uid).
	CallerKeys
)

type Collection[T any] struct {
	store domain.PathStore
	name  string
	keys  KeyStrategy
	now   func() time.Time
}

func New[T any](store domain.PathStore, name string, keys KeyStrategy) *Collection[T] {
	return &Collection[T]{
		store: store,
		name:  name,
		keys:  keys,
		now:   time.Now,
	}
}

// Name returns the collection's top-level path.
func (c *Collection[T]) Name() string {
	return c.name
}

// Filter returns documents whose fields equal every entry of where, in store order.
// sortKey "field" sorts ascending, "-field" descending (stable). limit <= 0 means no limit.
// A missing collection yields an empty slice.
func (c *Collection[T]) Filter(ctx context.Context, where map[string]any, sortKey string, limit int) ([]T, error) {
	node, err := c.store.Read(ctx, c.name)
	if err != nil {
		return nil, err
	}

	predicates := make(map[string]any, len(where))
	for field, want := range where {
		normalized, err := normalizeScalar(want)
		if err != nil {
			return nil, err
		}
		predicates[field] = normalized
	}

	var docs []map[string]any
	for _, child := range tree.Children(node) {
		doc, ok := child.Value.(map[string]any)
		if !ok {
			continue
		}
		if _, has := doc["id"]; !has {
			doc["id"] = child.Key
		}
		if matches(doc, predicates) {
			docs = append(docs, doc)
		}
	}

	if sortKey != "" {
		field, desc := strings.TrimPrefix(sortKey, "-"), strings.HasPrefix(sortKey, "-")
		sort.SliceStable(docs, func(i, j int) bool {
			cmp := compareValues(docs[i][field], docs[j][field])
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}

	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := decode(doc, &item); err != nil {
			logger.Log.Warn("skipping undecodable document", "collection", c.name, "id", doc["id"], "error", err)
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// All returns every document in store order.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	return c.Filter(ctx, nil, "", 0)
}

// Get returns domain.ErrNotFound when nothing is stored under id.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	p, err := c.path(id)
	if err != nil {
		return nil, err
	}
	node, err := c.store.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	doc, ok := node.(map[string]any)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if _, has := doc["id"]; !has {
		doc["id"] = id
	}

	var item T
	if err := decode(doc, &item); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return &item, nil
}

// Create persists doc and returns it as stored. created_at is stamped when absent.
func (c *Collection[T]) Create(ctx context.Context, doc T) (*T, error) {
	normalized, err := tree.Normalize(doc)
	if err != nil {
		return nil, err
	}
	raw, ok := normalized.(map[string]any)
	if !ok {
		raw = map[string]any{}
	}
	if _, has := raw["created_at"]; !has {
		raw["created_at"] = domain.FormatTime(c.now())
	}

	var stored map[string]any
	switch c.keys {
	case GeneratedKeys:
		delete(raw, "id")
		stored, err = c.store.Push(ctx, c.name, raw)
		if err != nil {
			return nil, err
		}
	case CallerKeys:
		id, _ := raw["id"].(string)
		p, err := c.path(id)
		if err != nil {
			return nil, err
		}
		if err := c.store.Write(ctx, p, raw); err != nil {
			return nil, err
		}
		stored = raw
	}

	var item T
	if err := decode(stored, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update merges patch into the document. It does not check that the document exists:
// merging into a missing id creates a partial document.
func (c *Collection[T]) Update(ctx context.Context, id string, patch map[string]any) error {
	p, err := c.path(id)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}
	return c.store.Merge(ctx, p, patch)
}

// Delete removes the document permanently.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	p, err := c.path(id)
	if err != nil {
		return err
	}
	return c.store.Write(ctx, p, nil)
}

// path addresses a single document. An empty id or one containing "/" would reach the
// collection root or a nested node, so both are rejected.
func (c *Collection[T]) path(id string) (string, error) {
	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("%w: %s id %q", domain.ErrInvalidPath, c.name, id)
	}
	return tree.Join(c.name, id), nil
}

func matches(doc map[string]any, predicates map[string]any) bool {
	for field, want := range predicates {
		if !reflect.DeepEqual(doc[field], want) {
			return false
		}
	}
	return true
}

func normalizeScalar(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize predicate: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("normalize predicate: %w", err)
	}
	return out, nil
}

func decode(doc map[string]any, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// compareValues orders nil first, then booleans, numbers and strings. Values of other
// types compare equal, which keeps their relative store order under a stable sort.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case string:
		return strings.Compare(av, b.(string))
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}
