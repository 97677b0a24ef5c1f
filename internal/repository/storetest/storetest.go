// Package storetest holds the behaviour every domain.PathStore backend must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowrk-backend/internal/domain"
)

var rootSeq atomic.Int64

// DSN returns the environment variable key, skipping the calling test when it is unset.
func DSN(t *testing.T, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// Run exercises store through the path contract. Every case writes under its own
// top-level key and deletes it afterwards, so shared databases can be used.
func Run(t *testing.T, store domain.PathStore) {
	ctx := context.Background()

	newRoot := func(t *testing.T) string {
		root := fmt.Sprintf("conformance_%d_%d", time.Now().UnixNano(), rootSeq.Add(1))
		t.Cleanup(func() { _ = store.Write(context.Background(), root, nil) })
		return root
	}

	t.Run("Should read absence as nil without error", func(t *testing.T) {
		root := newRoot(t)
		value, err := store.Read(ctx, root)
		require.NoError(t, err)
		assert.Nil(t, value)

		value, err = store.Read(ctx, root+"/missing/deeper")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("Should write nested values as JSON types", func(t *testing.T) {
		root := newRoot(t)
		require.NoError(t, store.Write(ctx, root+"/jobs/j1", map[string]any{
			"title":  "Paint",
			"count":  3,
			"active": true,
			"skills": []string{"painting", "cleaning"},
		}))

		value, err := store.Read(ctx, root+"/jobs/j1")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"title":  "Paint",
			"count":  float64(3),
			"active": true,
			"skills": []any{"painting", "cleaning"},
		}, value)

		title, err := store.Read(ctx, "/"+root+"/jobs/j1/title/")
		require.NoError(t, err)
		assert.Equal(t, "Paint", title)
	})

	t.Run("Should delete on nil and prune empty parents", func(t *testing.T) {
		root := newRoot(t)
		require.NoError(t, store.Write(ctx, root+"/a/b/c", "leaf"))
		require.NoError(t, store.Write(ctx, root+"/keep", "sibling"))

		require.NoError(t, store.Write(ctx, root+"/a/b/c", nil))

		value, err := store.Read(ctx, root+"/a")
		require.NoError(t, err)
		assert.Nil(t, value)

		value, err = store.Read(ctx, root)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"keep": "sibling"}, value)

		require.NoError(t, store.Write(ctx, root, map[string]any{}))
		value, err = store.Read(ctx, root)
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("Should merge shallowly and delete only nil fields", func(t *testing.T) {
		root := newRoot(t)
		require.NoError(t, store.Write(ctx, root+"/workers/w1", map[string]any{
			"full_name": "Asha",
			"city":      "Pune",
			"area":      "Kothrud",
		}))

		require.NoError(t, store.Merge(ctx, root+"/workers/w1", map[string]any{
			"city": "Mumbai",
			"area": nil,
			"role": "worker",
		}))

		value, err := store.Read(ctx, root+"/workers/w1")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"full_name": "Asha", "city": "Mumbai", "role": "worker"}, value)
	})

	t.Run("Should prune a document whose last field is merged away", func(t *testing.T) {
		root := newRoot(t)
		require.NoError(t, store.Write(ctx, root+"/workers/w1", map[string]any{"city": "Pune"}))
		require.NoError(t, store.Write(ctx, root+"/workers/w2", map[string]any{"city": "Goa"}))

		require.NoError(t, store.Merge(ctx, root+"/workers/w1", map[string]any{"city": nil}))

		value, err := store.Read(ctx, root+"/workers")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"w2": map[string]any{"city": "Goa"}}, value)
	})

	t.Run("Should create a missing node on merge", func(t *testing.T) {
		root := newRoot(t)
		require.NoError(t, store.Merge(ctx, root+"/employers/e1", map[string]any{"name": "Sharma Hardware"}))
		value, err := store.Read(ctx, root+"/employers/e1/name")
		require.NoError(t, err)
		assert.Equal(t, "Sharma Hardware", value)
	})

	t.Run("Should push under unique time-ordered keys", func(t *testing.T) {
		root := newRoot(t)
		ids := make([]string, 0, 3)
		for i := 1; i <= 3; i++ {
			stored, err := store.Push(ctx, root+"/jobs", map[string]any{"n": i})
			require.NoError(t, err)
			id, _ := stored["id"].(string)
			require.NotEmpty(t, id)
			ids = append(ids, id)
		}
		assert.True(t, sort.StringsAreSorted(ids), "push keys %v", ids)

		value, err := store.Read(ctx, root+"/jobs")
		require.NoError(t, err)
		children, ok := value.(map[string]any)
		require.True(t, ok)
		require.Len(t, children, 3)
		for i, id := range ids {
			child, ok := children[id].(map[string]any)
			require.True(t, ok, id)
			assert.Equal(t, id, child["id"])
			assert.Equal(t, float64(i+1), child["n"])
		}
	})

	t.Run("Should return copies that do not alias stored data", func(t *testing.T) {
		root := newRoot(t)
		require.NoError(t, store.Write(ctx, root+"/doc", map[string]any{"tags": []any{"a"}}))

		value, err := store.Read(ctx, root+"/doc")
		require.NoError(t, err)
		doc := value.(map[string]any)
		doc["tags"] = []any{"changed"}
		doc["extra"] = true

		again, err := store.Read(ctx, root+"/doc")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"tags": []any{"a"}}, again)
	})

	t.Run("Should reject malformed paths", func(t *testing.T) {
		root := newRoot(t)
		for _, path := range []string{"", "/", root + "//x", root + "/a.b", root + "/a#b", root + "/$a", root + "/a[0]"} {
			_, err := store.Read(ctx, path)
			assert.ErrorIs(t, err, domain.ErrInvalidPath, "read %q", path)
			assert.ErrorIs(t, store.Write(ctx, path, "x"), domain.ErrInvalidPath, "write %q", path)
			assert.ErrorIs(t, store.Merge(ctx, path, map[string]any{"a": 1}), domain.ErrInvalidPath, "merge %q", path)
			_, err = store.Push(ctx, path, map[string]any{"a": 1})
			assert.ErrorIs(t, err, domain.ErrInvalidPath, "push %q", path)
		}
	})
}
