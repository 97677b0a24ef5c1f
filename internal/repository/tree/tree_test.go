package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowrk-backend/internal/domain"
	"flowrk-backend/internal/repository/tree"
)

func TestSplit(t *testing.T) {
	t.Run("Should ignore leading and trailing slashes", func(t *testing.T) {
		segs, err := tree.Split("/jobs/abc/")
		require.NoError(t, err)
		assert.Equal(t, []string{"jobs", "abc"}, segs)
	})

	for _, path := range []string{"", "/", "jobs//abc", "jobs/a.b", "jobs/a#b", "jobs/a$b", "jobs/a[0]", "jobs/a\x01"} {
		t.Run("Should reject "+path, func(t *testing.T) {
			_, err := tree.Split(path)
			assert.ErrorIs(t, err, domain.ErrInvalidPath)
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("Should drop empty fields and empty objects but keep empty arrays", func(t *testing.T) {
		type doc struct {
			Name   string         `json:"name,omitempty"`
			Nested map[string]any `json:"nested"`
			List   []string       `json:"list"`
		}
		out, err := tree.Normalize(doc{Nested: map[string]any{"gone": nil}, List: []string{}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"list": []any{}}, out)
	})

	t.Run("Should turn an empty object into nil", func(t *testing.T) {
		out, err := tree.Normalize(map[string]any{"a": map[string]any{}})
		require.NoError(t, err)
		assert.Nil(t, out)
	})
}

func TestSetAndGet(t *testing.T) {
	t.Run("Should create intermediate objects", func(t *testing.T) {
		root := tree.Set(nil, []string{"workers", "u1", "city"}, "Pune")
		assert.Equal(t, "Pune", tree.Get(root, []string{"workers", "u1", "city"}))
	})

	t.Run("Should prune parents emptied by a delete", func(t *testing.T) {
		root := tree.Set(nil, []string{"workers", "u1", "city"}, "Pune")
		root = tree.Set(root, []string{"workers", "u1", "city"}, nil)
		assert.Nil(t, root)
	})

	t.Run("Should keep siblings of a deleted node", func(t *testing.T) {
		root := tree.Set(nil, []string{"jobs", "a"}, map[string]any{"title": "A"})
		root = tree.Set(root, []string{"jobs", "b"}, map[string]any{"title": "B"})
		root = tree.Set(root, []string{"jobs", "a"}, nil)
		assert.Nil(t, tree.Get(root, []string{"jobs", "a"}))
		assert.Equal(t, "B", tree.Get(root, []string{"jobs", "b", "title"}))
	})

	t.Run("Should address arrays by index", func(t *testing.T) {
		root := map[string]any{"skills": []any{"painting", "cleaning"}}
		assert.Equal(t, "cleaning", tree.Get(root, []string{"skills", "1"}))
		assert.Nil(t, tree.Get(root, []string{"skills", "7"}))
	})
}

func TestChildren(t *testing.T) {
	t.Run("Should list object children in key order", func(t *testing.T) {
		children := tree.Children(map[string]any{"b": 2.0, "a": 1.0, "c": nil})
		require.Len(t, children, 2)
		assert.Equal(t, "a", children[0].Key)
		assert.Equal(t, "b", children[1].Key)
	})

	t.Run("Should skip holes in arrays", func(t *testing.T) {
		children := tree.Children([]any{nil, map[string]any{"x": 1.0}})
		require.Len(t, children, 1)
		assert.Equal(t, "1", children[0].Key)
	})
}

func TestNewKey(t *testing.T) {
	t.Run("Should produce increasing keys", func(t *testing.T) {
		first := tree.NewKey()
		second := tree.NewKey()
		assert.NotEqual(t, first, second)
		assert.Less(t, first, second)
	})
}
