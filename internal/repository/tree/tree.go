// Package tree implements the realtime-database path rules shared by every store backend:
// path validation, JSON normalization, and get/set on a nested map with empty-node pruning.
package tree

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"flowrk-backend/internal/domain"
)

const forbiddenChars = ".#$[]"

// Split validates path and returns its segments. Leading and trailing slashes are ignored.
func Split(path string) ([]string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidPath)
	}
	segs := strings.Split(trimmed, "/")
	for _, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", domain.ErrInvalidPath, path)
		}
		if strings.ContainsAny(seg, forbiddenChars) {
			return nil, fmt.Errorf("%w: segment %q contains one of %q", domain.ErrInvalidPath, seg, forbiddenChars)
		}
		for _, r := range seg {
			if r < 0x20 || r == 0x7f {
				return nil, fmt.Errorf("%w: control character in %q", domain.ErrInvalidPath, seg)
			}
		}
	}
	return segs, nil
}

// Join builds a path from segments without validating it.
func Join(segs ...string) string {
	return strings.Join(segs, "/")
}

// Normalize converts v into plain JSON types (map[string]any, []any, string, float64, bool)
// and prunes nil fields and empty objects. An empty result is nil.
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("normalize value: %w", err)
	}
	return Prune(out), nil
}

// Prune drops nil map entries and empty maps, recursively. Empty arrays are kept.
func Prune(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if pruned := Prune(child); pruned == nil {
				delete(node, k)
			} else {
				node[k] = pruned
			}
		}
		if len(node) == 0 {
			return nil
		}
		return node
	case []any:
		for i, child := range node {
			node[i] = Prune(child)
		}
		return node
	default:
		return v
	}
}

// DeepCopy copies a normalized value so callers cannot alias stored state.
func DeepCopy(v any) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[k] = DeepCopy(child)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, child := range node {
			out[i] = DeepCopy(child)
		}
		return out
	default:
		return v
	}
}

// Get walks segs from root. Arrays are addressed by decimal index.
func Get(root any, segs []string) any {
	node := root
	for _, seg := range segs {
		switch current := node.(type) {
		case map[string]any:
			node = current[seg]
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(current) {
				return nil
			}
			node = current[idx]
		default:
			return nil
		}
		if node == nil {
			return nil
		}
	}
	return node
}

// Set replaces the node at segs with value (already normalized) and returns the new root.
// Setting nil deletes the node; parents left empty are pruned and the root itself may become nil.
func Set(root any, segs []string, value any) any {
	if len(segs) == 0 {
		return value
	}
	node := asMap(root)
	head := segs[0]
	child := Set(node[head], segs[1:], value)
	if child == nil {
		delete(node, head)
	} else {
		node[head] = child
	}
	if len(node) == 0 {
		return nil
	}
	return node
}

// asMap returns v as an object. Arrays become index-keyed objects and scalars are replaced.
func asMap(v any) map[string]any {
	switch node := v.(type) {
	case map[string]any:
		return node
	case []any:
		out := make(map[string]any, len(node))
		for i, child := range node {
			if child != nil {
				out[strconv.Itoa(i)] = child
			}
		}
		return out
	default:
		return map[string]any{}
	}
}

// Child is one entry of a collection node.
type Child struct {
	Key   string
	Value any
}

// Children returns the non-nil children of a collection node in store order:
// ascending key order for objects, index order for arrays.
func Children(node any) []Child {
	switch current := node.(type) {
	case map[string]any:
		keys := SortedKeys(current)
		out := make([]Child, 0, len(keys))
		for _, k := range keys {
			if current[k] != nil {
				out = append(out, Child{Key: k, Value: current[k]})
			}
		}
		return out
	case []any:
		out := make([]Child, 0, len(current))
		for i, child := range current {
			if child != nil {
				out = append(out, Child{Key: strconv.Itoa(i), Value: child})
			}
		}
		return out
	default:
		return nil
	}
}

func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewKey returns a time-ordered unique child key (UUIDv7), for backends without a native generator.
func NewKey() string {
	return uuid.Must(uuid.NewV7()).String()
}

// WithID returns a copy of a normalized object value with "id" set to key.
// Non-object values are wrapped as {"value": v, "id": key}.
func WithID(value any, key string) map[string]any {
	out := map[string]any{}
	switch node := value.(type) {
	case map[string]any:
		for k, v := range node {
			out[k] = v
		}
	case nil:
	default:
		out["value"] = node
	}
	out["id"] = key
	return out
}
