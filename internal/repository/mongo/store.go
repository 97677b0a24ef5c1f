// Package mongo stores the realtime tree in MongoDB: one {_id: root, data: ...} document
// per top-level key, addressed below the root with dotted field paths.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flowrk-backend/internal/domain"
	"flowrk-backend/internal/repository/tree"
)

const collectionName = "realtime_nodes"

type store struct {
	nodes *mongo.Collection
}

func NewStore(database *mongo.Database) domain.PathStore {
	return &store{nodes: database.Collection(collectionName)}
}

type node struct {
	ID   string `bson:"_id"`
	Data any    `bson:"data"`
}

func (s *store) Read(ctx context.Context, path string) (any, error) {
	segs, err := tree.Split(path)
	if err != nil {
		return nil, err
	}
	doc, err := s.load(ctx, segs[0])
	if err != nil {
		return nil, err
	}
	return tree.Get(doc, segs[1:]), nil
}

func (s *store) Write(ctx context.Context, path string, value any) error {
	segs, err := tree.Split(path)
	if err != nil {
		return err
	}
	normalized, err := tree.Normalize(value)
	if err != nil {
		return err
	}

	root := segs[0]
	if len(segs) == 1 {
		if normalized == nil {
			_, err = s.nodes.DeleteOne(ctx, bson.M{"_id": root})
			return unavailable(err)
		}
		_, err = s.nodes.ReplaceOne(ctx,
			bson.M{"_id": root},
			node{ID: root, Data: normalized},
			options.Replace().SetUpsert(true),
		)
		return unavailable(err)
	}

	field := dataField(segs[1:])
	if normalized == nil {
		if _, err := s.nodes.UpdateOne(ctx, bson.M{"_id": root}, bson.M{"$unset": bson.M{field: ""}}); err != nil {
			return unavailable(err)
		}
		return s.prune(ctx, root)
	}
	_, err = s.nodes.UpdateOne(ctx,
		bson.M{"_id": root},
		bson.M{"$set": bson.M{field: normalized}},
		options.Update().SetUpsert(true),
	)
	return unavailable(err)
}

// Push keys children with ObjectIDs: the leading timestamp keeps them time-ordered.
func (s *store) Push(ctx context.Context, path string, value any) (map[string]any, error) {
	if _, err := tree.Split(path); err != nil {
		return nil, err
	}
	normalized, err := tree.Normalize(value)
	if err != nil {
		return nil, err
	}
	key := primitive.NewObjectID().Hex()
	stored := tree.WithID(normalized, key)
	if err := s.Write(ctx, tree.Join(strings.Trim(path, "/"), key), stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *store) Merge(ctx context.Context, path string, patch map[string]any) error {
	segs, err := tree.Split(path)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}

	set, unset := bson.M{}, bson.M{}
	for field, value := range patch {
		fieldSegs, err := tree.Split(field)
		if err != nil {
			return err
		}
		normalized, err := tree.Normalize(value)
		if err != nil {
			return err
		}
		full := dataField(append(append([]string{}, segs[1:]...), fieldSegs...))
		if normalized == nil {
			unset[full] = ""
		} else {
			set[full] = normalized
		}
	}

	root := segs[0]
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if _, err := s.nodes.UpdateOne(ctx, bson.M{"_id": root}, update, options.Update().SetUpsert(len(set) > 0)); err != nil {
		return unavailable(err)
	}
	if len(unset) > 0 {
		return s.prune(ctx, root)
	}
	return nil
}

func (s *store) load(ctx context.Context, root string) (any, error) {
	var raw bson.M
	err := s.nodes.FindOne(ctx, bson.M{"_id": root}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return tree.Prune(plain(raw["data"])), nil
}

// prune removes objects left empty by $unset, which MongoDB keeps but the realtime tree does not.
func (s *store) prune(ctx context.Context, root string) error {
	var raw bson.M
	err := s.nodes.FindOne(ctx, bson.M{"_id": root}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return unavailable(err)
	}

	before := plain(raw["data"])
	after := tree.Prune(tree.DeepCopy(before))
	switch {
	case after == nil:
		_, err = s.nodes.DeleteOne(ctx, bson.M{"_id": root})
	case !reflect.DeepEqual(before, after):
		_, err = s.nodes.ReplaceOne(ctx, bson.M{"_id": root}, node{ID: root, Data: after})
	}
	return unavailable(err)
}

func dataField(segs []string) string {
	return "data." + strings.Join(segs, ".")
}

// plain converts decoded BSON into the JSON types the rest of the store layer expects.
func plain(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = plain(child)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = plain(child)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, elem := range val {
			out[elem.Key] = plain(elem.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = plain(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = plain(child)
		}
		return out
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return domain.FormatTime(val.Time())
	default:
		return v
	}
}

func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: mongo: %v", domain.ErrStoreUnavailable, err)
}
