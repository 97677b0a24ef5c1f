package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"flowrk-backend/internal/domain"
)

func TestDataField(t *testing.T) {
	assert.Equal(t, "data.j1", dataField([]string{"j1"}))
	assert.Equal(t, "data.w1.saved_jobs", dataField([]string{"w1", "saved_jobs"}))
}

func TestPlain(t *testing.T) {
	t.Run("Should turn decoded BSON into JSON types", func(t *testing.T) {
		id := primitive.NewObjectID()
		at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

		got := plain(bson.M{
			"title":   "Paint",
			"count":   int32(3),
			"total":   int64(12),
			"size":    7,
			"rate":    2.5,
			"active":  true,
			"owner":   id,
			"posted":  primitive.NewDateTimeFromTime(at),
			"skills":  bson.A{"painting", int32(1)},
			"details": bson.D{{Key: "city", Value: "Pune"}, {Key: "nested", Value: bson.M{"n": int64(2)}}},
			"raw":     map[string]any{"list": []any{int32(4)}},
			"missing": nil,
		})

		assert.Equal(t, map[string]any{
			"title":   "Paint",
			"count":   float64(3),
			"total":   float64(12),
			"size":    float64(7),
			"rate":    2.5,
			"active":  true,
			"owner":   id.Hex(),
			"posted":  domain.FormatTime(at),
			"skills":  []any{"painting", float64(1)},
			"details": map[string]any{"city": "Pune", "nested": map[string]any{"n": float64(2)}},
			"raw":     map[string]any{"list": []any{float64(4)}},
			"missing": nil,
		}, got)
	})

	t.Run("Should pass scalars through", func(t *testing.T) {
		assert.Nil(t, plain(nil))
		assert.Equal(t, "x", plain("x"))
		assert.Equal(t, float64(9), plain(int64(9)))
	})
}
