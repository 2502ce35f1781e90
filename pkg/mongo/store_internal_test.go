package mongo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/ppp/pkg/document"
)

func TestStore_toDocument(t *testing.T) {
	t.Parallel()

	id := bson.NewObjectID()
	s := NewStore(nil, WithSealedFields("broker"))

	doc := s.toDocument(bson.D{
		{Key: "_id", Value: id},
		{Key: "type", Value: "alor-openapi-v2"},
		{Key: "broker", Value: bson.D{
			{Key: "iv", Value: "00112233445566778899aabb"},
			{Key: "refreshToken", Value: "cipher"},
		}},
		{Key: "settings", Value: bson.M{"theme": "dark", "layout": bson.D{{Key: "cols", Value: int32(2)}}}},
		{Key: "tags", Value: bson.A{"a", bson.D{{Key: "k", Value: "v"}}}},
	})

	assert.Equal(t, id.Hex(), doc.ID())

	broker, ok := doc["broker"].(document.Document)
	require.True(t, ok, "sealed field decodes as document")
	assert.Equal(t, "cipher", broker["refreshToken"])

	settings, ok := doc["settings"].(map[string]any)
	require.True(t, ok, "other embedded documents decode as plain maps")
	assert.Equal(t, "dark", settings["theme"])
	assert.Equal(t, map[string]any{"cols": int32(2)}, settings["layout"])

	assert.Equal(t, []any{"a", map[string]any{"k": "v"}}, doc["tags"])
}

func TestStore_Transform(t *testing.T) {
	t.Parallel()

	docs := []document.Document{{"_id": "a"}, {"_id": "b"}}

	t.Run("runs transforms in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		mark := func(name string) Transform {
			return func(_ context.Context, v any) (any, error) {
				order = append(order, name)
				return v, nil
			}
		}
		s := NewStore(nil, WithTransform(mark("first")), WithTransform(mark("second")))

		out, err := s.Transform(context.Background(), docs)
		require.NoError(t, err)
		assert.Equal(t, docs, out)
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("propagates errors", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		s := NewStore(nil, WithTransform(func(context.Context, any) (any, error) { return nil, boom }))

		_, err := s.Transform(context.Background(), docs)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("rejects foreign result types", func(t *testing.T) {
		t.Parallel()

		s := NewStore(nil, WithTransform(func(context.Context, any) (any, error) { return "nope", nil }))

		_, err := s.Transform(context.Background(), docs)
		assert.ErrorIs(t, err, ErrUnexpectedTransform)
	})

	t.Run("document cipher hook", func(t *testing.T) {
		t.Parallel()

		cipher := document.NewCipher(passthroughEngine{})
		s := NewStore(nil, WithTransform(cipher.Transformation()))

		out, err := s.Transform(context.Background(), []document.Document{{"_id": "a", "iv": "00112233445566778899aabb", "token": "x"}})
		require.NoError(t, err)
		assert.Equal(t, "x", out[0]["token"])
	})
}

type passthroughEngine struct{}

func (passthroughEngine) GenerateIV() ([]byte, error) {
	return make([]byte, 12), nil
}

func (passthroughEngine) Encrypt(_ []byte, plaintext string) (string, error) {
	return plaintext, nil
}

func (passthroughEngine) Decrypt(_ []byte, ciphertext string) (string, error) {
	return ciphertext, nil
}
