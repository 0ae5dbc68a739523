package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

type mongoDoc struct {
	ID    string  `bson:"_id,omitempty"`
	Name  string  `bson:"name"`
	Level float64 `bson:"level"`
}

func TestMongoCollection(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get decodes object id as hex", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "north"},
			{Key: "level", Value: 4.5},
		}))

		var got mongoDoc
		require.NoError(mt, NewMongoCollection(mt.Coll).Get(context.Background(), oid.Hex(), &got))
		assert.Equal(mt, oid.Hex(), got.ID)
		assert.Equal(mt, "north", got.Name)
		assert.Equal(mt, 4.5, got.Level)
	})

	mt.Run("get missing maps to ErrNotFound", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		var got mongoDoc
		err := NewMongoCollection(mt.Coll).Get(context.Background(), primitive.NewObjectID().Hex(), &got)
		assert.True(mt, errors.Is(err, ErrNotFound))
	})

	mt.Run("insert returns generated id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		id, err := NewMongoCollection(mt.Coll).Insert(context.Background(), mongoDoc{Name: "t", Level: 1})
		require.NoError(mt, err)
		assert.True(mt, IsObjectID(id))
	})

	mt.Run("update reports matched count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		n, err := NewMongoCollection(mt.Coll).Update(context.Background(), primitive.NewObjectID().Hex(), map[string]any{"level": 2.0})
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), n)
	})

	mt.Run("delete reports deleted count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		n, err := NewMongoCollection(mt.Coll).Delete(context.Background(), "not-an-object-id")
		require.NoError(mt, err)
		assert.Equal(mt, int64(0), n)
	})

	mt.Run("recent decodes a batch", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "b"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "name", Value: "a"}},
		))

		var got []mongoDoc
		require.NoError(mt, NewMongoCollection(mt.Coll).Recent(context.Background(), 2, &got))
		require.Len(mt, got, 2)
		assert.Equal(mt, "b", got[0].Name)
	})
}
