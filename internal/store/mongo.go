package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore 基于 MongoDB 的文档存储
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

func (s *MongoStore) Collection(name string) Collection {
	return NewMongoCollection(s.db.Collection(name))
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type MongoCollection struct {
	coll *mongo.Collection
}

func NewMongoCollection(coll *mongo.Collection) *MongoCollection {
	return &MongoCollection{coll: coll}
}

var _ Collection = (*MongoCollection)(nil)

// newestFirst relies on ObjectIDs being generated in insertion order.
var newestFirst = bson.D{{Key: "_id", Value: -1}}

// idValue maps hex ids to ObjectIDs; anything else (e.g. the preference
// singleton key) is matched as a plain string.
func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func (c *MongoCollection) Get(ctx context.Context, id string, out any) error {
	err := c.coll.FindOne(ctx, bson.M{"_id": idValue(id)}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find %s/%s: %w", c.coll.Name(), id, err)
	}
	return nil
}

func (c *MongoCollection) Latest(ctx context.Context, out any) error {
	err := c.coll.FindOne(ctx, bson.M{}, options.FindOne().SetSort(newestFirst)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find latest in %s: %w", c.coll.Name(), err)
	}
	return nil
}

func (c *MongoCollection) Recent(ctx context.Context, limit int, out any) error {
	opts := options.Find().SetSort(newestFirst).SetLimit(int64(limit))
	return c.findAll(ctx, opts, out)
}

func (c *MongoCollection) List(ctx context.Context, limit int, out any) error {
	opts := options.Find().SetLimit(int64(limit))
	return c.findAll(ctx, opts, out)
}

func (c *MongoCollection) findAll(ctx context.Context, opts *options.FindOptions, out any) error {
	cur, err := c.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("find in %s: %w", c.coll.Name(), err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}
	return nil
}

func (c *MongoCollection) Insert(ctx context.Context, doc any) (string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	oid := primitive.NewObjectID()
	m["_id"] = oid

	if _, err := c.coll.InsertOne(ctx, m); err != nil {
		return "", fmt.Errorf("insert into %s: %w", c.coll.Name(), err)
	}
	return oid.Hex(), nil
}

func (c *MongoCollection) Update(ctx context.Context, id string, fields map[string]any) (int64, error) {
	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": idValue(id)}, bson.M{"$set": fields})
	if err != nil {
		return 0, fmt.Errorf("update %s/%s: %w", c.coll.Name(), id, err)
	}
	return res.MatchedCount, nil
}

func (c *MongoCollection) Upsert(ctx context.Context, id string, fields map[string]any) error {
	_, err := c.coll.UpdateOne(ctx,
		bson.M{"_id": idValue(id)},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", c.coll.Name(), id, err)
	}
	return nil
}

func (c *MongoCollection) Delete(ctx context.Context, id string) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": idValue(id)})
	if err != nil {
		return 0, fmt.Errorf("delete %s/%s: %w", c.coll.Name(), id, err)
	}
	return res.DeletedCount, nil
}

func (c *MongoCollection) DeleteExcept(ctx context.Context, id string) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$ne": idValue(id)}})
	if err != nil {
		return 0, fmt.Errorf("prune %s: %w", c.coll.Name(), err)
	}
	return res.DeletedCount, nil
}
