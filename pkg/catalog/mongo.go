package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultMongoDatabase is used when ConnectMongo gets no database name.
	DefaultMongoDatabase = "canonic"

	classesCollection = "classes"
)

// Mongo stores entries in a MongoDB collection, one document per class.
type Mongo struct {
	client  *mongo.Client
	classes *mongo.Collection
	now     func() time.Time
}

// ConnectMongo connects to uri and ensures a unique index on hash.
func ConnectMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if uri == "" {
		return nil, errors.New("mongo catalog: empty uri")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	classes := client.Database(database).Collection(classesCollection)
	_, err = classes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create hash index: %w", err)
	}
	return &Mongo{client: client, classes: classes, now: time.Now}, nil
}

// Add upserts by hash. Fields describing the class are written only on
// insert; later sightings touch count and last_seen.
func (m *Mongo) Add(ctx context.Context, e Entry) (Entry, bool, error) {
	if err := validate(e); err != nil {
		return Entry{}, false, err
	}
	now := m.now().UTC()
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "count", Value: int64(1)}}},
		{Key: "$set", Value: bson.D{{Key: "last_seen", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "_id", Value: uuid.NewString()},
			{Key: "order", Value: e.Order},
			{Key: "directed", Value: e.Directed},
			{Key: "edges", Value: e.Edges},
			{Key: "group_size", Value: e.GroupSize},
			{Key: "orbits", Value: e.Orbits},
			{Key: "first_seen", Value: now},
		}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out Entry
	err := m.classes.FindOneAndUpdate(ctx, bson.D{{Key: "hash", Value: e.Hash}}, update, opts).Decode(&out)
	if err != nil {
		return Entry{}, false, fmt.Errorf("catalog add %s: %w", e.Hash, err)
	}
	return out, out.Count == 1, nil
}

func (m *Mongo) Get(ctx context.Context, hash string) (Entry, error) {
	var e Entry
	err := m.classes.FindOne(ctx, bson.D{{Key: "hash", Value: hash}}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("catalog get %s: %w", hash, err)
	}
	return e, nil
}

func (m *Mongo) List(ctx context.Context, limit int) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "count", Value: -1}, {Key: "hash", Value: 1}}).
		SetLimit(int64(listLimit(limit)))
	cur, err := m.classes.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("catalog list: %w", err)
	}
	var out []Entry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("catalog list: %w", err)
	}
	return out, nil
}

// Drop removes the collection. Used by tests against a live server.
func (m *Mongo) Drop(ctx context.Context) error {
	return m.classes.Drop(ctx)
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

var _ Catalog = (*Mongo)(nil)
