package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type entry struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	Cart      bool      `bson:"cart"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("storefront"),
	}
}

func (m *MongoRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var e entry
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return e.Value, nil
}

func (m *MongoRepository) Put(ctx context.Context, key string, value []byte) error {
	update := bson.M{"$set": bson.M{
		"value":      value,
		"cart":       strings.HasPrefix(key, CartKey),
		"updated_at": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, bson.M{"_id": key}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	return nil
}

// CreateIndexes expires abandoned carts after 90 days. Settings never expire.
func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(90 * 24 * 60 * 60).
				SetPartialFilterExpression(bson.M{"cart": true}),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.collection.Database().Client().Disconnect(ctx)
}
