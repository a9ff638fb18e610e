package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	ProductsCollection = "products"
	UsersCollection    = "users"
	CartsCollection    = "carts"
	OrdersCollection   = "orders"
)

// Connect opens a MongoDB client and verifies it with a ping
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique and lookup indexes the stores rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for name, idx := range indexModels() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// translate maps driver errors onto the store sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

// indexModels lists the indexes per collection
func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ProductsCollection: {
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "gender", Value: 1}}},
		},
		CartsCollection: {
			// one cart per owner, even across instances without Redis locks
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "guestId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "paymentIntentId", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
	}
}
