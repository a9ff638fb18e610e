package store

import (
	"context"
	"time"

	"wearero-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCarts is the Mongo-backed CartStore
type MongoCarts struct {
	Collection *mongo.Collection
}

// NewMongoCarts creates a cart store over db
func NewMongoCarts(db *mongo.Database) *MongoCarts {
	return &MongoCarts{Collection: db.Collection(CartsCollection)}
}

func (s *MongoCarts) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	return s.findOne(ctx, bson.M{"user": userID})
}

func (s *MongoCarts) FindByGuest(ctx context.Context, guestID string) (*models.Cart, error) {
	return s.findOne(ctx, bson.M{"guestId": guestID})
}

func (s *MongoCarts) Save(ctx context.Context, c *models.Cart) error {
	now := time.Now().UTC()
	c.UpdatedAt = now
	if c.Products == nil {
		c.Products = []models.CartItem{}
	}

	if c.ID.IsZero() {
		c.CreatedAt = now
		res, err := s.Collection.InsertOne(ctx, c)
		if err != nil {
			return translate(err)
		}
		c.ID = res.InsertedID.(primitive.ObjectID)
		return nil
	}

	res, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoCarts) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoCarts) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.Collection.DeleteOne(ctx, bson.M{"user": userID})
	return err
}

func (s *MongoCarts) findOne(ctx context.Context, filter bson.M) (*models.Cart, error) {
	var c models.Cart
	if err := s.Collection.FindOne(ctx, filter).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}
