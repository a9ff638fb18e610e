package store

import (
	"context"
	"time"

	"wearero-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUsers is the Mongo-backed UserStore
type MongoUsers struct {
	Collection *mongo.Collection
}

// NewMongoUsers creates a user store over db
func NewMongoUsers(db *mongo.Database) *MongoUsers {
	return &MongoUsers{Collection: db.Collection(UsersCollection)}
}

func (s *MongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)})
}

func (s *MongoUsers) List(ctx context.Context) ([]models.User, error) {
	cursor, err := s.Collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoUsers) Insert(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	u.Email = models.NormalizeEmail(u.Email)
	if u.Wishlist == nil {
		u.Wishlist = []primitive.ObjectID{}
	}
	res, err := s.Collection.InsertOne(ctx, u)
	if err != nil {
		return translate(err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoUsers) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	u.Email = models.NormalizeEmail(u.Email)
	res, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUsers) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	return s.updateWishlist(ctx, userID, bson.M{"$addToSet": bson.M{"wishlist": productID}})
}

func (s *MongoUsers) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	return s.updateWishlist(ctx, userID, bson.M{"$pull": bson.M{"wishlist": productID}})
}

func (s *MongoUsers) updateWishlist(ctx context.Context, userID primitive.ObjectID, update bson.M) error {
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}
	res, err := s.Collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.Collection.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
