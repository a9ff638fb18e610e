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

// MongoOrders is the Mongo-backed OrderStore
type MongoOrders struct {
	Collection *mongo.Collection
}

// NewMongoOrders creates an order store over db
func NewMongoOrders(db *mongo.Database) *MongoOrders {
	return &MongoOrders{Collection: db.Collection(OrdersCollection)}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (s *MongoOrders) Insert(ctx context.Context, o *models.Order) error {
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	res, err := s.Collection.InsertOne(ctx, o)
	if err != nil {
		return translate(err)
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (s *MongoOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	cursor, err := s.Collection.Find(ctx, bson.M{"user": userID}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAll returns every order newest first with the owner's name and email joined in
func (s *MongoOrders) ListAll(ctx context.Context) ([]models.OrderWithOwner, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: newestFirst}},
		{{Key: "$lookup", Value: bson.M{
			"from":         UsersCollection,
			"localField":   "user",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$owner", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{"owner.password": 0, "owner.wishlist": 0}}},
	}
	cursor, err := s.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.OrderWithOwner{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *MongoOrders) Update(ctx context.Context, o *models.Order) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoOrders) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoOrders) SetPaymentStatus(ctx context.Context, intentID, status string, paidAt *time.Time) (int64, error) {
	set := bson.M{
		"paymentStatus": status,
		"updatedAt":     time.Now().UTC(),
	}
	filter := bson.M{"paymentIntentId": intentID}
	if paidAt != nil {
		set["isPaid"] = true
		set["paidAt"] = bson.M{"$ifNull": bson.A{"$paidAt", *paidAt}}
	} else {
		// a failure never downgrades an order that is already paid
		filter["isPaid"] = bson.M{"$ne": true}
	}
	// pipeline form so an existing paidAt survives
	update := mongo.Pipeline{{{Key: "$set", Value: set}}}
	res, err := s.Collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
