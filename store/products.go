package store

import (
	"context"
	"regexp"
	"strings"
	"time"

	"wearero-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sort orders accepted by ProductQuery.SortBy
const (
	SortPriceAsc   = "priceAsc"
	SortPriceDesc  = "priceDesc"
	SortPopularity = "popularity"
)

// ProductQuery holds the catalog filters accepted by the product listing
type ProductQuery struct {
	Collection string
	Category   string
	Size       string
	Color      string
	Gender     string
	Material   string
	Brand      string
	MinPrice   *float64
	MaxPrice   *float64
	SortBy     string
	Search     string
	Limit      int64
}

// BuildProductFilter translates a ProductQuery into a Mongo filter and find options
func BuildProductFilter(q ProductQuery) (bson.M, *options.FindOptions) {
	filter := bson.M{}

	if q.Collection != "" && !strings.EqualFold(q.Collection, "all") {
		filter["collections"] = q.Collection
	}
	if q.Category != "" && !strings.EqualFold(q.Category, "all") {
		filter["category"] = q.Category
	}
	if v := splitCSV(q.Material); len(v) > 0 {
		filter["material"] = bson.M{"$in": v}
	}
	if v := splitCSV(q.Brand); len(v) > 0 {
		filter["brand"] = bson.M{"$in": v}
	}
	if v := splitCSV(q.Size); len(v) > 0 {
		filter["sizes"] = bson.M{"$in": v}
	}
	if q.Color != "" {
		filter["colors"] = bson.M{"$in": []string{q.Color}}
	}
	if q.Gender != "" {
		filter["gender"] = q.Gender
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	opts := options.Find()
	switch q.SortBy {
	case SortPriceAsc:
		opts.SetSort(bson.D{{Key: "price", Value: 1}})
	case SortPriceDesc:
		opts.SetSort(bson.D{{Key: "price", Value: -1}})
	case SortPopularity:
		opts.SetSort(bson.D{{Key: "rating", Value: -1}})
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return filter, opts
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MongoProducts is the Mongo-backed ProductStore
type MongoProducts struct {
	Collection *mongo.Collection
}

// NewMongoProducts creates a product store over db
func NewMongoProducts(db *mongo.Database) *MongoProducts {
	return &MongoProducts{Collection: db.Collection(ProductsCollection)}
}

func (s *MongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *MongoProducts) Find(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	filter, opts := BuildProductFilter(q)
	return s.findMany(ctx, filter, opts)
}

func (s *MongoProducts) BestSeller(ctx context.Context) (*models.Product, error) {
	var p models.Product
	opts := options.FindOne().SetSort(bson.D{{Key: "rating", Value: -1}})
	if err := s.Collection.FindOne(ctx, bson.M{}, opts).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *MongoProducts) NewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	return s.findMany(ctx, bson.M{}, opts)
}

func (s *MongoProducts) Similar(ctx context.Context, p *models.Product, limit int) ([]models.Product, error) {
	filter := bson.M{
		"_id":      bson.M{"$ne": p.ID},
		"gender":   p.Gender,
		"category": p.Category,
	}
	return s.findMany(ctx, filter, options.Find().SetLimit(int64(limit)))
}

func (s *MongoProducts) Insert(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	res, err := s.Collection.InsertOne(ctx, p)
	if err != nil {
		return translate(err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoProducts) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProducts) findMany(ctx context.Context, filter any, opts *options.FindOptions) ([]models.Product, error) {
	cursor, err := s.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
