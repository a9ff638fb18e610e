package cache

import (
	"context"
	"time"

	"wearero-api/models"
	"wearero-api/store"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductCacheTTL bounds how stale a cached product may be
const ProductCacheTTL = 10 * time.Minute

// ProductCache is a read-through Redis cache in front of a ProductStore.
// Lookups by id are cached; writes through this store invalidate the entry.
type ProductCache struct {
	store.ProductStore
	rdb redis.Cmdable
	ttl time.Duration
	log logrus.FieldLogger
}

// NewProductCache wraps next with a Redis cache
func NewProductCache(next store.ProductStore, rdb redis.Cmdable, log logrus.FieldLogger) *ProductCache {
	return &ProductCache{ProductStore: next, rdb: rdb, ttl: ProductCacheTTL, log: log}
}

func productKey(id primitive.ObjectID) string {
	return "product:" + id.Hex()
}

func (c *ProductCache) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	key := productKey(id)

	var cached models.Product
	found, err := Get(ctx, c.rdb, key, &cached)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("product cache read failed")
	} else if found {
		return &cached, nil
	}

	p, err := c.ProductStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Set(ctx, c.rdb, key, p, c.ttl); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("product cache write failed")
	}
	return p, nil
}

func (c *ProductCache) Update(ctx context.Context, p *models.Product) error {
	if err := c.ProductStore.Update(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, p.ID)
	return nil
}

func (c *ProductCache) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := c.ProductStore.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *ProductCache) invalidate(ctx context.Context, id primitive.ObjectID) {
	if err := Delete(ctx, c.rdb, productKey(id)); err != nil {
		c.log.WithError(err).WithField("productId", id.Hex()).Warn("product cache invalidation failed")
	}
}
