package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect creates a Redis client and checks it with a ping
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Get reads a JSON value into dest. It reports false when the key is missing.
func Get(ctx context.Context, rdb redis.Cmdable, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal(val, dest)
}

// Set stores value as JSON with a TTL
func Set(ctx context.Context, rdb redis.Cmdable, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// Delete removes keys
func Delete(ctx context.Context, rdb redis.Cmdable, keys ...string) error {
	return rdb.Del(ctx, keys...).Err()
}
