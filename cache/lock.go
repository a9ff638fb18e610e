package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a lock could not be acquired in time.
var ErrLockTimeout = errors.New("cache: lock wait timed out")

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes work per key across processes using SET NX PX.
type RedisLocker struct {
	rdb      redis.Cmdable
	ttl      time.Duration
	wait     time.Duration
	interval time.Duration
}

// NewRedisLocker creates a locker whose locks expire after ttl
func NewRedisLocker(rdb redis.Cmdable, ttl time.Duration) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: ttl, wait: 5 * time.Second, interval: 25 * time.Millisecond}
}

// Lock blocks until key is held or the wait budget or ctx runs out.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	key = "lock:" + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.interval):
		}
	}

	return func() {
		// ctx may already be cancelled once the handler returns
		_ = releaseScript.Run(context.Background(), l.rdb, []string{key}, token).Err()
	}, nil
}
