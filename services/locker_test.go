package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerSerializesSameKey(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "cart:user:1")
			if err != nil {
				t.Error(err)
				return
			}
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, l.locks)
}

func TestLocalLockerDistinctKeysDoNotBlock(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	unlockA, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestLocalLockerHonoursContext(t *testing.T) {
	l := NewLocalLocker()

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second call is a no-op
	assert.Empty(t, l.locks)
}
