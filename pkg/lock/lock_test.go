package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	defer goleak.VerifyNone(t)

	k := NewKeyedMutex()
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := k.Lock(context.Background(), EmployeeKey("1"))
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, k.Len(), "entries are dropped once released")
}

func TestKeyedMutex_DistinctKeysDoNotBlock(t *testing.T) {
	k := NewKeyedMutex()

	unlockA, err := k.Lock(context.Background(), EmployeeKey("a"))
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	unlockB, err := k.Lock(ctx, EmployeeKey("b"))
	require.NoError(t, err)
	unlockB()
}

func TestKeyedMutex_TimeoutIsConflict(t *testing.T) {
	k := NewKeyedMutex()

	unlock, err := k.Lock(context.Background(), "key")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = k.Lock(ctx, "key")
	assert.ErrorIs(t, err, model.ErrConflict)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second call is a no-op
	assert.Zero(t, k.Len())

	again, err := k.Lock(context.Background(), "key")
	require.NoError(t, err)
	again()
}
