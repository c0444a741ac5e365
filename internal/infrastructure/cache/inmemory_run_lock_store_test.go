package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRunLockStore_Acquire(t *testing.T) {
	store := NewInMemoryRunLockStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("acquires a free lock", func(t *testing.T) {
		acquired, err := store.Acquire(ctx, "backfill:run-lock", 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, acquired, "free lock should be acquired")
	})

	t.Run("refuses a held lock", func(t *testing.T) {
		acquired, err := store.Acquire(ctx, "lock-held", 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, acquired)

		acquired, err = store.Acquire(ctx, "lock-held", 1*time.Hour)
		require.NoError(t, err)
		assert.False(t, acquired, "held lock should be refused")
	})

	t.Run("acquires again after the TTL expires", func(t *testing.T) {
		acquired, err := store.Acquire(ctx, "lock-expiring", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, acquired)

		time.Sleep(20 * time.Millisecond)

		acquired, err = store.Acquire(ctx, "lock-expiring", 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, acquired, "expired lock should be acquirable")
	})

	t.Run("exactly one winner under contention", func(t *testing.T) {
		var wins int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				acquired, err := store.Acquire(ctx, "lock-contended", 1*time.Hour)
				assert.NoError(t, err)
				if acquired {
					atomic.AddInt32(&wins, 1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&wins))
	})
}

func TestInMemoryRunLockStore_IsHeld(t *testing.T) {
	store := NewInMemoryRunLockStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("returns false for an unknown lock", func(t *testing.T) {
		held, err := store.IsHeld(ctx, "unknown-lock")
		require.NoError(t, err)
		assert.False(t, held)
	})

	t.Run("returns true for a held lock", func(t *testing.T) {
		_, err := store.Acquire(ctx, "lock-check", 1*time.Hour)
		require.NoError(t, err)

		held, err := store.IsHeld(ctx, "lock-check")
		require.NoError(t, err)
		assert.True(t, held)
	})

	t.Run("returns false after the TTL expires", func(t *testing.T) {
		_, err := store.Acquire(ctx, "lock-check-expired", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		held, err := store.IsHeld(ctx, "lock-check-expired")
		require.NoError(t, err)
		assert.False(t, held)
	})
}

func TestInMemoryRunLockStore_Release(t *testing.T) {
	store := NewInMemoryRunLockStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("released lock can be reacquired", func(t *testing.T) {
		acquired, err := store.Acquire(ctx, "lock-release", 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, acquired)

		require.NoError(t, store.Release(ctx, "lock-release"))

		acquired, err = store.Acquire(ctx, "lock-release", 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, acquired, "released lock should be acquirable")
	})

	t.Run("releasing an unheld lock is not an error", func(t *testing.T) {
		assert.NoError(t, store.Release(ctx, "never-held"))
	})
}

func TestInMemoryRunLockStore_Cleanup(t *testing.T) {
	store := NewInMemoryRunLockStore()
	defer store.Close()

	ctx := context.Background()

	_, err := store.Acquire(ctx, "lock-a", 10*time.Millisecond)
	require.NoError(t, err)
	_, err = store.Acquire(ctx, "lock-b", 1*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryRunLockStore_Close(t *testing.T) {
	store := NewInMemoryRunLockStore()

	require.NoError(t, store.Close())

	// Close is idempotent
	require.NoError(t, store.Close())
}
