package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCache()
	defer cache.Stop()

	t.Run("miss returns nil nil", func(t *testing.T) {
		data, err := cache.Get(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "k1", []byte("v1"), time.Minute))

		data, err := cache.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), data)
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "short", []byte("v"), time.Millisecond))
		time.Sleep(5 * time.Millisecond)

		data, err := cache.Get(ctx, "short")
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("remove deletes the key", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "k2", []byte("v2"), time.Minute))
		require.NoError(t, cache.Remove(ctx, "k2"))

		data, err := cache.Get(ctx, "k2")
		require.NoError(t, err)
		assert.Nil(t, data)
	})
}

func TestInMemoryCache_RemoveByPrefix(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCache()
	defer cache.Stop()

	require.NoError(t, cache.Set(ctx, "ledger:payable:all", []byte("a"), time.Minute))
	require.NoError(t, cache.Set(ctx, "ledger:payable:open", []byte("b"), time.Minute))
	require.NoError(t, cache.Set(ctx, "ledger:receivable:all", []byte("c"), time.Minute))

	require.NoError(t, cache.RemoveByPrefix(ctx, "ledger:payable:"))

	data, err := cache.Get(ctx, "ledger:payable:all")
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = cache.Get(ctx, "ledger:payable:open")
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = cache.Get(ctx, "ledger:receivable:all")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), data)
}

func TestInMemoryCache_Stats(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCache()
	defer cache.Stop()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Minute))
	_, _ = cache.Get(ctx, "k")
	_, _ = cache.Get(ctx, "missing")

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestInMemoryCache_StopIsIdempotent(t *testing.T) {
	cache := NewInMemoryCache()
	cache.Stop()
	cache.Stop() // must not panic
}
