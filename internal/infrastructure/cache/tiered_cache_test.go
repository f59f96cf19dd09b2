package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingCache simulates an unreachable shared tier
type failingCache struct{}

func (f *failingCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (f *failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (f *failingCache) Remove(context.Context, string) error {
	return errors.New("connection refused")
}

func (f *failingCache) RemoveByPrefix(context.Context, string) error {
	return errors.New("connection refused")
}

func TestTieredCache_ReadThrough(t *testing.T) {
	ctx := context.Background()

	t.Run("shared tier hit refills the local tier", func(t *testing.T) {
		local := NewInMemoryCache()
		defer local.Stop()
		remote := NewInMemoryCache()
		defer remote.Stop()
		tiered := NewTieredCache(local, remote)

		require.NoError(t, remote.Set(ctx, "k", []byte("v"), time.Minute))

		data, err := tiered.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), data)

		localData, err := local.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), localData)
	})

	t.Run("local tier answers without touching the shared tier", func(t *testing.T) {
		local := NewInMemoryCache()
		defer local.Stop()
		tiered := NewTieredCache(local, &failingCache{})

		require.NoError(t, local.Set(ctx, "k", []byte("v"), time.Minute))

		data, err := tiered.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), data)
	})

	t.Run("shared tier failure degrades to a miss", func(t *testing.T) {
		local := NewInMemoryCache()
		defer local.Stop()
		tiered := NewTieredCache(local, &failingCache{})

		data, err := tiered.Get(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, data)
	})
}

func TestTieredCache_WritesBothTiers(t *testing.T) {
	ctx := context.Background()
	local := NewInMemoryCache()
	defer local.Stop()
	remote := NewInMemoryCache()
	defer remote.Stop()
	tiered := NewTieredCache(local, remote)

	require.NoError(t, tiered.Set(ctx, "k", []byte("v"), time.Minute))

	localData, _ := local.Get(ctx, "k")
	remoteData, _ := remote.Get(ctx, "k")
	assert.Equal(t, []byte("v"), localData)
	assert.Equal(t, []byte("v"), remoteData)

	require.NoError(t, tiered.Remove(ctx, "k"))
	localData, _ = local.Get(ctx, "k")
	remoteData, _ = remote.Get(ctx, "k")
	assert.Nil(t, localData)
	assert.Nil(t, remoteData)
}

func TestTieredCache_SharedFailureIsAbsorbed(t *testing.T) {
	ctx := context.Background()
	local := NewInMemoryCache()
	defer local.Stop()
	tiered := NewTieredCache(local, &failingCache{})

	// best-effort contract: no error escapes even with the shared tier down
	assert.NoError(t, tiered.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, tiered.Remove(ctx, "k"))
	assert.NoError(t, tiered.RemoveByPrefix(ctx, "ledger:"))
}

func TestTieredCache_RemoveByPrefix(t *testing.T) {
	ctx := context.Background()
	local := NewInMemoryCache()
	defer local.Stop()
	remote := NewInMemoryCache()
	defer remote.Stop()
	tiered := NewTieredCache(local, remote)

	require.NoError(t, tiered.Set(ctx, "ledger:payable:all", []byte("a"), time.Minute))
	require.NoError(t, tiered.Set(ctx, "ledger:receivable:all", []byte("b"), time.Minute))

	require.NoError(t, tiered.RemoveByPrefix(ctx, "ledger:payable:"))

	data, _ := tiered.Get(ctx, "ledger:payable:all")
	assert.Nil(t, data)
	data, _ = tiered.Get(ctx, "ledger:receivable:all")
	assert.Equal(t, []byte("b"), data)
}
