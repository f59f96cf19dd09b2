package cache

import (
	"context"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TieredCache layers a fast local cache in front of a shared one. Reads
// try local first, then the shared tier, refilling local on a hit. Writes
// and invalidations go to both tiers; a shared-tier failure is logged and
// absorbed so callers keep the best-effort contract of KeyValueCache.
type TieredCache struct {
	local  shared.KeyValueCache
	remote shared.KeyValueCache
	logger *zap.Logger

	// localTTL caps how long the local tier may serve an entry the shared
	// tier has already invalidated from another node's point of view
	localTTL time.Duration
}

// TieredCacheOption is a functional option for configuring the cache
type TieredCacheOption func(*TieredCache)

// WithTieredLogger sets the logger for the cache
func WithTieredLogger(logger *zap.Logger) TieredCacheOption {
	return func(c *TieredCache) {
		c.logger = logger
	}
}

// WithLocalTTL caps the local-tier TTL
func WithLocalTTL(ttl time.Duration) TieredCacheOption {
	return func(c *TieredCache) {
		c.localTTL = ttl
	}
}

// NewTieredCache creates a two-tier cache
func NewTieredCache(local, remote shared.KeyValueCache, opts ...TieredCacheOption) *TieredCache {
	cache := &TieredCache{
		local:    local,
		remote:   remote,
		logger:   zap.NewNop(),
		localTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// Get reads local first, then the shared tier, refilling local on a hit
func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if data, err := c.local.Get(ctx, key); err == nil && data != nil {
		return data, nil
	}

	data, err := c.remote.Get(ctx, key)
	if err != nil {
		c.logger.Warn("shared cache tier read failed", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	if data == nil {
		return nil, nil
	}

	if err := c.local.Set(ctx, key, data, c.localTTL); err != nil {
		c.logger.Warn("local cache refill failed", zap.String("key", key), zap.Error(err))
	}
	return data, nil
}

// Set writes both tiers; the local TTL never exceeds the shared one
func (c *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	localTTL := c.localTTL
	if ttl > 0 && ttl < localTTL {
		localTTL = ttl
	}
	if err := c.local.Set(ctx, key, value, localTTL); err != nil {
		c.logger.Warn("local cache write failed", zap.String("key", key), zap.Error(err))
	}
	if err := c.remote.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("shared cache tier write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Remove deletes the key from both tiers
func (c *TieredCache) Remove(ctx context.Context, key string) error {
	if err := c.local.Remove(ctx, key); err != nil {
		c.logger.Warn("local cache remove failed", zap.String("key", key), zap.Error(err))
	}
	if err := c.remote.Remove(ctx, key); err != nil {
		c.logger.Warn("shared cache tier remove failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// RemoveByPrefix deletes matching keys from both tiers
func (c *TieredCache) RemoveByPrefix(ctx context.Context, prefix string) error {
	if err := c.local.RemoveByPrefix(ctx, prefix); err != nil {
		c.logger.Warn("local cache prefix remove failed", zap.String("prefix", prefix), zap.Error(err))
	}
	if err := c.remote.RemoveByPrefix(ctx, prefix); err != nil {
		c.logger.Warn("shared cache tier prefix remove failed", zap.String("prefix", prefix), zap.Error(err))
	}
	return nil
}

// Ensure TieredCache implements shared.KeyValueCache
var _ shared.KeyValueCache = (*TieredCache)(nil)
