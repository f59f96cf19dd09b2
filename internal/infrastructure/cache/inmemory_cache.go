package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
	defaultInMemoryTTL     = time.Minute
)

// InMemoryCache implements shared.KeyValueCache in process memory.
// It serves as the whole cache in single-node deployments and as the
// fallback layer of TieredCache when Redis is unreachable.
type InMemoryCache struct {
	entries sync.Map // map[string]*memoryEntry
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// memoryEntry wraps a cached value with its expiration time
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryCacheOption is a functional option for configuring the cache
type InMemoryCacheOption func(*InMemoryCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryCacheOption {
	return func(c *InMemoryCache) {
		c.logger = logger
	}
}

// NewInMemoryCache creates a new in-memory cache and starts the
// background expiry sweep
func NewInMemoryCache(opts ...InMemoryCacheOption) *InMemoryCache {
	cache := &InMemoryCache{
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves the cached bytes for key, (nil, nil) on miss
func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*memoryEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.value, nil
		}
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, nil
}

// Set stores value under key with the given TTL
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultInMemoryTTL
	}
	c.entries.Store(key, &memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Remove deletes a single key
func (c *InMemoryCache) Remove(_ context.Context, key string) error {
	c.entries.Delete(key)
	return nil
}

// RemoveByPrefix deletes every key starting with prefix
func (c *InMemoryCache) RemoveByPrefix(_ context.Context, prefix string) error {
	c.entries.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			c.entries.Delete(key)
		}
		return true
	})
	return nil
}

// Stats returns hit/miss counters for monitoring
func (c *InMemoryCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Stop terminates the cleanup goroutine. Safe to call more than once.
func (c *InMemoryCache) Stop() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

// cleanupExpired periodically sweeps expired entries so memory is not
// held until the next Get touches a stale key
func (c *InMemoryCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			removed := 0
			c.entries.Range(func(key, value any) bool {
				if value.(*memoryEntry).isExpired() {
					c.entries.Delete(key)
					removed++
				}
				return true
			})
			if removed > 0 {
				c.logger.Debug("swept expired cache entries", zap.Int("removed", removed))
			}
		}
	}
}

// Ensure InMemoryCache implements shared.KeyValueCache
var _ shared.KeyValueCache = (*InMemoryCache)(nil)
