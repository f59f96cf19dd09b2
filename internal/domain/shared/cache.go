package shared

import (
	"context"
	"time"
)

// KeyValueCache is a best-effort key/value store with TTL used for
// read-aside caching. Implementations must never make a cache failure
// a correctness problem for the caller: a failed Get is a miss, a
// failed Set/Remove is logged and dropped.
type KeyValueCache interface {
	// Get returns the cached bytes for key, or (nil, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Remove deletes a single key.
	Remove(ctx context.Context, key string) error

	// RemoveByPrefix deletes every key starting with prefix.
	RemoveByPrefix(ctx context.Context, prefix string) error
}
