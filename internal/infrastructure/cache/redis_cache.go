package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Constants for Redis cache configuration
const (
	defaultScanBatchSize = 100
	pingTimeout          = 5 * time.Second
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisCache implements shared.KeyValueCache on Redis
type RedisCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	logger     *zap.Logger
}

// RedisCacheOption is a functional option for configuring the cache
type RedisCacheOption func(*RedisCache)

// WithRedisCacheLogger sets the logger for the cache
func WithRedisCacheLogger(logger *zap.Logger) RedisCacheOption {
	return func(c *RedisCache) {
		c.logger = logger
	}
}

// NewRedisCache creates a new Redis-backed cache and verifies connectivity
func NewRedisCache(cfg RedisConfig, opts ...RedisCacheOption) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisCache{
		client:     client,
		ownsClient: true,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache, nil
}

// NewRedisCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisCacheWithClient(client *redis.Client, opts ...RedisCacheOption) *RedisCache {
	cache := &RedisCache{
		client:     client,
		ownsClient: false,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// Get retrieves the cached bytes for key, (nil, nil) on miss
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key from cache: %w", err)
	}
	return data, nil
}

// Set stores value under key with the given TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key in cache: %w", err)
	}
	return nil
}

// Remove deletes a single key
func (c *RedisCache) Remove(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to remove key from cache: %w", err)
	}
	return nil
}

// RemoveByPrefix deletes every key starting with prefix using SCAN,
// never KEYS, so a large keyspace does not block Redis
func (c *RedisCache) RemoveByPrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	pattern := prefix + "*"

	for {
		var keys []string
		var err error
		keys, cursor, err = c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete scanned keys: %w", err)
			}
		}
		if cursor == 0 {
			break
		}
	}
	return nil
}

// Close releases the Redis client when this cache owns it
func (c *RedisCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// Ensure RedisCache implements shared.KeyValueCache
var _ shared.KeyValueCache = (*RedisCache)(nil)
