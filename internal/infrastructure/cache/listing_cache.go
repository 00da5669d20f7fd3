package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autodealer/backend/internal/application/catalog"
	"github.com/redis/go-redis/v9"
)

const (
	defaultListingPrefix = "dealer:catalog:"
	scanBatch            = 200
)

// RedisListingCache stores public catalog pages in Redis under one key prefix
type RedisListingCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisListingCache creates a listing cache over a shared client
func NewRedisListingCache(client redis.UniversalClient, prefix string) *RedisListingCache {
	if prefix == "" {
		prefix = defaultListingPrefix
	}
	return &RedisListingCache{client: client, prefix: prefix}
}

// Get returns the cached value and whether it was present
func (c *RedisListingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read catalog cache: %w", err)
	}
	return value, true, nil
}

// Set stores a page for ttl
func (c *RedisListingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}
	return nil
}

// InvalidateAll walks the prefix with SCAN and deletes in batches. KEYS is
// avoided because it blocks the server.
func (c *RedisListingCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("failed to scan catalog cache: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to purge catalog cache: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// InMemoryListingCache is the single-instance fallback when Redis is disabled
type InMemoryListingCache struct {
	entries *expiringMap
}

// NewInMemoryListingCache creates a listing cache that sweeps every minute
func NewInMemoryListingCache() *InMemoryListingCache {
	return &InMemoryListingCache{entries: newExpiringMap(time.Minute)}
}

func (c *InMemoryListingCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := c.entries.get(key)
	return value, ok, nil
}

func (c *InMemoryListingCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.entries.set(key, value, ttl)
	return nil
}

func (c *InMemoryListingCache) InvalidateAll(_ context.Context) error {
	c.entries.deletePrefix("")
	return nil
}

// Close stops the sweeper
func (c *InMemoryListingCache) Close() error {
	c.entries.close()
	return nil
}

var (
	_ catalog.ListingCache = (*RedisListingCache)(nil)
	_ catalog.ListingCache = (*InMemoryListingCache)(nil)
)
