package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/autodealer/backend/internal/application/catalog"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/autodealer/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection with PING
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Factory builds the Redis-backed stores, or in-memory ones when no client is available
type Factory struct {
	client                redis.UniversalClient
	keyPrefix             string
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether a nil client yields in-memory stores
// instead of an error. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithKeyPrefix namespaces every key the factory's stores write
func WithKeyPrefix(prefix string) FactoryOption {
	return func(f *Factory) {
		f.keyPrefix = prefix
	}
}

// NewFactory creates a factory. client may be nil.
func NewFactory(client redis.UniversalClient, opts ...FactoryOption) *Factory {
	f := &Factory{
		client:                client,
		keyPrefix:             "dealer:",
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IdempotencyStore returns the event de-duplication store
func (f *Factory) IdempotencyStore() (shared.IdempotencyStore, error) {
	if f.client != nil {
		f.logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(f.client, f.keyPrefix+"event:processed:"), nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable")
	}
	f.logger.Warn("Redis unavailable, using in-memory idempotency store. " +
		"Events may be handled twice when several instances run.")
	return NewInMemoryIdempotencyStore(), nil
}

// ListingCache returns the public catalog cache
func (f *Factory) ListingCache() (catalog.ListingCache, error) {
	if f.client != nil {
		return NewRedisListingCache(f.client, f.keyPrefix+"catalog:"), nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for the catalog cache but unavailable")
	}
	f.logger.Info("Using in-memory catalog cache")
	return NewInMemoryListingCache(), nil
}
