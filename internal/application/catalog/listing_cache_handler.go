package catalog

import (
	"context"

	"github.com/autodealer/backend/internal/domain/catalog"
	"github.com/autodealer/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ListingCacheInvalidator drops cached catalog pages whenever a car changes
type ListingCacheInvalidator struct {
	cache  ListingCache
	logger *zap.Logger
}

// NewListingCacheInvalidator creates a new invalidation handler
func NewListingCacheInvalidator(cache ListingCache, logger *zap.Logger) *ListingCacheInvalidator {
	return &ListingCacheInvalidator{cache: cache, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ListingCacheInvalidator) EventTypes() []string {
	return catalog.CarEventTypes
}

// Handle invalidates the whole listing cache. Filter keys are hashes, so
// entries affected by one car cannot be singled out.
func (h *ListingCacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.InvalidateAll(ctx); err != nil {
		h.logger.Warn("Failed to invalidate catalog cache",
			zap.String("event_type", event.EventType()),
			zap.String("car_id", event.AggregateID().String()),
			zap.Error(err),
		)
		return err
	}
	h.logger.Debug("Catalog cache invalidated",
		zap.String("event_type", event.EventType()),
		zap.String("car_id", event.AggregateID().String()),
	)
	return nil
}

var _ shared.EventHandler = (*ListingCacheInvalidator)(nil)
