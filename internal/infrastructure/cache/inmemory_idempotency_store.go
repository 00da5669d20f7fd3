package cache

import (
	"context"
	"time"

	"github.com/autodealer/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore remembers processed event IDs in process memory.
// It does not share state between instances, so run one API process when using it.
type InMemoryIdempotencyStore struct {
	entries *expiringMap
}

// NewInMemoryIdempotencyStore creates a store that sweeps expired IDs every five minutes
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{entries: newExpiringMap(5 * time.Minute)}
}

// MarkProcessed returns true if the event was newly marked, false if it was already processed
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	return s.entries.setIfAbsent(eventID, nil, ttl), nil
}

// IsProcessed checks if an event has already been processed
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	_, ok := s.entries.get(eventID)
	return ok, nil
}

// Size returns the number of remembered IDs, including expired ones not yet swept
func (s *InMemoryIdempotencyStore) Size() int {
	return s.entries.len()
}

// Close stops the sweeper
func (s *InMemoryIdempotencyStore) Close() error {
	s.entries.close()
	return nil
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
