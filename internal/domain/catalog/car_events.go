package catalog

import (
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeCar = "Car"

// Event type constants
const (
	EventTypeCarCreated       = "CarCreated"
	EventTypeCarUpdated       = "CarUpdated"
	EventTypeCarStatusChanged = "CarStatusChanged"
	EventTypeCarDeleted       = "CarDeleted"
)

// CarEventTypes lists every car event; the catalog cache invalidator subscribes to all of them
var CarEventTypes = []string{
	EventTypeCarCreated,
	EventTypeCarUpdated,
	EventTypeCarStatusChanged,
	EventTypeCarDeleted,
}

// CarCreatedEvent is published when a listing is created
type CarCreatedEvent struct {
	shared.BaseDomainEvent
	CarID uuid.UUID `json:"car_id"`
	Make  string    `json:"make"`
	Model string    `json:"model"`
	Year  int       `json:"year"`
}

// NewCarCreatedEvent creates a new CarCreatedEvent
func NewCarCreatedEvent(c *Car) *CarCreatedEvent {
	return &CarCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCarCreated, AggregateTypeCar, c.ID),
		CarID:           c.ID,
		Make:            c.Make,
		Model:           c.Model,
		Year:            c.Year,
	}
}

// CarUpdatedEvent is published when listing data changes
type CarUpdatedEvent struct {
	shared.BaseDomainEvent
	CarID uuid.UUID `json:"car_id"`
}

// NewCarUpdatedEvent creates a new CarUpdatedEvent
func NewCarUpdatedEvent(c *Car) *CarUpdatedEvent {
	return &CarUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCarUpdated, AggregateTypeCar, c.ID),
		CarID:           c.ID,
	}
}

// CarStatusChangedEvent is published on available/reserved/sold changes
type CarStatusChangedEvent struct {
	shared.BaseDomainEvent
	CarID     uuid.UUID `json:"car_id"`
	OldStatus CarStatus `json:"old_status"`
	NewStatus CarStatus `json:"new_status"`
}

// NewCarStatusChangedEvent creates a new CarStatusChangedEvent
func NewCarStatusChangedEvent(c *Car, oldStatus, newStatus CarStatus) *CarStatusChangedEvent {
	return &CarStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCarStatusChanged, AggregateTypeCar, c.ID),
		CarID:           c.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// CarDeletedEvent is published after a listing is removed
type CarDeletedEvent struct {
	shared.BaseDomainEvent
	CarID uuid.UUID `json:"car_id"`
}

// NewCarDeletedEvent creates a new CarDeletedEvent
func NewCarDeletedEvent(id uuid.UUID) *CarDeletedEvent {
	return &CarDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCarDeleted, AggregateTypeCar, id),
		CarID:           id,
	}
}
