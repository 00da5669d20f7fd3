package catalog

import (
	"context"

	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CarFilter holds the optional catalog predicates. All set predicates are ANDed.
type CarFilter struct {
	shared.Filter
	Make     string
	BodyType string
	FuelType string
	Status   CarStatus
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	MinYear  *int
	MaxYear  *int
	Featured *bool
}

// CarRepository defines the interface for car persistence
type CarRepository interface {
	// FindByID finds a car by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Car, error)

	// FindByIDs returns the cars with the given ids; unknown ids are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Car, error)

	// Exists reports whether a car with the id exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// List returns one page of cars matching the filter and the total match count
	List(ctx context.Context, filter CarFilter) ([]Car, int64, error)

	// Create inserts a new car
	Create(ctx context.Context, car *Car) error

	// SaveWithLock updates a car if its stored version is car.Version-1
	SaveWithLock(ctx context.Context, car *Car) error

	// Delete removes a car
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByStatus returns the number of cars per status
	CountByStatus(ctx context.Context) (map[CarStatus]int64, error)
}
