package crm

import (
	"context"
	"time"

	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadFilter narrows lead listings
type LeadFilter struct {
	shared.Filter
	Status LeadStatus
	// AssignedManagerID restricts to one manager's leads
	AssignedManagerID *uuid.UUID
	// Unassigned restricts to leads nobody has claimed
	Unassigned bool
	// VisibleToManagerID applies the manager visibility rule: unassigned leads plus own leads
	VisibleToManagerID *uuid.UUID
}

// LeadRepository defines the interface for lead persistence
type LeadRepository interface {
	// FindByID finds a lead by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)

	// FindByToken finds a lead by its tracking token
	FindByToken(ctx context.Context, token string) (*Lead, error)

	// List returns one page of leads and the total count
	List(ctx context.Context, filter LeadFilter) ([]Lead, int64, error)

	// ListByClient returns every lead linked to a client account, newest first
	ListByClient(ctx context.Context, clientUserID uuid.UUID) ([]Lead, error)

	// Create inserts a new lead
	Create(ctx context.Context, lead *Lead) error

	// ClaimUnassigned assigns managerID only if the lead is still new and has no
	// assignee. It reports whether this call won the claim.
	ClaimUnassigned(ctx context.Context, leadID, managerID uuid.UUID, claimedAt time.Time) (bool, error)

	// SaveWithLock updates a lead if its stored version is lead.Version-1
	SaveWithLock(ctx context.Context, lead *Lead) error

	// CountByStatus returns the number of leads per status
	CountByStatus(ctx context.Context) (map[LeadStatus]int64, error)

	// CountsByManager returns assigned and won lead counts per assignee
	CountsByManager(ctx context.Context) (map[uuid.UUID]ManagerLeadCounts, error)
}

// ManagerLeadCounts is one manager's share of the pipeline
type ManagerLeadCounts struct {
	ManagerID uuid.UUID
	Assigned  int64
	Won       int64
}

// ReviewFilter narrows review listings
type ReviewFilter struct {
	shared.Filter
	Approved  *bool
	ManagerID *uuid.UUID
}

// ManagerRating aggregates approved reviews per manager
type ManagerRating struct {
	ManagerID    uuid.UUID
	ReviewCount  int64
	AverageScore float64
}

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// FindByLeadID returns the review of a lead or ErrNotFound
	FindByLeadID(ctx context.Context, leadID uuid.UUID) (*Review, error)

	// ExistsForLead reports whether the lead already has a review
	ExistsForLead(ctx context.Context, leadID uuid.UUID) (bool, error)

	// Create inserts a review; a unique violation on lead_id returns ErrReviewAlreadyExists
	Create(ctx context.Context, review *Review) error

	// Save persists approval changes
	Save(ctx context.Context, review *Review) error

	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, filter ReviewFilter) ([]Review, int64, error)

	// RatingsByManager averages approved ratings per manager
	RatingsByManager(ctx context.Context) (map[uuid.UUID]ManagerRating, error)
}

// ManagerTotals aggregates score records per manager
type ManagerTotals struct {
	ManagerID    uuid.UUID
	TotalPoints  int64
	SalesCount   int64
	ReviewsCount int64
}

// ScoreRepository defines the interface for manager score persistence
type ScoreRepository interface {
	// Award inserts the score unless one already exists for (lead, action).
	// It reports whether a new record was written.
	Award(ctx context.Context, score *ManagerScore) (bool, error)

	// ListByManager returns a manager's score history, newest first
	ListByManager(ctx context.Context, managerID uuid.UUID) ([]ManagerScore, error)

	// TotalsByManager sums points per manager, highest first
	TotalsByManager(ctx context.Context) ([]ManagerTotals, error)
}
