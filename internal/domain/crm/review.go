package crm

import (
	"strings"
	"time"

	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a customer's rating of the manager who handled their lead
type Review struct {
	shared.BaseAggregateRoot
	LeadID       uuid.UUID
	ManagerID    uuid.UUID
	Rating       int
	Comment      string
	CustomerName string
	IsApproved   bool
	ApprovedAt   *time.Time
	ApprovedBy   *uuid.UUID
}

// NewReview creates an unapproved review for an assigned lead
func NewReview(lead *Lead, rating int, comment string) (*Review, error) {
	if !lead.IsAssigned() {
		return nil, ErrLeadNotAssigned
	}
	if rating < MinRating || rating > MaxRating {
		return nil, shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > 2000 {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 2000 characters")
	}

	r := &Review{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LeadID:            lead.ID,
		ManagerID:         *lead.AssignedManagerID,
		Rating:            rating,
		Comment:           comment,
		CustomerName:      lead.CustomerName,
	}
	r.AddDomainEvent(NewReviewEvent(EventTypeReviewSubmitted, r))
	return r, nil
}

// Approve publishes the review. It returns false when it was already approved.
func (r *Review) Approve(adminID uuid.UUID) bool {
	if r.IsApproved {
		return false
	}
	now := time.Now()
	r.IsApproved = true
	r.ApprovedAt = &now
	r.ApprovedBy = &adminID
	r.Touch()
	r.AddDomainEvent(NewReviewEvent(EventTypeReviewApproved, r))
	return true
}

// Reject hides the review from public listings
func (r *Review) Reject() {
	if !r.IsApproved && r.ApprovedAt == nil {
		return
	}
	r.IsApproved = false
	r.ApprovedAt = nil
	r.ApprovedBy = nil
	r.Touch()
	r.AddDomainEvent(NewReviewEvent(EventTypeReviewRejected, r))
}
