package crm

import "github.com/autodealer/backend/internal/domain/shared"

// Workflow errors. Codes are mapped to HTTP statuses by the interfaces layer.
var (
	ErrLeadAlreadyClaimed  = shared.NewDomainError("LEAD_ALREADY_CLAIMED", "Lead has already been claimed by another manager")
	ErrLeadNotOpen         = shared.NewDomainError("LEAD_NOT_OPEN", "Lead is no longer open for claiming")
	ErrLeadNotAssigned     = shared.NewDomainError("LEAD_NOT_ASSIGNED", "Lead has no assigned manager yet")
	ErrNotLeadOwner        = shared.NewDomainError("FORBIDDEN", "Lead is assigned to another manager")
	ErrStatusRegression    = shared.NewDomainError("INVALID_TRANSITION", "Lead status cannot return to new")
	ErrInvalidTransition   = shared.NewDomainError("INVALID_TRANSITION", "Status transition is not allowed")
	ErrReviewAlreadyExists = shared.NewDomainError("REVIEW_ALREADY_EXISTS", "This lead has already been reviewed")
	ErrInvalidToken        = shared.NewDomainError("NOT_FOUND", "Tracking link is invalid")
)
