package crm

import (
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeLead   = "Lead"
	AggregateTypeReview = "Review"
)

// Event type constants
const (
	EventTypeLeadCreated       = "LeadCreated"
	EventTypeLeadClaimed       = "LeadClaimed"
	EventTypeLeadReassigned    = "LeadReassigned"
	EventTypeLeadStatusChanged = "LeadStatusChanged"
	EventTypeReviewSubmitted   = "ReviewSubmitted"
	EventTypeReviewApproved    = "ReviewApproved"
	EventTypeReviewRejected    = "ReviewRejected"
)

// LeadCreatedEvent is published when an inquiry is received
type LeadCreatedEvent struct {
	shared.BaseDomainEvent
	LeadID       uuid.UUID  `json:"lead_id"`
	CarID        *uuid.UUID `json:"car_id,omitempty"`
	ClientUserID *uuid.UUID `json:"client_user_id,omitempty"`
	Source       string     `json:"source"`
}

// NewLeadCreatedEvent creates a new LeadCreatedEvent
func NewLeadCreatedEvent(l *Lead) *LeadCreatedEvent {
	return &LeadCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadCreated, AggregateTypeLead, l.ID),
		LeadID:          l.ID,
		CarID:           l.CarID,
		ClientUserID:    l.ClientUserID,
		Source:          l.Source,
	}
}

// LeadClaimedEvent is published when a manager wins the claim
type LeadClaimedEvent struct {
	shared.BaseDomainEvent
	LeadID    uuid.UUID `json:"lead_id"`
	ManagerID uuid.UUID `json:"manager_id"`
}

// NewLeadClaimedEvent creates a new LeadClaimedEvent
func NewLeadClaimedEvent(l *Lead, managerID uuid.UUID) *LeadClaimedEvent {
	return &LeadClaimedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadClaimed, AggregateTypeLead, l.ID),
		LeadID:          l.ID,
		ManagerID:       managerID,
	}
}

// LeadReassignedEvent is published when an admin changes the assignee
type LeadReassignedEvent struct {
	shared.BaseDomainEvent
	LeadID             uuid.UUID  `json:"lead_id"`
	PreviousManagerID  *uuid.UUID `json:"previous_manager_id,omitempty"`
	AssignedManagerID  uuid.UUID  `json:"assigned_manager_id"`
	ReassignedByUserID uuid.UUID  `json:"reassigned_by"`
}

// NewLeadReassignedEvent creates a new LeadReassignedEvent
func NewLeadReassignedEvent(l *Lead, previous *uuid.UUID, managerID, adminID uuid.UUID) *LeadReassignedEvent {
	return &LeadReassignedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeLeadReassigned, AggregateTypeLead, l.ID),
		LeadID:             l.ID,
		PreviousManagerID:  previous,
		AssignedManagerID:  managerID,
		ReassignedByUserID: adminID,
	}
}

// LeadStatusChangedEvent is published after every status transition
type LeadStatusChangedEvent struct {
	shared.BaseDomainEvent
	LeadID    uuid.UUID  `json:"lead_id"`
	OldStatus LeadStatus `json:"old_status"`
	NewStatus LeadStatus `json:"new_status"`
	ChangedBy uuid.UUID  `json:"changed_by"`
}

// NewLeadStatusChangedEvent creates a new LeadStatusChangedEvent
func NewLeadStatusChangedEvent(l *Lead, change StatusChange, by uuid.UUID) *LeadStatusChangedEvent {
	return &LeadStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadStatusChanged, AggregateTypeLead, l.ID),
		LeadID:          l.ID,
		OldStatus:       change.From,
		NewStatus:       change.To,
		ChangedBy:       by,
	}
}

// ReviewEvent is published on review submission, approval and rejection
type ReviewEvent struct {
	shared.BaseDomainEvent
	ReviewID  uuid.UUID `json:"review_id"`
	LeadID    uuid.UUID `json:"lead_id"`
	ManagerID uuid.UUID `json:"manager_id"`
	Rating    int       `json:"rating"`
}

// NewReviewEvent creates a review event of the given type
func NewReviewEvent(eventType string, r *Review) *ReviewEvent {
	return &ReviewEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeReview, r.ID),
		ReviewID:        r.ID,
		LeadID:          r.LeadID,
		ManagerID:       r.ManagerID,
		Rating:          r.Rating,
	}
}
