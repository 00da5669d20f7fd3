package crm

import (
	"regexp"
	"strings"
	"time"

	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadStatus represents the position of a lead in the sales workflow
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusNegotiating LeadStatus = "negotiating"
	LeadStatusClosedWon   LeadStatus = "closed_won"
	LeadStatusClosedLost  LeadStatus = "closed_lost"
)

// AllLeadStatuses lists statuses in workflow order
var AllLeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusNegotiating,
	LeadStatusClosedWon,
	LeadStatusClosedLost,
}

// IsValid reports whether s is a known lead status
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusNegotiating, LeadStatusClosedWon, LeadStatusClosedLost:
		return true
	}
	return false
}

// IsTerminal reports whether s is a closed status
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusClosedWon || s == LeadStatusClosedLost
}

// IsInProgress reports whether s is contacted or negotiating
func (s LeadStatus) IsInProgress() bool {
	return s == LeadStatusContacted || s == LeadStatusNegotiating
}

// managerTransitions are the moves an assigned manager may make.
// new is left only through a claim; terminal statuses have no exits.
var managerTransitions = map[LeadStatus][]LeadStatus{
	LeadStatusContacted:   {LeadStatusNegotiating, LeadStatusClosedWon, LeadStatusClosedLost},
	LeadStatusNegotiating: {LeadStatusContacted, LeadStatusClosedWon, LeadStatusClosedLost},
}

// CanTransition reports whether a manager may move a lead from one status to another
func CanTransition(from, to LeadStatus) bool {
	for _, allowed := range managerTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// DefaultLeadSource is stored when the caller does not tag the lead
const DefaultLeadSource = "website"

var (
	leadPhoneRegex = regexp.MustCompile(`^[\d\s\-\(\)\+]{6,20}$`)
	leadEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// LeadContact is the intake form payload
type LeadContact struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Message       string
	Source        string
	CarID         *uuid.UUID
	ClientUserID  *uuid.UUID
}

// Lead is a prospective buyer's inquiry and the aggregate root of the CRM context
type Lead struct {
	shared.BaseAggregateRoot
	CustomerName      string
	CustomerPhone     string
	CustomerEmail     string
	CarID             *uuid.UUID
	ClientUserID      *uuid.UUID
	Message           string
	Source            string
	Status            LeadStatus
	AssignedManagerID *uuid.UUID
	TrackingToken     string
	ClaimedAt         *time.Time
	ClosedAt          *time.Time
}

// StatusChange describes a completed transition
type StatusChange struct {
	From LeadStatus
	To   LeadStatus
}

// Won reports whether the change entered closed_won
func (c StatusChange) Won() bool {
	return c.To == LeadStatusClosedWon && c.From != LeadStatusClosedWon
}

// NewLead validates the contact data and creates an unassigned lead
func NewLead(contact LeadContact, trackingToken string) (*Lead, error) {
	contact = normalizeContact(contact)
	if err := validateContact(contact); err != nil {
		return nil, err
	}
	if trackingToken == "" {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Tracking token is required")
	}

	lead := &Lead{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerName:      contact.CustomerName,
		CustomerPhone:     contact.CustomerPhone,
		CustomerEmail:     contact.CustomerEmail,
		CarID:             contact.CarID,
		ClientUserID:      contact.ClientUserID,
		Message:           contact.Message,
		Source:            contact.Source,
		Status:            LeadStatusNew,
		TrackingToken:     trackingToken,
	}
	lead.AddDomainEvent(NewLeadCreatedEvent(lead))
	return lead, nil
}

// IsAssigned reports whether a manager handles the lead
func (l *Lead) IsAssigned() bool {
	return l.AssignedManagerID != nil
}

// IsAssignedTo reports whether managerID handles the lead
func (l *Lead) IsAssignedTo(managerID uuid.UUID) bool {
	return l.AssignedManagerID != nil && *l.AssignedManagerID == managerID
}

// Claim attaches managerID as the sole handler and moves the lead to contacted.
// The repository repeats the same guard as a conditional update; this method
// keeps the in-memory aggregate consistent with what was written.
func (l *Lead) Claim(managerID uuid.UUID, at time.Time) error {
	if l.IsAssigned() {
		return ErrLeadAlreadyClaimed
	}
	if l.Status != LeadStatusNew {
		return ErrLeadNotOpen
	}
	l.AssignedManagerID = &managerID
	l.Status = LeadStatusContacted
	l.ClaimedAt = &at
	l.Touch()
	l.AddDomainEvent(NewLeadClaimedEvent(l, managerID))
	return nil
}

// AdvanceStatus is the manager path: only the assignee may move the lead, and
// only along managerTransitions.
func (l *Lead) AdvanceStatus(managerID uuid.UUID, to LeadStatus) (StatusChange, error) {
	if !to.IsValid() {
		return StatusChange{}, shared.NewDomainError("INVALID_STATUS", "Unknown lead status")
	}
	if !l.IsAssignedTo(managerID) {
		return StatusChange{}, ErrNotLeadOwner
	}
	if to == LeadStatusNew {
		return StatusChange{}, ErrStatusRegression
	}
	if !CanTransition(l.Status, to) {
		return StatusChange{}, ErrInvalidTransition
	}
	return l.applyStatus(to, managerID), nil
}

// OverrideStatus is the admin path. Any status except new may be set, on
// assigned or unassigned leads, including reopening a closed lead.
func (l *Lead) OverrideStatus(adminID uuid.UUID, to LeadStatus) (StatusChange, error) {
	if !to.IsValid() {
		return StatusChange{}, shared.NewDomainError("INVALID_STATUS", "Unknown lead status")
	}
	if to == LeadStatusNew {
		if l.Status == LeadStatusNew {
			return StatusChange{From: l.Status, To: l.Status}, nil
		}
		return StatusChange{}, ErrStatusRegression
	}
	if to == l.Status {
		return StatusChange{From: l.Status, To: l.Status}, nil
	}
	return l.applyStatus(to, adminID), nil
}

// Reassign hands the lead to another manager (admin only). An unclaimed lead
// becomes contacted, as if the new manager had claimed it.
func (l *Lead) Reassign(adminID, managerID uuid.UUID, at time.Time) error {
	if l.IsAssignedTo(managerID) {
		return nil
	}
	var previous *uuid.UUID
	if l.AssignedManagerID != nil {
		p := *l.AssignedManagerID
		previous = &p
	}
	l.AssignedManagerID = &managerID
	if l.Status == LeadStatusNew {
		l.Status = LeadStatusContacted
		l.ClaimedAt = &at
	}
	l.Touch()
	l.AddDomainEvent(NewLeadReassignedEvent(l, previous, managerID, adminID))
	return nil
}

func (l *Lead) applyStatus(to LeadStatus, by uuid.UUID) StatusChange {
	change := StatusChange{From: l.Status, To: to}
	l.Status = to
	if to.IsTerminal() {
		now := time.Now()
		l.ClosedAt = &now
	} else {
		l.ClosedAt = nil
	}
	l.Touch()
	l.AddDomainEvent(NewLeadStatusChangedEvent(l, change, by))
	return change
}

func normalizeContact(c LeadContact) LeadContact {
	c.CustomerName = strings.TrimSpace(c.CustomerName)
	c.CustomerPhone = strings.TrimSpace(c.CustomerPhone)
	c.CustomerEmail = strings.ToLower(strings.TrimSpace(c.CustomerEmail))
	c.Message = strings.TrimSpace(c.Message)
	c.Source = strings.TrimSpace(c.Source)
	if c.Source == "" {
		c.Source = DefaultLeadSource
	}
	return c
}

func validateContact(c LeadContact) error {
	if c.CustomerName == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name is required")
	}
	if len(c.CustomerName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 100 characters")
	}
	if c.CustomerPhone == "" {
		return shared.NewDomainError("INVALID_PHONE", "Customer phone is required")
	}
	if !leadPhoneRegex.MatchString(c.CustomerPhone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	if c.CustomerEmail != "" && (len(c.CustomerEmail) > 200 || !leadEmailRegex.MatchString(c.CustomerEmail)) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if len(c.Message) > 2000 {
		return shared.NewDomainError("INVALID_MESSAGE", "Message cannot exceed 2000 characters")
	}
	if len(c.Source) > 50 {
		return shared.NewDomainError("INVALID_SOURCE", "Source cannot exceed 50 characters")
	}
	return nil
}
