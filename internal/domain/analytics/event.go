package analytics

import (
	"strings"
	"time"

	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EventType names a tracked interaction
type EventType string

// Client-side interactions accepted from the public tracking endpoint
const (
	EventCarView        EventType = "car_view"
	EventCalculatorUsed EventType = "calculator_used"
	EventChatOpened     EventType = "chat_opened"
	EventLeadFormOpened EventType = "lead_form_opened"
)

// Server-side interactions recorded from domain events
const (
	EventLeadCreated       EventType = "lead_created"
	EventLeadClaimed       EventType = "lead_claimed"
	EventLeadStatusChanged EventType = "lead_status_changed"
	EventReviewSubmitted   EventType = "review_submitted"
	EventReviewApproved    EventType = "review_approved"
)

// IsTrackable reports whether clients may submit this event type directly
func (t EventType) IsTrackable() bool {
	switch t {
	case EventCarView, EventCalculatorUsed, EventChatOpened, EventLeadFormOpened:
		return true
	}
	return false
}

const maxMetadataKeys = 20

// Event is an append-only analytics record
type Event struct {
	ID        uuid.UUID
	EventType EventType
	CarID     *uuid.UUID
	LeadID    *uuid.UUID
	UserID    *uuid.UUID
	Metadata  map[string]any
	CreatedAt time.Time
}

// NewEvent builds an analytics record; metadata may be nil
func NewEvent(eventType EventType, carID, leadID, userID *uuid.UUID, metadata map[string]any) (*Event, error) {
	if strings.TrimSpace(string(eventType)) == "" {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "Event type is required")
	}
	if len(metadata) > maxMetadataKeys {
		return nil, shared.NewDomainError("INVALID_METADATA", "Too many metadata keys")
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Event{
		ID:        uuid.New(),
		EventType: eventType,
		CarID:     carID,
		LeadID:    leadID,
		UserID:    userID,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}, nil
}
