package analytics

import (
	"context"

	"github.com/autodealer/backend/internal/domain/analytics"
	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkflowRecorder copies lead workflow domain events into the analytics log
// so the funnel report covers server-side steps too.
type WorkflowRecorder struct {
	eventRepo analytics.EventRepository
	logger    *zap.Logger
}

// NewWorkflowRecorder creates a new recorder
func NewWorkflowRecorder(eventRepo analytics.EventRepository, logger *zap.Logger) *WorkflowRecorder {
	return &WorkflowRecorder{eventRepo: eventRepo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *WorkflowRecorder) EventTypes() []string {
	return []string{
		crm.EventTypeLeadCreated,
		crm.EventTypeLeadClaimed,
		crm.EventTypeLeadStatusChanged,
		crm.EventTypeReviewSubmitted,
		crm.EventTypeReviewApproved,
	}
}

// Handle appends one analytics record per domain event
func (h *WorkflowRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	record, err := h.toRecord(event)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	if err := h.eventRepo.Append(ctx, record); err != nil {
		h.logger.Warn("Failed to record workflow event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (h *WorkflowRecorder) toRecord(event shared.DomainEvent) (*analytics.Event, error) {
	switch e := event.(type) {
	case *crm.LeadCreatedEvent:
		leadID := e.LeadID
		return analytics.NewEvent(analytics.EventLeadCreated, e.CarID, &leadID, e.ClientUserID,
			map[string]any{"source": e.Source})
	case *crm.LeadClaimedEvent:
		leadID, managerID := e.LeadID, e.ManagerID
		return analytics.NewEvent(analytics.EventLeadClaimed, nil, &leadID, &managerID, nil)
	case *crm.LeadStatusChangedEvent:
		leadID, by := e.LeadID, e.ChangedBy
		return analytics.NewEvent(analytics.EventLeadStatusChanged, nil, &leadID, nonNil(by),
			map[string]any{"from": string(e.OldStatus), "to": string(e.NewStatus)})
	case *crm.ReviewEvent:
		leadID := e.LeadID
		eventType := analytics.EventReviewSubmitted
		if e.EventType() == crm.EventTypeReviewApproved {
			eventType = analytics.EventReviewApproved
		}
		return analytics.NewEvent(eventType, nil, &leadID, nil, map[string]any{"rating": e.Rating})
	}
	h.logger.Debug("Ignoring unexpected event", zap.String("event_type", event.EventType()))
	return nil, nil
}

func nonNil(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

var _ shared.EventHandler = (*WorkflowRecorder)(nil)
