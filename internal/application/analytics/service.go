package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/autodealer/backend/internal/domain/analytics"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSummaryDays is the reporting window when none is given
const DefaultSummaryDays = 30

// Service records website interactions and reports on them
type Service struct {
	eventRepo analytics.EventRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new analytics service
func NewService(eventRepo analytics.EventRepository, logger *zap.Logger) *Service {
	return &Service{eventRepo: eventRepo, logger: logger, now: time.Now}
}

// Track stores a client-side interaction. Anyone may track; the account is
// attached when the caller is logged in.
func (s *Service) Track(ctx context.Context, actor identity.Actor, req TrackEventRequest) error {
	eventType := analytics.EventType(req.EventType)
	if !eventType.IsTrackable() {
		return shared.NewDomainError("INVALID_EVENT_TYPE", "Event type cannot be tracked from the client")
	}
	var userID *uuid.UUID
	if actor.IsAuthenticated() {
		id := actor.UserID
		userID = &id
	}
	event, err := analytics.NewEvent(eventType, req.CarID, req.LeadID, userID, req.Metadata)
	if err != nil {
		return err
	}
	if err := s.eventRepo.Append(ctx, event); err != nil {
		s.logger.Error("Failed to store analytics event", zap.String("event_type", req.EventType), zap.Error(err))
		return fmt.Errorf("failed to store event: %w", err)
	}
	return nil
}

// Summary counts events per type over the last days (admin only)
func (s *Service) Summary(ctx context.Context, actor identity.Actor, filter SummaryFilter) (*SummaryResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	days := filter.Days
	if days <= 0 {
		days = DefaultSummaryDays
	}
	since := s.now().AddDate(0, 0, -days)

	counts, err := s.eventRepo.CountByType(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	resp := &SummaryResponse{Since: since, Counts: make([]EventCountResponse, 0, len(counts))}
	for _, c := range counts {
		resp.Counts = append(resp.Counts, EventCountResponse{EventType: string(c.EventType), Count: c.Count})
		resp.Total += c.Count
	}
	return resp, nil
}
