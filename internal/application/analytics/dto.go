package analytics

import (
	"time"

	"github.com/google/uuid"
)

// TrackEventRequest is a client-side interaction posted by the website
type TrackEventRequest struct {
	EventType string         `json:"event_type" binding:"required,oneof=car_view calculator_used chat_opened lead_form_opened"`
	CarID     *uuid.UUID     `json:"car_id"`
	LeadID    *uuid.UUID     `json:"lead_id"`
	Metadata  map[string]any `json:"metadata"`
}

// SummaryFilter selects the reporting window
type SummaryFilter struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}

// EventCountResponse is one row of the summary
type EventCountResponse struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// SummaryResponse counts events per type since a point in time
type SummaryResponse struct {
	Since  time.Time            `json:"since"`
	Total  int64                `json:"total"`
	Counts []EventCountResponse `json:"counts"`
}
