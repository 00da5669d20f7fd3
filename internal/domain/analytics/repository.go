package analytics

import (
	"context"
	"time"
)

// EventCount is the number of events of one type
type EventCount struct {
	EventType EventType
	Count     int64
}

// EventRepository persists analytics events
type EventRepository interface {
	// Append stores an event
	Append(ctx context.Context, event *Event) error

	// CountByType counts events created at or after since, most frequent first
	CountByType(ctx context.Context, since time.Time) ([]EventCount, error)
}

// ChatRepository persists chat transcripts
type ChatRepository interface {
	Append(ctx context.Context, msg *ChatMessage) error

	// ListBySession returns a session's messages in chronological order
	ListBySession(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error)
}
