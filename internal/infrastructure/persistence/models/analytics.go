package models

import (
	"time"

	"github.com/autodealer/backend/internal/domain/analytics"
	"github.com/google/uuid"
)

// AnalyticsEventModel is an append-only interaction record.
type AnalyticsEventModel struct {
	ID        uuid.UUID           `gorm:"type:uuid;primary_key"`
	EventType analytics.EventType `gorm:"type:varchar(50);not null;index"`
	CarID     *uuid.UUID          `gorm:"type:uuid;index"`
	LeadID    *uuid.UUID          `gorm:"type:uuid;index"`
	UserID    *uuid.UUID          `gorm:"type:uuid"`
	Metadata  map[string]any      `gorm:"type:jsonb;serializer:json"`
	CreatedAt time.Time           `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AnalyticsEventModel) TableName() string {
	return "analytics_events"
}

// AnalyticsEventModelFromDomain creates a persistence model from a domain Event.
func AnalyticsEventModelFromDomain(e *analytics.Event) *AnalyticsEventModel {
	return &AnalyticsEventModel{
		ID:        e.ID,
		EventType: e.EventType,
		CarID:     e.CarID,
		LeadID:    e.LeadID,
		UserID:    e.UserID,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}

// ChatMessageModel is one stored chat turn.
type ChatMessageModel struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key"`
	SessionID string             `gorm:"type:varchar(100);not null;index"`
	Role      analytics.ChatRole `gorm:"type:varchar(20);not null"`
	Content   string             `gorm:"type:text;not null"`
	CreatedAt time.Time          `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ChatMessageModel) TableName() string {
	return "chat_messages"
}

// ToDomain converts the persistence model to a domain ChatMessage.
func (m *ChatMessageModel) ToDomain() analytics.ChatMessage {
	return analytics.ChatMessage{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// ChatMessageModelFromDomain creates a persistence model from a domain ChatMessage.
func ChatMessageModelFromDomain(m *analytics.ChatMessage) *ChatMessageModel {
	return &ChatMessageModel{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// All returns every model, in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&AccountModel{},
		&ProfileModel{},
		&UserRoleModel{},
		&CarModel{},
		&LeadModel{},
		&ReviewModel{},
		&ManagerScoreModel{},
		&AnalyticsEventModel{},
		&ChatMessageModel{},
	}
}
