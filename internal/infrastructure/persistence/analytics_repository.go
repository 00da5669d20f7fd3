package persistence

import (
	"context"
	"slices"
	"time"

	"github.com/autodealer/backend/internal/domain/analytics"
	"github.com/autodealer/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormEventRepository implements analytics.EventRepository using GORM
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// Append stores one analytics event
func (r *GormEventRepository) Append(ctx context.Context, event *analytics.Event) error {
	return r.db.WithContext(ctx).Create(models.AnalyticsEventModelFromDomain(event)).Error
}

// CountByType counts events created at or after since, most frequent first
func (r *GormEventRepository) CountByType(ctx context.Context, since time.Time) ([]analytics.EventCount, error) {
	var rows []analytics.EventCount
	if err := r.db.WithContext(ctx).
		Model(&models.AnalyticsEventModel{}).
		Select("event_type, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("event_type").
		Order("count DESC, event_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GormChatRepository implements analytics.ChatRepository using GORM
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a new GormChatRepository
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

// Append stores one chat turn
func (r *GormChatRepository) Append(ctx context.Context, msg *analytics.ChatMessage) error {
	return r.db.WithContext(ctx).Create(models.ChatMessageModelFromDomain(msg)).Error
}

// ListBySession returns the latest limit messages of a session in chronological order
func (r *GormChatRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]analytics.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.ChatMessageModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	slices.Reverse(rows)
	messages := make([]analytics.ChatMessage, len(rows))
	for i := range rows {
		messages[i] = rows[i].ToDomain()
	}
	return messages, nil
}

var (
	_ analytics.EventRepository = (*GormEventRepository)(nil)
	_ analytics.ChatRepository  = (*GormChatRepository)(nil)
)
