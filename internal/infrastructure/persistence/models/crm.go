package models

import (
	"time"

	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/google/uuid"
)

// LeadModel is the persistence model for the Lead aggregate.
type LeadModel struct {
	AggregateModel
	CustomerName      string         `gorm:"type:varchar(100);not null"`
	CustomerPhone     string         `gorm:"type:varchar(20);not null;index"`
	CustomerEmail     string         `gorm:"type:varchar(200)"`
	CarID             *uuid.UUID     `gorm:"type:uuid;index"`
	ClientUserID      *uuid.UUID     `gorm:"type:uuid;index"`
	Message           string         `gorm:"type:text"`
	Source            string         `gorm:"type:varchar(50);not null;default:'website'"`
	Status            crm.LeadStatus `gorm:"type:varchar(20);not null;default:'new';index"`
	AssignedManagerID *uuid.UUID     `gorm:"type:uuid;index"`
	RatingToken       string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	ClaimedAt         *time.Time
	ClosedAt          *time.Time
}

// TableName returns the table name for GORM
func (LeadModel) TableName() string {
	return "leads"
}

// ToDomain converts the persistence model to a domain Lead.
func (m *LeadModel) ToDomain() *crm.Lead {
	return &crm.Lead{
		BaseAggregateRoot: m.Root(),
		CustomerName:      m.CustomerName,
		CustomerPhone:     m.CustomerPhone,
		CustomerEmail:     m.CustomerEmail,
		CarID:             m.CarID,
		ClientUserID:      m.ClientUserID,
		Message:           m.Message,
		Source:            m.Source,
		Status:            m.Status,
		AssignedManagerID: m.AssignedManagerID,
		TrackingToken:     m.RatingToken,
		ClaimedAt:         m.ClaimedAt,
		ClosedAt:          m.ClosedAt,
	}
}

// FromDomain populates the persistence model from a domain Lead.
func (m *LeadModel) FromDomain(l *crm.Lead) {
	m.SetRoot(l.BaseAggregateRoot)
	m.CustomerName = l.CustomerName
	m.CustomerPhone = l.CustomerPhone
	m.CustomerEmail = l.CustomerEmail
	m.CarID = l.CarID
	m.ClientUserID = l.ClientUserID
	m.Message = l.Message
	m.Source = l.Source
	m.Status = l.Status
	m.AssignedManagerID = l.AssignedManagerID
	m.RatingToken = l.TrackingToken
	m.ClaimedAt = l.ClaimedAt
	m.ClosedAt = l.ClosedAt
}

// LeadModelFromDomain creates a new persistence model from a domain Lead.
func LeadModelFromDomain(l *crm.Lead) *LeadModel {
	m := &LeadModel{}
	m.FromDomain(l)
	return m
}

// ReviewModel is the persistence model for a customer review.
type ReviewModel struct {
	AggregateModel
	LeadID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	ManagerID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Rating       int        `gorm:"not null"`
	Comment      string     `gorm:"type:text"`
	CustomerName string     `gorm:"type:varchar(100)"`
	IsApproved   bool       `gorm:"not null;default:false;index"`
	ApprovedAt   *time.Time
	ApprovedBy   *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the persistence model to a domain Review.
func (m *ReviewModel) ToDomain() *crm.Review {
	return &crm.Review{
		BaseAggregateRoot: m.Root(),
		LeadID:            m.LeadID,
		ManagerID:         m.ManagerID,
		Rating:            m.Rating,
		Comment:           m.Comment,
		CustomerName:      m.CustomerName,
		IsApproved:        m.IsApproved,
		ApprovedAt:        m.ApprovedAt,
		ApprovedBy:        m.ApprovedBy,
	}
}

// FromDomain populates the persistence model from a domain Review.
func (m *ReviewModel) FromDomain(r *crm.Review) {
	m.SetRoot(r.BaseAggregateRoot)
	m.LeadID = r.LeadID
	m.ManagerID = r.ManagerID
	m.Rating = r.Rating
	m.Comment = r.Comment
	m.CustomerName = r.CustomerName
	m.IsApproved = r.IsApproved
	m.ApprovedAt = r.ApprovedAt
	m.ApprovedBy = r.ApprovedBy
}

// ReviewModelFromDomain creates a new persistence model from a domain Review.
func ReviewModelFromDomain(r *crm.Review) *ReviewModel {
	m := &ReviewModel{}
	m.FromDomain(r)
	return m
}

// ManagerScoreModel is an immutable score record. The partial unique index on
// (lead_id, action_type) lives in the SQL migration; SQLite tests get a plain one.
type ManagerScoreModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	ManagerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ActionType  crm.ScoreAction `gorm:"type:varchar(20);not null;uniqueIndex:idx_manager_scores_lead_action,priority:2"`
	Points      int             `gorm:"not null"`
	LeadID      *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_manager_scores_lead_action,priority:1"`
	Description string          `gorm:"type:varchar(500)"`
	CreatedAt   time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ManagerScoreModel) TableName() string {
	return "manager_scores"
}

// ToDomain converts the persistence model to a domain ManagerScore.
func (m *ManagerScoreModel) ToDomain() crm.ManagerScore {
	return crm.ManagerScore{
		ID:          m.ID,
		ManagerID:   m.ManagerID,
		ActionType:  m.ActionType,
		Points:      m.Points,
		LeadID:      m.LeadID,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// ManagerScoreModelFromDomain creates a persistence model from a domain ManagerScore.
func ManagerScoreModelFromDomain(s *crm.ManagerScore) *ManagerScoreModel {
	return &ManagerScoreModel{
		ID:          s.ID,
		ManagerID:   s.ManagerID,
		ActionType:  s.ActionType,
		Points:      s.Points,
		LeadID:      s.LeadID,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}

