package models

import (
	"time"

	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// AccountModel is the persistence model for a login account.
type AccountModel struct {
	AggregateModel
	Email          string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash   string `gorm:"type:varchar(255);not null"`
	EmailConfirmed bool   `gorm:"not null;default:false"`
	IsActive       bool   `gorm:"not null;default:true"`
	LastLoginAt    *time.Time
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() *identity.Account {
	return &identity.Account{
		BaseAggregateRoot: m.Root(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		EmailConfirmed:    m.EmailConfirmed,
		IsActive:          m.IsActive,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain Account.
func (m *AccountModel) FromDomain(a *identity.Account) {
	m.SetRoot(a.BaseAggregateRoot)
	m.Email = a.Email
	m.PasswordHash = a.PasswordHash
	m.EmailConfirmed = a.EmailConfirmed
	m.IsActive = a.IsActive
	m.LastLoginAt = a.LastLoginAt
}

// AccountModelFromDomain creates a new persistence model from a domain Account.
func AccountModelFromDomain(a *identity.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// ProfileModel holds display data, keyed by the account id.
type ProfileModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primary_key"`
	FullName  string    `gorm:"type:varchar(200);not null"`
	Phone     string    `gorm:"type:varchar(50)"`
	AvatarURL string    `gorm:"type:varchar(500)"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProfileModel) TableName() string {
	return "profiles"
}

// ToDomain converts the persistence model to a domain Profile.
func (m *ProfileModel) ToDomain() *identity.Profile {
	return &identity.Profile{
		UserID:    m.UserID,
		FullName:  m.FullName,
		Phone:     m.Phone,
		AvatarURL: m.AvatarURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ProfileModelFromDomain creates a persistence model from a domain Profile.
func ProfileModelFromDomain(p *identity.Profile) *ProfileModel {
	return &ProfileModel{
		UserID:    p.UserID,
		FullName:  p.FullName,
		Phone:     p.Phone,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// UserRoleModel is one staff role grant. (user_id, role) is unique.
type UserRoleModel struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_user_roles_user_role,priority:1"`
	Role      identity.Role `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_roles_user_role,priority:2;index"`
	CreatedAt time.Time     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserRoleModel) TableName() string {
	return "user_roles"
}
