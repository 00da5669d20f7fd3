package identity

import (
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeAccount = "Account"

// Event type constants
const (
	EventTypeAccountCreated = "AccountCreated"
	EventTypeRoleAssigned   = "RoleAssigned"
	EventTypeRoleRevoked    = "RoleRevoked"
)

// AccountCreatedEvent is published when a new account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID `json:"account_id"`
	Email     string    `json:"email"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(a *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, AggregateTypeAccount, a.ID),
		AccountID:       a.ID,
		Email:           a.Email,
	}
}

// RoleChangedEvent is published when a staff role is assigned or revoked
type RoleChangedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID `json:"account_id"`
	Role      Role      `json:"role"`
	ChangedBy uuid.UUID `json:"changed_by"`
}

// NewRoleChangedEvent creates a RoleAssigned or RoleRevoked event
func NewRoleChangedEvent(eventType string, accountID uuid.UUID, role Role, changedBy uuid.UUID) *RoleChangedEvent {
	return &RoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeAccount, accountID),
		AccountID:       accountID,
		Role:            role,
		ChangedBy:       changedBy,
	}
}
