package identity

import (
	"slices"

	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Actor is the explicit session context handed to every application service.
// It is built from verified credentials by the HTTP layer; services never look
// up the caller from ambient state.
type Actor struct {
	UserID uuid.UUID
	Roles  []Role
}

// Anonymous returns an actor for unauthenticated requests
func Anonymous() Actor {
	return Actor{}
}

// NewActor creates an actor for an authenticated account
func NewActor(userID uuid.UUID, roles ...Role) Actor {
	return Actor{UserID: userID, Roles: roles}
}

// IsAuthenticated reports whether the actor carries an account id
func (a Actor) IsAuthenticated() bool {
	return a.UserID != uuid.Nil
}

// HasRole reports whether the actor holds r
func (a Actor) HasRole(r Role) bool {
	return slices.Contains(a.Roles, r)
}

func (a Actor) IsAdmin() bool { return a.HasRole(RoleAdmin) }

func (a Actor) IsManager() bool { return a.HasRole(RoleManager) }

// IsStaff is true for admins and managers
func (a Actor) IsStaff() bool {
	return a.IsAdmin() || a.IsManager()
}

// IsClient is true for authenticated accounts without a staff role
func (a Actor) IsClient() bool {
	return a.IsAuthenticated() && !a.IsStaff()
}

// RequireAuthenticated returns ErrUnauthorized for anonymous actors
func (a Actor) RequireAuthenticated() error {
	if !a.IsAuthenticated() {
		return shared.ErrUnauthorized
	}
	return nil
}

// RequireAdmin returns an error unless the actor is an authenticated admin
func (a Actor) RequireAdmin() error {
	if err := a.RequireAuthenticated(); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return shared.NewDomainError("FORBIDDEN", "Admin role required")
	}
	return nil
}

// RequireStaff returns an error unless the actor is an authenticated admin or manager
func (a Actor) RequireStaff() error {
	if err := a.RequireAuthenticated(); err != nil {
		return err
	}
	if !a.IsStaff() {
		return shared.NewDomainError("FORBIDDEN", "Staff role required")
	}
	return nil
}
