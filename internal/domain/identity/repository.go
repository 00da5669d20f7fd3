package identity

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines persistence for accounts and their profiles
type AccountRepository interface {
	// FindByID finds an account by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByEmail finds an account by its (lower-cased) email
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// ExistsByEmail checks whether an email is already registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts the account together with its profile
	Create(ctx context.Context, account *Account, profile *Profile) error

	// Save updates mutable account fields
	Save(ctx context.Context, account *Account) error

	// Delete removes the account and its profile. Used to compensate a failed provisioning.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileRepository reads and updates profiles
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// FindByUserIDs returns profiles keyed by user id; missing ids are skipped
	FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*Profile, error)

	Save(ctx context.Context, profile *Profile) error
}

// RoleRepository manages rows of user_roles
type RoleRepository interface {
	// RolesOf returns the staff roles held by an account
	RolesOf(ctx context.Context, userID uuid.UUID) ([]Role, error)

	// Assign grants a role; assigning an already held role returns ErrAlreadyExists
	Assign(ctx context.Context, userID uuid.UUID, role Role) error

	// Revoke removes a role; revoking a role not held returns ErrNotFound
	Revoke(ctx context.Context, userID uuid.UUID, role Role) error

	// UsersWithRole lists the account ids holding a role
	UsersWithRole(ctx context.Context, role Role) ([]uuid.UUID, error)
}
