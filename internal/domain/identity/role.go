package identity

import (
	"strings"

	"github.com/autodealer/backend/internal/domain/shared"
)

// Role is a staff role stored in user_roles. Accounts without any role are clients.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// IsValid reports whether r is a known staff role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager:
		return true
	}
	return false
}

// ParseRole parses a role name, case-insensitively
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewDomainError("INVALID_ROLE", "Role must be 'admin' or 'manager'")
	}
	return r, nil
}

// RolesToStrings converts roles for token claims
func RolesToStrings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

// RolesFromStrings converts token claims back to roles, skipping unknown names
func RolesFromStrings(names []string) []Role {
	out := make([]Role, 0, len(names))
	for _, n := range names {
		if r := Role(n); r.IsValid() {
			out = append(out, r)
		}
	}
	return out
}
