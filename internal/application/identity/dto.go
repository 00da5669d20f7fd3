package identity

import (
	"time"

	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterRequest is a client self-registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"required,max=200"`
	Phone    string `json:"phone" binding:"max=50"`
}

// LoginRequest contains credentials for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest carries a refresh token when it is not sent as a cookie
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID         uuid.UUID
	TokenJTI       string    // JWT ID of the access token being retired
	TokenExpiresAt time.Time // Blacklist entries live until the token would expire anyway
}

// UserInfo is the account summary returned after login and by /auth/me
type UserInfo struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone,omitempty"`
	Roles    []string  `json:"roles"`
}

// TokenResult contains an issued token pair and the account it belongs to
type TokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"-"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"-"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

// CreateManagerRequest is the privileged create-manager body
type CreateManagerRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"required,max=200"`
	Phone    string `json:"phone" binding:"max=50"`
}

// CreateManagerResponse identifies the provisioned manager
type CreateManagerResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// AssignRoleRequest grants a staff role
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin manager"`
}

// StaffMemberResponse lists a staff account with its roles
type StaffMemberResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone,omitempty"`
	Roles       []string   `json:"roles"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func toUserInfo(account *identity.Account, profile *identity.Profile, roles []identity.Role) UserInfo {
	info := UserInfo{
		ID:    account.ID,
		Email: account.Email,
		Roles: identity.RolesToStrings(roles),
	}
	if profile != nil {
		info.FullName = profile.FullName
		info.Phone = profile.Phone
	}
	return info
}
