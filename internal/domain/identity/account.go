package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
)

// ErrRoleAssignmentFailed is returned when a freshly provisioned account could not get its role
var ErrRoleAssignmentFailed = shared.NewDomainError("ROLE_ASSIGNMENT_FAILED", "Failed to assign manager role")

// ErrInvalidCredentials is returned for unknown email or wrong password
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// ErrEmailTaken is returned when registering an email that already has an account
var ErrEmailTaken = shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")

// Account is a login identity. Staff and clients share this type; staff
// additionally hold rows in user_roles.
type Account struct {
	shared.BaseAggregateRoot
	Email          string
	PasswordHash   string
	EmailConfirmed bool
	IsActive       bool
	LastLoginAt    *time.Time
}

// Profile holds the display data attached to an account
type Profile struct {
	UserID    uuid.UUID
	FullName  string
	Phone     string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount creates an unconfirmed account (client self-registration)
func NewAccount(email, password string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	a := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      hash,
		IsActive:          true,
	}
	a.AddDomainEvent(NewAccountCreatedEvent(a))
	return a, nil
}

// NewConfirmedAccount creates an account whose email is already confirmed.
// Used for staff provisioned by an admin.
func NewConfirmedAccount(email, password string) (*Account, error) {
	a, err := NewAccount(email, password)
	if err != nil {
		return nil, err
	}
	a.EmailConfirmed = true
	return a, nil
}

// NewProfile creates the profile for an account
func NewProfile(userID uuid.UUID, fullName, phone string) (*Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_FULL_NAME", "Full name cannot be empty")
	}
	if len(fullName) > 200 {
		return nil, shared.NewDomainError("INVALID_FULL_NAME", "Full name cannot exceed 200 characters")
	}
	phone = strings.TrimSpace(phone)
	if phone != "" {
		if len(phone) > 50 || !phoneRegex.MatchString(phone) {
			return nil, shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
		}
	}
	now := time.Now()
	return &Profile{
		UserID:    userID,
		FullName:  fullName,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (a *Account) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// CanLogin returns true if the account may authenticate
func (a *Account) CanLogin() bool {
	return a.IsActive
}

// RecordLogin stamps the last successful login
func (a *Account) RecordLogin() {
	now := time.Now()
	a.LastLoginAt = &now
	a.UpdatedAt = now
}

// Deactivate blocks further logins
func (a *Account) Deactivate() {
	a.IsActive = false
	a.Touch()
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt ignores bytes past 72
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
