package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/autodealer/backend/internal/infrastructure/auth"
	"github.com/autodealer/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAccountRepository is a mock implementation of identity.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Account), args.Error(1)
}

func (m *MockAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *identity.Account, profile *identity.Profile) error {
	args := m.Called(ctx, account, profile)
	return args.Error(0)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *identity.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProfileRepository is a mock implementation of identity.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*identity.Profile, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).(map[uuid.UUID]*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) Save(ctx context.Context, profile *identity.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockRoleRepository is a mock implementation of identity.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) RolesOf(ctx context.Context, userID uuid.UUID) ([]identity.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]identity.Role), args.Error(1)
}

func (m *MockRoleRepository) Assign(ctx context.Context, userID uuid.UUID, role identity.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockRoleRepository) Revoke(ctx context.Context, userID uuid.UUID, role identity.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockRoleRepository) UsersWithRole(ctx context.Context, role identity.Role) ([]uuid.UUID, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockEventPublisher records published events in order
type MockEventPublisher struct {
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) types() []string {
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.EventType()
	}
	return out
}

const testPassword = "correct-horse-battery"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "test",
		MaxRefreshCount:        10,
	})
}

func newTestAccount(t *testing.T, email string) *identity.Account {
	t.Helper()
	account, err := identity.NewAccount(email, testPassword)
	require.NoError(t, err)
	account.ClearDomainEvents()
	return account
}

type authFixture struct {
	accounts  *MockAccountRepository
	profiles  *MockProfileRepository
	roles     *MockRoleRepository
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	service   *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		accounts:  new(MockAccountRepository),
		profiles:  new(MockProfileRepository),
		roles:     new(MockRoleRepository),
		jwt:       newTestJWTService(),
		blacklist: auth.NewInMemoryTokenBlacklist(),
	}
	f.service = NewAuthService(f.accounts, f.profiles, f.roles, f.jwt, f.blacklist, zap.NewNop())
	return f
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a client account and logs it in", func(t *testing.T) {
		f := newAuthFixture()
		publisher := new(MockEventPublisher)
		f.service.SetEventPublisher(publisher)

		f.accounts.On("ExistsByEmail", ctx, "Client@Example.com").Return(false, nil)
		f.accounts.On("Create", ctx, mock.MatchedBy(func(a *identity.Account) bool {
			return a.Email == "client@example.com" && !a.EmailConfirmed
		}), mock.MatchedBy(func(p *identity.Profile) bool {
			return p.FullName == "Aigerim Client"
		})).Return(nil)

		result, err := f.service.Register(ctx, RegisterRequest{
			Email:    "Client@Example.com",
			Password: testPassword,
			FullName: "Aigerim Client",
		})
		require.NoError(t, err)
		assert.Equal(t, "client@example.com", result.User.Email)
		assert.Empty(t, result.User.Roles, "self-registered accounts are clients")

		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID.String(), claims.UserID)
		assert.Empty(t, claims.Roles)
		assert.Equal(t, []string{identity.EventTypeAccountCreated}, publisher.types())
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		f := newAuthFixture()
		f.accounts.On("ExistsByEmail", ctx, "taken@example.com").Return(true, nil)

		_, err := f.service.Register(ctx, RegisterRequest{Email: "taken@example.com", Password: testPassword, FullName: "X"})
		assert.True(t, errors.Is(err, identity.ErrEmailTaken))
		f.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	account := newTestAccount(t, "manager@dealer.test")
	profile := &identity.Profile{UserID: account.ID, FullName: "Dana Manager", Phone: "+7 700 000 0000"}

	t.Run("issues a token carrying the stored roles", func(t *testing.T) {
		f := newAuthFixture()
		f.accounts.On("FindByEmail", ctx, "manager@dealer.test").Return(account, nil)
		f.roles.On("RolesOf", ctx, account.ID).Return([]identity.Role{identity.RoleManager}, nil)
		f.profiles.On("FindByUserID", ctx, account.ID).Return(profile, nil)
		f.accounts.On("Save", ctx, account).Return(nil)

		result, err := f.service.Login(ctx, LoginRequest{Email: "manager@dealer.test", Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, "Dana Manager", result.User.FullName)
		assert.Equal(t, []string{"manager"}, result.User.Roles)
		assert.NotNil(t, account.LastLoginAt)

		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Contains(t, claims.Roles, "manager")
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.accounts.On("FindByEmail", ctx, "manager@dealer.test").Return(account, nil)

		_, err := f.service.Login(ctx, LoginRequest{Email: "manager@dealer.test", Password: "wrong-password"})
		assert.True(t, errors.Is(err, identity.ErrInvalidCredentials))
		f.roles.AssertNotCalled(t, "RolesOf", mock.Anything, mock.Anything)
	})

	t.Run("unknown email looks like a wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.accounts.On("FindByEmail", ctx, "nobody@dealer.test").Return(nil, shared.ErrNotFound)

		_, err := f.service.Login(ctx, LoginRequest{Email: "nobody@dealer.test", Password: testPassword})
		assert.True(t, errors.Is(err, identity.ErrInvalidCredentials))
	})

	t.Run("deactivated account", func(t *testing.T) {
		f := newAuthFixture()
		inactive := *account
		inactive.IsActive = false
		f.accounts.On("FindByEmail", ctx, "manager@dealer.test").Return(&inactive, nil)

		_, err := f.service.Login(ctx, LoginRequest{Email: "manager@dealer.test", Password: testPassword})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "ACCOUNT_INACTIVE", de.Code)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	account := newTestAccount(t, "manager@dealer.test")

	issue := func(t *testing.T, f *authFixture) *auth.TokenPair {
		t.Helper()
		pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: account.ID, Email: account.Email, Roles: []string{"manager"}})
		require.NoError(t, err)
		return pair
	}

	t.Run("re-reads roles", func(t *testing.T) {
		f := newAuthFixture()
		pair := issue(t, f)
		f.accounts.On("FindByID", ctx, account.ID).Return(account, nil)
		f.roles.On("RolesOf", ctx, account.ID).Return([]identity.Role{identity.RoleManager, identity.RoleAdmin}, nil)
		f.profiles.On("FindByUserID", ctx, account.ID).Return(nil, shared.ErrNotFound)

		result, err := f.service.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Contains(t, claims.Roles, "admin")
		assert.NotEmpty(t, result.RefreshToken)
	})

	t.Run("revoked sessions cannot refresh", func(t *testing.T) {
		f := newAuthFixture()
		pair := issue(t, f)
		require.NoError(t, f.blacklist.RevokeSessions(ctx, account.ID, time.Hour))

		_, err := f.service.Refresh(ctx, pair.RefreshToken)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "TOKEN_REVOKED", de.Code)
		f.accounts.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("garbage token", func(t *testing.T) {
		f := newAuthFixture()
		_, err := f.service.Refresh(ctx, "not-a-token")
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "TOKEN_INVALID", de.Code)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		f := newAuthFixture()
		pair := issue(t, f)
		_, err := f.service.Refresh(ctx, pair.AccessToken)
		assert.Error(t, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	err := f.service.Logout(ctx, LogoutInput{UserID: userID, TokenJTI: "jti-1", TokenExpiresAt: time.Now().Add(10 * time.Minute)})
	require.NoError(t, err)

	revoked, err := f.blacklist.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Without a jti there is nothing to blacklist
	require.NoError(t, f.service.Logout(ctx, LogoutInput{UserID: userID}))
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	account := newTestAccount(t, "client@example.com")
	f.accounts.On("FindByID", ctx, account.ID).Return(account, nil)
	f.roles.On("RolesOf", ctx, account.ID).Return([]identity.Role{}, nil)
	f.profiles.On("FindByUserID", ctx, account.ID).Return(&identity.Profile{UserID: account.ID, FullName: "Client"}, nil)

	info, err := f.service.Me(ctx, identity.NewActor(account.ID))
	require.NoError(t, err)
	assert.Equal(t, "Client", info.FullName)
	assert.Empty(t, info.Roles)

	_, err = f.service.Me(ctx, identity.Anonymous())
	assert.True(t, errors.Is(err, shared.ErrUnauthorized))
}
