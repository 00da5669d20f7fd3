package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/autodealer/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	accountRepo    identity.AccountRepository
	profileRepo    identity.ProfileRepository
	roleRepo       identity.RoleRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service. blacklist may be nil,
// in which case logout only clears the client side.
func NewAuthService(
	accountRepo identity.AccountRepository,
	profileRepo identity.ProfileRepository,
	roleRepo identity.RoleRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		roleRepo:    roleRepo,
		jwtService:  jwtService,
		blacklist:   blacklist,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Register creates a client account and logs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*TokenResult, error) {
	taken, err := s.accountRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, identity.ErrEmailTaken
	}

	account, err := identity.NewAccount(req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	profile, err := identity.NewProfile(account.ID, req.FullName, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Create(ctx, account, profile); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, identity.ErrEmailTaken
		}
		s.logger.Error("Failed to create account", zap.Error(err))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("Client registered", zap.String("user_id", account.ID.String()))
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, account.GetDomainEvents()...)
	}
	account.ClearDomainEvents()

	return s.issue(account, profile, nil)
}

// Login authenticates by email and password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResult, error) {
	account, err := s.accountRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email")
			return nil, identity.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if !account.CanLogin() {
		s.logger.Warn("Login attempt for inactive account", zap.String("user_id", account.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account has been deactivated")
	}
	if !account.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", account.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}

	roles, err := s.roleRepo.RolesOf(ctx, account.ID)
	if err != nil {
		s.logger.Error("Failed to load roles", zap.Error(err))
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	profile, err := s.profileRepo.FindByUserID(ctx, account.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	account.RecordLogin()
	if err := s.accountRepo.Save(ctx, account); err != nil {
		// Don't fail the login over a timestamp
		s.logger.Error("Failed to record login", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", account.ID.String()),
		zap.Strings("roles", identity.RolesToStrings(roles)),
	)
	return s.issue(account, profile, roles)
}

// Refresh exchanges a refresh token for a new pair. Roles are re-read so a
// promotion or demotion takes effect at the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.SessionRevoked(ctx, userID, claims.GetIssuedAtTime())
		if err != nil {
			s.logger.Error("Failed to check session revocation", zap.Error(err))
			return nil, fmt.Errorf("failed to check session: %w", err)
		}
		if revoked {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Session has been revoked. Please log in again")
		}
	}

	account, err := s.accountRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !account.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	roles, err := s.roleRepo.RolesOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	pair, err := s.jwtService.RefreshTokenPair(refreshToken, account.Email, identity.RolesToStrings(roles))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))
	return toTokenResult(pair, toUserInfo(account, profile, roles)), nil
}

// Logout blacklists the presented access token until it would have expired
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.logger.Info("User logout", zap.String("user_id", input.UserID.String()))
	if s.blacklist == nil || input.TokenJTI == "" {
		return nil
	}
	ttl := time.Until(input.TokenExpiresAt)
	if err := s.blacklist.RevokeToken(ctx, input.TokenJTI, ttl); err != nil {
		s.logger.Error("Failed to blacklist token", zap.Error(err))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Me returns the caller's account with roles read from the store
func (s *AuthService) Me(ctx context.Context, actor identity.Actor) (*UserInfo, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	roles, err := s.roleRepo.RolesOf(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	profile, err := s.profileRepo.FindByUserID(ctx, actor.UserID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	info := toUserInfo(account, profile, roles)
	return &info, nil
}

func (s *AuthService) issue(account *identity.Account, profile *identity.Profile, roles []identity.Role) (*TokenResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: account.ID,
		Email:  account.Email,
		Roles:  identity.RolesToStrings(roles),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return toTokenResult(pair, toUserInfo(account, profile, roles)), nil
}

func toTokenResult(pair *auth.TokenPair, user UserInfo) *TokenResult {
	return &TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  user,
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrInvalidClaims):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
