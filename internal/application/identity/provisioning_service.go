package identity

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ManagerProvisioningService creates staff accounts on behalf of an admin
type ManagerProvisioningService struct {
	accountRepo    identity.AccountRepository
	roleRepo       identity.RoleRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewManagerProvisioningService creates a new provisioning service
func NewManagerProvisioningService(
	accountRepo identity.AccountRepository,
	roleRepo identity.RoleRepository,
	logger *zap.Logger,
) *ManagerProvisioningService {
	return &ManagerProvisioningService{
		accountRepo: accountRepo,
		roleRepo:    roleRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ManagerProvisioningService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateManager provisions a confirmed account holding the manager role.
// The caller's admin role is re-read from the store rather than trusted from
// the token. If the role cannot be granted the account is deleted again.
func (s *ManagerProvisioningService) CreateManager(ctx context.Context, actor identity.Actor, req CreateManagerRequest) (*CreateManagerResponse, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	callerRoles, err := s.roleRepo.RolesOf(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load caller roles: %w", err)
	}
	if !slices.Contains(callerRoles, identity.RoleAdmin) {
		s.logger.Warn("Create-manager refused for non-admin", zap.String("user_id", actor.UserID.String()))
		return nil, shared.ErrForbidden
	}

	taken, err := s.accountRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, identity.ErrEmailTaken
	}

	account, err := identity.NewConfirmedAccount(req.Email, req.Password)
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
		s.logger.Error("Failed to create manager account", zap.Error(err))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.roleRepo.Assign(ctx, account.ID, identity.RoleManager); err != nil {
		s.logger.Error("Failed to assign manager role, rolling back account",
			zap.String("user_id", account.ID.String()),
			zap.Error(err),
		)
		if delErr := s.accountRepo.Delete(ctx, account.ID); delErr != nil {
			s.logger.Error("Failed to roll back manager account",
				zap.String("user_id", account.ID.String()),
				zap.Error(delErr),
			)
		}
		return nil, identity.ErrRoleAssignmentFailed
	}

	s.logger.Info("Manager provisioned",
		zap.String("user_id", account.ID.String()),
		zap.String("created_by", actor.UserID.String()),
	)
	if s.eventPublisher != nil {
		events := append(account.GetDomainEvents(),
			identity.NewRoleChangedEvent(identity.EventTypeRoleAssigned, account.ID, identity.RoleManager, actor.UserID))
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	account.ClearDomainEvents()

	return &CreateManagerResponse{ID: account.ID, Email: account.Email}, nil
}
