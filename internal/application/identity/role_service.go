package identity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/autodealer/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleService grants and revokes staff roles
type RoleService struct {
	roleRepo       identity.RoleRepository
	accountRepo    identity.AccountRepository
	profileRepo    identity.ProfileRepository
	blacklist      auth.TokenBlacklist
	sessionTTL     time.Duration
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewRoleService creates a new role service. sessionTTL should be the refresh
// token lifetime so revocations outlive every token issued before them.
func NewRoleService(
	roleRepo identity.RoleRepository,
	accountRepo identity.AccountRepository,
	profileRepo identity.ProfileRepository,
	blacklist auth.TokenBlacklist,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *RoleService {
	return &RoleService{
		roleRepo:    roleRepo,
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		blacklist:   blacklist,
		sessionTTL:  sessionTTL,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *RoleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AssignRole grants a role to an existing account (admin only)
func (s *RoleService) AssignRole(ctx context.Context, actor identity.Actor, userID uuid.UUID, req AssignRoleRequest) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return err
	}
	if _, err := s.accountRepo.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.roleRepo.Assign(ctx, userID, role); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.NewDomainError("ROLE_ALREADY_ASSIGNED", "The account already holds this role")
		}
		return fmt.Errorf("failed to assign role: %w", err)
	}

	s.logger.Info("Role assigned",
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)),
		zap.String("assigned_by", actor.UserID.String()),
	)
	s.publish(ctx, identity.NewRoleChangedEvent(identity.EventTypeRoleAssigned, userID, role, actor.UserID))
	return nil
}

// RevokeRole removes a role (admin only) and ends the account's sessions so
// the stale role in its access tokens is not honoured.
func (s *RoleService) RevokeRole(ctx context.Context, actor identity.Actor, userID uuid.UUID, roleName string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	role, err := identity.ParseRole(roleName)
	if err != nil {
		return err
	}
	if userID == actor.UserID && role == identity.RoleAdmin {
		return shared.NewDomainError("CANNOT_REVOKE_SELF", "Admins cannot revoke their own admin role")
	}
	if err := s.roleRepo.Revoke(ctx, userID, role); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("ROLE_NOT_ASSIGNED", "The account does not hold this role")
		}
		return fmt.Errorf("failed to revoke role: %w", err)
	}

	if s.blacklist != nil {
		if err := s.blacklist.RevokeSessions(ctx, userID, s.sessionTTL); err != nil {
			s.logger.Error("Failed to revoke sessions after role change",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
	}
	s.logger.Info("Role revoked",
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)),
		zap.String("revoked_by", actor.UserID.String()),
	)
	s.publish(ctx, identity.NewRoleChangedEvent(identity.EventTypeRoleRevoked, userID, role, actor.UserID))
	return nil
}

// ListStaff returns every account holding role, sorted by name (admin only)
func (s *RoleService) ListStaff(ctx context.Context, actor identity.Actor, role identity.Role) ([]StaffMemberResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	ids, err := s.roleRepo.UsersWithRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	profiles, err := s.profileRepo.FindByUserIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	out := make([]StaffMemberResponse, 0, len(ids))
	for _, id := range ids {
		account, err := s.accountRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		roles, err := s.roleRepo.RolesOf(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load roles: %w", err)
		}
		member := StaffMemberResponse{
			ID:          id,
			Email:       account.Email,
			Roles:       identity.RolesToStrings(roles),
			IsActive:    account.IsActive,
			LastLoginAt: account.LastLoginAt,
		}
		if p := profiles[id]; p != nil {
			member.FullName = p.FullName
			member.Phone = p.Phone
		}
		out = append(out, member)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

func (s *RoleService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, event)
}
