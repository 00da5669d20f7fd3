package persistence

import (
	"context"
	"time"

	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/autodealer/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRoleRepository implements identity.RoleRepository over user_roles
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// RolesOf returns the staff roles held by an account
func (r *GormRoleRepository) RolesOf(ctx context.Context, userID uuid.UUID) ([]identity.Role, error) {
	var roles []identity.Role
	if err := r.db.WithContext(ctx).
		Model(&models.UserRoleModel{}).
		Where("user_id = ?", userID).
		Order("role").
		Pluck("role", &roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Assign grants a role; the unique (user_id, role) index rejects duplicates
func (r *GormRoleRepository) Assign(ctx context.Context, userID uuid.UUID, role identity.Role) error {
	err := r.db.WithContext(ctx).Create(&models.UserRoleModel{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
	}).Error
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// Revoke removes a role; revoking a role not held returns ErrNotFound
func (r *GormRoleRepository) Revoke(ctx context.Context, userID uuid.UUID, role identity.Role) error {
	result := r.db.WithContext(ctx).Delete(&models.UserRoleModel{}, "user_id = ? AND role = ?", userID, role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UsersWithRole lists the account ids holding a role
func (r *GormRoleRepository) UsersWithRole(ctx context.Context, role identity.Role) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.UserRoleModel{}).
		Where("role = ?", role).
		Order("created_at").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

var _ identity.RoleRepository = (*GormRoleRepository)(nil)
