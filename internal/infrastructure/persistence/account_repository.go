package persistence

import (
	"context"
	"strings"

	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/autodealer/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements identity.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds an account by its (lower-cased) email
func (r *GormAccountRepository) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "email = ?", normalizeEmail(email)).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByEmail checks whether an email is already registered
func (r *GormAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the account together with its profile in one transaction
func (r *GormAccountRepository) Create(ctx context.Context, account *identity.Account, profile *identity.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.AccountModelFromDomain(account)).Error; err != nil {
			if isUniqueViolation(err) {
				return identity.ErrEmailTaken
			}
			return err
		}
		if profile == nil {
			return nil
		}
		return tx.Create(models.ProfileModelFromDomain(profile)).Error
	})
}

// Save updates mutable account fields
func (r *GormAccountRepository) Save(ctx context.Context, account *identity.Account) error {
	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ?", account.ID).
		Updates(map[string]any{
			"password_hash":   account.PasswordHash,
			"email_confirmed": account.EmailConfirmed,
			"is_active":       account.IsActive,
			"last_login_at":   account.LastLoginAt,
			"version":         account.Version,
			"updated_at":      account.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the account with its profile and role grants
func (r *GormAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.UserRoleModel{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ProfileModel{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.AccountModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GormProfileRepository implements identity.ProfileRepository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByUserID finds the profile of an account
func (r *GormProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByUserIDs returns profiles keyed by user id; missing ids are skipped
func (r *GormProfileRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*identity.Profile, error) {
	result := make(map[uuid.UUID]*identity.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	var rows []models.ProfileModel
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].UserID] = rows[i].ToDomain()
	}
	return result, nil
}

// Save upserts a profile
func (r *GormProfileRepository) Save(ctx context.Context, profile *identity.Profile) error {
	return r.db.WithContext(ctx).Save(models.ProfileModelFromDomain(profile)).Error
}

var (
	_ identity.AccountRepository = (*GormAccountRepository)(nil)
	_ identity.ProfileRepository = (*GormProfileRepository)(nil)
)
