package persistence

import (
	"context"

	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/autodealer/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReviewRepository implements crm.ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByID finds a review by its ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByLeadID returns the review of a lead or ErrNotFound
func (r *GormReviewRepository) FindByLeadID(ctx context.Context, leadID uuid.UUID) (*crm.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).First(&model, "lead_id = ?", leadID).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsForLead reports whether the lead already has a review
func (r *GormReviewRepository) ExistsForLead(ctx context.Context, leadID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ReviewModel{}).Where("lead_id = ?", leadID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a review; the unique index on lead_id turns a concurrent
// second submission into ErrReviewAlreadyExists.
func (r *GormReviewRepository) Create(ctx context.Context, review *crm.Review) error {
	if err := r.db.WithContext(ctx).Create(models.ReviewModelFromDomain(review)).Error; err != nil {
		if isUniqueViolation(err) {
			return crm.ErrReviewAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists approval changes
func (r *GormReviewRepository) Save(ctx context.Context, review *crm.Review) error {
	result := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Where("id = ?", review.ID).
		Updates(map[string]any{
			"is_approved": review.IsApproved,
			"approved_at": review.ApprovedAt,
			"approved_by": review.ApprovedBy,
			"version":     review.Version,
			"updated_at":  review.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a review. Score records it earned stay in place.
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ReviewModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns one page of reviews and the total count
func (r *GormReviewRepository) List(ctx context.Context, filter crm.ReviewFilter) ([]crm.Review, int64, error) {
	f := filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ReviewModel{})
	if filter.Approved != nil {
		query = query.Where("is_approved = ?", *filter.Approved)
	}
	if filter.ManagerID != nil {
		query = query.Where("manager_id = ?", *filter.ManagerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ReviewModel
	if err := query.
		Order(reviewSort.orderBy(f.OrderBy, f.OrderDir)).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	reviews := make([]crm.Review, len(rows))
	for i := range rows {
		reviews[i] = *rows[i].ToDomain()
	}
	return reviews, total, nil
}

// RatingsByManager averages approved ratings per manager
func (r *GormReviewRepository) RatingsByManager(ctx context.Context) (map[uuid.UUID]crm.ManagerRating, error) {
	var rows []struct {
		ManagerID    uuid.UUID
		ReviewCount  int64
		AverageScore float64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Select("manager_id, COUNT(*) AS review_count, AVG(rating) AS average_score").
		Where("is_approved = ?", true).
		Group("manager_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	ratings := make(map[uuid.UUID]crm.ManagerRating, len(rows))
	for _, row := range rows {
		ratings[row.ManagerID] = crm.ManagerRating(row)
	}
	return ratings, nil
}

var _ crm.ReviewRepository = (*GormReviewRepository)(nil)
