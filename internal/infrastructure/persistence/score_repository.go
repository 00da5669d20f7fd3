package persistence

import (
	"context"

	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormScoreRepository implements crm.ScoreRepository using GORM
type GormScoreRepository struct {
	db *gorm.DB
}

// NewGormScoreRepository creates a new GormScoreRepository
func NewGormScoreRepository(db *gorm.DB) *GormScoreRepository {
	return &GormScoreRepository{db: db}
}

// Award inserts with ON CONFLICT DO NOTHING so the (lead_id, action_type)
// index makes every award at-most-once.
func (r *GormScoreRepository) Award(ctx context.Context, score *crm.ManagerScore) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(models.ManagerScoreModelFromDomain(score))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListByManager returns a manager's score history, newest first
func (r *GormScoreRepository) ListByManager(ctx context.Context, managerID uuid.UUID) ([]crm.ManagerScore, error) {
	var rows []models.ManagerScoreModel
	if err := r.db.WithContext(ctx).
		Where("manager_id = ?", managerID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	scores := make([]crm.ManagerScore, len(rows))
	for i := range rows {
		scores[i] = rows[i].ToDomain()
	}
	return scores, nil
}

// TotalsByManager sums points per manager, highest first
func (r *GormScoreRepository) TotalsByManager(ctx context.Context) ([]crm.ManagerTotals, error) {
	var rows []crm.ManagerTotals
	if err := r.db.WithContext(ctx).
		Model(&models.ManagerScoreModel{}).
		Select(`manager_id,
			SUM(points) AS total_points,
			SUM(CASE WHEN action_type = ? THEN 1 ELSE 0 END) AS sales_count,
			SUM(CASE WHEN action_type = ? THEN 1 ELSE 0 END) AS reviews_count`,
			crm.ScoreActionSale, crm.ScoreActionReview).
		Group("manager_id").
		Order("total_points DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

var _ crm.ScoreRepository = (*GormScoreRepository)(nil)
