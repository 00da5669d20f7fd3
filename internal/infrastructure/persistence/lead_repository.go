package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/autodealer/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLeadRepository implements crm.LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// FindByID finds a lead by its ID
func (r *GormLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	var model models.LeadModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByToken finds a lead by its tracking token
func (r *GormLeadRepository) FindByToken(ctx context.Context, token string) (*crm.Lead, error) {
	if token == "" {
		return nil, shared.ErrNotFound
	}
	var model models.LeadModel
	if err := r.db.WithContext(ctx).First(&model, "rating_token = ?", token).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// List returns one page of leads and the total count
func (r *GormLeadRepository) List(ctx context.Context, filter crm.LeadFilter) ([]crm.Lead, int64, error) {
	f := filter.Filter.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LeadModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.LeadModel
	if err := query.
		Order(leadSort.orderBy(f.OrderBy, f.OrderDir)).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toLeads(rows), total, nil
}

// ListByClient returns every lead linked to a client account, newest first
func (r *GormLeadRepository) ListByClient(ctx context.Context, clientUserID uuid.UUID) ([]crm.Lead, error) {
	var rows []models.LeadModel
	if err := r.db.WithContext(ctx).
		Where("client_user_id = ?", clientUserID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toLeads(rows), nil
}

// Create inserts a new lead
func (r *GormLeadRepository) Create(ctx context.Context, lead *crm.Lead) error {
	return r.db.WithContext(ctx).Create(models.LeadModelFromDomain(lead)).Error
}

// ClaimUnassigned is the first-claim-wins guard: the row is only updated while
// it is still new and unassigned, so of N concurrent callers exactly one
// affects a row.
func (r *GormLeadRepository) ClaimUnassigned(ctx context.Context, leadID, managerID uuid.UUID, claimedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Where("id = ? AND assigned_manager_id IS NULL AND status = ?", leadID, crm.LeadStatusNew).
		Updates(map[string]any{
			"assigned_manager_id": managerID,
			"status":              crm.LeadStatusContacted,
			"claimed_at":          claimedAt,
			"updated_at":          claimedAt,
			"version":             gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SaveWithLock updates a lead if its stored version is lead.Version-1
func (r *GormLeadRepository) SaveWithLock(ctx context.Context, lead *crm.Lead) error {
	result := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Where("id = ? AND version = ?", lead.ID, lead.Version-1).
		Updates(map[string]any{
			"status":              lead.Status,
			"assigned_manager_id": lead.AssignedManagerID,
			"claimed_at":          lead.ClaimedAt,
			"closed_at":           lead.ClosedAt,
			"version":             lead.Version,
			"updated_at":          lead.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountByStatus returns the number of leads per status
func (r *GormLeadRepository) CountByStatus(ctx context.Context) (map[crm.LeadStatus]int64, error) {
	var rows []struct {
		Status crm.LeadStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[crm.LeadStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountsByManager counts assigned and won leads per assignee
func (r *GormLeadRepository) CountsByManager(ctx context.Context) (map[uuid.UUID]crm.ManagerLeadCounts, error) {
	var rows []struct {
		ManagerID uuid.UUID
		Assigned  int64
		Won       int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Select("assigned_manager_id AS manager_id, COUNT(*) AS assigned, "+
			"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS won", crm.LeadStatusClosedWon).
		Where("assigned_manager_id IS NOT NULL").
		Group("assigned_manager_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]crm.ManagerLeadCounts, len(rows))
	for _, row := range rows {
		counts[row.ManagerID] = crm.ManagerLeadCounts(row)
	}
	return counts, nil
}

func (r *GormLeadRepository) applyFilter(query *gorm.DB, filter crm.LeadFilter) *gorm.DB {
	if filter.VisibleToManagerID != nil {
		query = query.Where("(assigned_manager_id IS NULL OR assigned_manager_id = ?)", *filter.VisibleToManagerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssignedManagerID != nil {
		query = query.Where("assigned_manager_id = ?", *filter.AssignedManagerID)
	}
	if filter.Unassigned {
		query = query.Where("assigned_manager_id IS NULL")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(customer_name) LIKE ? OR customer_phone LIKE ?)", pattern, pattern)
	}
	return query
}

func toLeads(rows []models.LeadModel) []crm.Lead {
	leads := make([]crm.Lead, len(rows))
	for i := range rows {
		leads[i] = *rows[i].ToDomain()
	}
	return leads
}

var _ crm.LeadRepository = (*GormLeadRepository)(nil)
