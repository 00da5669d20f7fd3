package persistence

import (
	"context"
	"strings"

	"github.com/autodealer/backend/internal/domain/catalog"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/autodealer/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCarRepository implements catalog.CarRepository using GORM
type GormCarRepository struct {
	db *gorm.DB
}

// NewGormCarRepository creates a new GormCarRepository
func NewGormCarRepository(db *gorm.DB) *GormCarRepository {
	return &GormCarRepository{db: db}
}

// FindByID finds a car by its ID
func (r *GormCarRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Car, error) {
	var model models.CarModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the cars with the given ids; unknown ids are skipped
func (r *GormCarRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Car, error) {
	if len(ids) == 0 {
		return []catalog.Car{}, nil
	}
	var rows []models.CarModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCars(rows), nil
}

// Exists reports whether a car with the id exists
func (r *GormCarRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CarModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns one page of cars matching the filter and the total match count
func (r *GormCarRepository) List(ctx context.Context, filter catalog.CarFilter) ([]catalog.Car, int64, error) {
	f := filter.Filter.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CarModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CarModel
	if err := query.
		Order(carSort.orderBy(f.OrderBy, f.OrderDir)).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toCars(rows), total, nil
}

// Create inserts a new car
func (r *GormCarRepository) Create(ctx context.Context, car *catalog.Car) error {
	return r.db.WithContext(ctx).Create(models.CarModelFromDomain(car)).Error
}

// SaveWithLock updates a car if its stored version is car.Version-1
func (r *GormCarRepository) SaveWithLock(ctx context.Context, car *catalog.Car) error {
	m := models.CarModelFromDomain(car)
	result := r.db.WithContext(ctx).
		Model(m).
		Where("version = ?", car.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a car
func (r *GormCarRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CarModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByStatus returns the number of cars per status
func (r *GormCarRepository) CountByStatus(ctx context.Context) (map[catalog.CarStatus]int64, error) {
	var rows []struct {
		Status catalog.CarStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.CarModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[catalog.CarStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *GormCarRepository) applyFilter(query *gorm.DB, filter catalog.CarFilter) *gorm.DB {
	if filter.Make != "" {
		query = query.Where("LOWER(make) = ?", strings.ToLower(filter.Make))
	}
	if filter.BodyType != "" {
		query = query.Where("body_type = ?", filter.BodyType)
	}
	if filter.FuelType != "" {
		query = query.Where("fuel_type = ?", filter.FuelType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinPrice != nil {
		query = query.Where("public_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("public_price <= ?", *filter.MaxPrice)
	}
	if filter.MinYear != nil {
		query = query.Where("year >= ?", *filter.MinYear)
	}
	if filter.MaxYear != nil {
		query = query.Where("year <= ?", *filter.MaxYear)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(make) LIKE ? OR LOWER(model) LIKE ?", pattern, pattern)
	}
	return query
}

func toCars(rows []models.CarModel) []catalog.Car {
	cars := make([]catalog.Car, len(rows))
	for i := range rows {
		cars[i] = *rows[i].ToDomain()
	}
	return cars
}

var _ catalog.CarRepository = (*GormCarRepository)(nil)
