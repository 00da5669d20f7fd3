package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/autodealer/backend/internal/domain/catalog"
	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every model migrated.
// A single connection keeps the in-memory database shared across queries.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedLead(t *testing.T, repo *GormLeadRepository, name string) *crm.Lead {
	t.Helper()
	token, err := crm.NewTrackingToken()
	require.NoError(t, err)
	lead, err := crm.NewLead(crm.LeadContact{CustomerName: name, CustomerPhone: "+7 900 123-45-67"}, token)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), lead))
	return lead
}

func seedCar(t *testing.T, repo *GormCarRepository, make, model string, year int, price int64) *catalog.Car {
	t.Helper()
	car, err := catalog.NewCar(catalog.CarAttributes{
		Make:     make,
		Model:    model,
		Year:     year,
		BodyType: "sedan",
		FuelType: "petrol",
	}, decimal.NewFromInt(price))
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), car))
	return car
}

func claimedLead(t *testing.T, repo *GormLeadRepository, managerID uuid.UUID) *crm.Lead {
	t.Helper()
	lead := seedLead(t, repo, "Ivan Petrov")
	won, err := repo.ClaimUnassigned(context.Background(), lead.ID, managerID, time.Now())
	require.NoError(t, err)
	require.True(t, won)
	stored, err := repo.FindByID(context.Background(), lead.ID)
	require.NoError(t, err)
	return stored
}
