package persistence

import (
	"context"

	appcrm "github.com/autodealer/backend/internal/application/crm"
	"github.com/autodealer/backend/internal/domain/crm"
	"gorm.io/gorm"
)

// GormTransactionScope implements the CRM TransactionScope using GORM transactions.
// A status change and the score it earns commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcrm.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories binds the CRM repositories to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) LeadRepo() crm.LeadRepository {
	return NewGormLeadRepository(r.tx)
}

func (r *gormTransactionalRepositories) ReviewRepo() crm.ReviewRepository {
	return NewGormReviewRepository(r.tx)
}

func (r *gormTransactionalRepositories) ScoreRepo() crm.ScoreRepository {
	return NewGormScoreRepository(r.tx)
}

var (
	_ appcrm.TransactionScope          = (*GormTransactionScope)(nil)
	_ appcrm.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
