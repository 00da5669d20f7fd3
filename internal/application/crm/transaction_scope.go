package crm

import (
	"context"

	"github.com/autodealer/backend/internal/domain/crm"
)

// TransactionScope provides transactional access to CRM repositories.
// A status change and the score it earns are written in the same transaction.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes CRM repositories bound to one transaction
type TransactionalRepositories interface {
	LeadRepo() crm.LeadRepository
	ReviewRepo() crm.ReviewRepository
	ScoreRepo() crm.ScoreRepository
}

// NoOpTransactionScope runs the function against plain repositories.
// It is used in unit tests.
type NoOpTransactionScope struct {
	leadRepo   crm.LeadRepository
	reviewRepo crm.ReviewRepository
	scoreRepo  crm.ScoreRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	leadRepo crm.LeadRepository,
	reviewRepo crm.ReviewRepository,
	scoreRepo crm.ScoreRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		leadRepo:   leadRepo,
		reviewRepo: reviewRepo,
		scoreRepo:  scoreRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) LeadRepo() crm.LeadRepository     { return s.leadRepo }
func (s *NoOpTransactionScope) ReviewRepo() crm.ReviewRepository { return s.reviewRepo }
func (s *NoOpTransactionScope) ScoreRepo() crm.ScoreRepository   { return s.scoreRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
