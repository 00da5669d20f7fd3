package crm

import (
	"context"
	"sync"
	"time"

	"github.com/autodealer/backend/internal/domain/catalog"
	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockLeadRepository is a mock implementation of crm.LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByToken(ctx context.Context, token string) (*crm.Lead, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter crm.LeadFilter) ([]crm.Lead, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadRepository) ListByClient(ctx context.Context, clientUserID uuid.UUID) ([]crm.Lead, error) {
	args := m.Called(ctx, clientUserID)
	return args.Get(0).([]crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *crm.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) ClaimUnassigned(ctx context.Context, leadID, managerID uuid.UUID, claimedAt time.Time) (bool, error) {
	args := m.Called(ctx, leadID, managerID, claimedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) SaveWithLock(ctx context.Context, lead *crm.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) CountByStatus(ctx context.Context) (map[crm.LeadStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[crm.LeadStatus]int64), args.Error(1)
}

func (m *MockLeadRepository) CountsByManager(ctx context.Context) (map[uuid.UUID]crm.ManagerLeadCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[uuid.UUID]crm.ManagerLeadCounts), args.Error(1)
}

// MockReviewRepository is a mock implementation of crm.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByLeadID(ctx context.Context, leadID uuid.UUID) (*crm.Review, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Review), args.Error(1)
}

func (m *MockReviewRepository) ExistsForLead(ctx context.Context, leadID uuid.UUID) (bool, error) {
	args := m.Called(ctx, leadID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Create(ctx context.Context, review *crm.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Save(ctx context.Context, review *crm.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) List(ctx context.Context, filter crm.ReviewFilter) ([]crm.Review, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]crm.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) RatingsByManager(ctx context.Context) (map[uuid.UUID]crm.ManagerRating, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[uuid.UUID]crm.ManagerRating), args.Error(1)
}

// MockScoreRepository is a mock implementation of crm.ScoreRepository
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) Award(ctx context.Context, score *crm.ManagerScore) (bool, error) {
	args := m.Called(ctx, score)
	return args.Bool(0), args.Error(1)
}

func (m *MockScoreRepository) ListByManager(ctx context.Context, managerID uuid.UUID) ([]crm.ManagerScore, error) {
	args := m.Called(ctx, managerID)
	return args.Get(0).([]crm.ManagerScore), args.Error(1)
}

func (m *MockScoreRepository) TotalsByManager(ctx context.Context) ([]crm.ManagerTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).([]crm.ManagerTotals), args.Error(1)
}

// MockCarRepository is a mock implementation of catalog.CarRepository
type MockCarRepository struct {
	mock.Mock
}

func (m *MockCarRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Car), args.Error(1)
}

func (m *MockCarRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Car, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Car), args.Error(1)
}

func (m *MockCarRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCarRepository) List(ctx context.Context, filter catalog.CarFilter) ([]catalog.Car, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Car), args.Get(1).(int64), args.Error(2)
}

func (m *MockCarRepository) Create(ctx context.Context, car *catalog.Car) error {
	return m.Called(ctx, car).Error(0)
}

func (m *MockCarRepository) SaveWithLock(ctx context.Context, car *catalog.Car) error {
	return m.Called(ctx, car).Error(0)
}

func (m *MockCarRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCarRepository) CountByStatus(ctx context.Context) (map[catalog.CarStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[catalog.CarStatus]int64), args.Error(1)
}

// MockProfileRepository is a mock implementation of identity.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*identity.Profile, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).(map[uuid.UUID]*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) Save(ctx context.Context, profile *identity.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

// MockRoleRepository is a mock implementation of identity.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) RolesOf(ctx context.Context, userID uuid.UUID) ([]identity.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]identity.Role), args.Error(1)
}

func (m *MockRoleRepository) Assign(ctx context.Context, userID uuid.UUID, role identity.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockRoleRepository) Revoke(ctx context.Context, userID uuid.UUID, role identity.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockRoleRepository) UsersWithRole(ctx context.Context, role identity.Role) ([]uuid.UUID, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}
