package crm

import (
	"context"
	"errors"
	"testing"

	"github.com/autodealer/backend/internal/domain/catalog"
	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildLeadStats(t *testing.T) {
	t.Run("empty pipeline", func(t *testing.T) {
		stats := BuildLeadStats(map[crm.LeadStatus]int64{})
		assert.Equal(t, int64(0), stats.Total)
		assert.Equal(t, 0.0, stats.ConversionRate)
	})

	t.Run("conversion is won over total", func(t *testing.T) {
		stats := BuildLeadStats(map[crm.LeadStatus]int64{
			crm.LeadStatusNew:         3,
			crm.LeadStatusContacted:   2,
			crm.LeadStatusNegotiating: 1,
			crm.LeadStatusClosedWon:   1,
			crm.LeadStatusClosedLost:  2,
		})
		assert.Equal(t, int64(9), stats.Total)
		assert.Equal(t, int64(3), stats.InProgress)
		assert.Equal(t, int64(3), stats.Closed)
		assert.Equal(t, 11.11, stats.ConversionRate)
	})
}

func TestStatsService(t *testing.T) {
	ctx := context.Background()
	leadRepo := new(MockLeadRepository)
	reviewRepo := new(MockReviewRepository)
	scoreRepo := new(MockScoreRepository)
	carRepo := new(MockCarRepository)
	profileRepo := new(MockProfileRepository)
	roleRepo := new(MockRoleRepository)
	svc := NewStatsService(leadRepo, reviewRepo, scoreRepo, carRepo, profileRepo, roleRepo, zap.NewNop())

	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)
	managerA := uuid.New()
	managerB := uuid.New()
	idle := uuid.New()

	t.Run("car stats", func(t *testing.T) {
		carRepo.On("CountByStatus", ctx).Return(map[catalog.CarStatus]int64{
			catalog.CarStatusAvailable: 5,
			catalog.CarStatusSold:      2,
		}, nil)
		stats, err := svc.CarStats(ctx, admin)
		require.NoError(t, err)
		assert.Equal(t, int64(7), stats.Total)
		assert.Equal(t, int64(0), stats.Reserved)
	})

	t.Run("stats are admin only", func(t *testing.T) {
		_, err := svc.LeadStats(ctx, identity.NewActor(uuid.New(), identity.RoleManager))
		assert.True(t, errors.Is(err, shared.ErrForbidden))
	})

	t.Run("leaderboard ranks by points and lists idle managers", func(t *testing.T) {
		scoreRepo.On("TotalsByManager", ctx).Return([]crm.ManagerTotals{
			{ManagerID: managerB, TotalPoints: 40, ReviewsCount: 2},
			{ManagerID: managerA, TotalPoints: 120, SalesCount: 1, ReviewsCount: 1},
		}, nil)
		reviewRepo.On("RatingsByManager", ctx).Return(map[uuid.UUID]crm.ManagerRating{
			managerA: {ManagerID: managerA, ReviewCount: 1, AverageScore: 5},
			managerB: {ManagerID: managerB, ReviewCount: 2, AverageScore: 4.333333},
		}, nil)
		leadRepo.On("CountsByManager", ctx).Return(map[uuid.UUID]crm.ManagerLeadCounts{
			managerA: {ManagerID: managerA, Assigned: 3, Won: 1},
			managerB: {ManagerID: managerB, Assigned: 4},
		}, nil)
		roleRepo.On("UsersWithRole", ctx, identity.RoleManager).Return([]uuid.UUID{managerA, managerB, idle}, nil)
		profileRepo.On("FindByUserIDs", ctx, mock.Anything).Return(map[uuid.UUID]*identity.Profile{
			managerA: {FullName: "Alia"},
			managerB: {FullName: "Bolat"},
			idle:     {FullName: "Chingiz"},
		}, nil)

		board, err := svc.Leaderboard(ctx, identity.NewActor(managerA, identity.RoleManager))
		require.NoError(t, err)
		require.Len(t, board, 3)
		assert.Equal(t, managerA, board[0].ManagerID)
		assert.Equal(t, int64(120), board[0].TotalPoints)
		assert.Equal(t, 4.33, board[1].AvgRating)
		assert.Equal(t, int64(3), board[0].LeadsCount)
		assert.Equal(t, int64(1), board[0].WonCount)
		assert.Equal(t, int64(4), board[1].LeadsCount)
		assert.Equal(t, int64(0), board[1].WonCount)
		assert.Equal(t, "Chingiz", board[2].FullName)
		assert.Equal(t, int64(0), board[2].TotalPoints)
		assert.Equal(t, int64(0), board[2].LeadsCount)
	})

	t.Run("my scores", func(t *testing.T) {
		leadID := uuid.New()
		scoreRepo.On("ListByManager", ctx, managerA).Return([]crm.ManagerScore{
			{ID: uuid.New(), ManagerID: managerA, ActionType: crm.ScoreActionSale, Points: 100, LeadID: &leadID},
			{ID: uuid.New(), ManagerID: managerA, ActionType: crm.ScoreActionFastResponse, Points: 10, LeadID: &leadID},
		}, nil)

		mine, err := svc.MyScores(ctx, identity.NewActor(managerA, identity.RoleManager))
		require.NoError(t, err)
		assert.Equal(t, int64(110), mine.TotalPoints)
		assert.Equal(t, int64(1), mine.SalesCount)
		assert.Len(t, mine.History, 2)
	})
}
