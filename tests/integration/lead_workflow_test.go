//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	appcrm "github.com/autodealer/backend/internal/application/crm"
	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type workflowFixture struct {
	db      *TestDB
	leads   *appcrm.LeadService
	reviews *appcrm.ReviewService
	stats   *appcrm.StatsService
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	db := tdb.DB
	leadRepo := persistence.NewGormLeadRepository(db)
	reviewRepo := persistence.NewGormReviewRepository(db)
	carRepo := persistence.NewGormCarRepository(db)
	profileRepo := persistence.NewGormProfileRepository(db)
	roleRepo := persistence.NewGormRoleRepository(db)
	scoreRepo := persistence.NewGormScoreRepository(db)
	txScope := persistence.NewGormTransactionScope(db)
	policy := crm.DefaultScorePolicy()

	return &workflowFixture{
		db: tdb,
		leads: appcrm.NewLeadService(leadRepo, reviewRepo, carRepo, profileRepo, roleRepo, txScope,
			appcrm.LeadServiceConfig{PublicBaseURL: "https://dealer.example", Policy: policy}, zap.NewNop()),
		reviews: appcrm.NewReviewService(leadRepo, reviewRepo, profileRepo, txScope, policy, zap.NewNop()),
		stats:   appcrm.NewStatsService(leadRepo, reviewRepo, scoreRepo, carRepo, profileRepo, roleRepo, zap.NewNop()),
	}
}

func (f *workflowFixture) scores(t *testing.T, managerID uuid.UUID) []crm.ManagerScore {
	t.Helper()
	scores, err := persistence.NewGormScoreRepository(f.db.DB).ListByManager(context.Background(), managerID)
	require.NoError(t, err)
	return scores
}

func TestLeadClaim_ConcurrentManagers(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	const managers = 8
	actors := make([]identity.Actor, managers)
	for i := range actors {
		id := f.db.CreateStaff(fmt.Sprintf("manager%d@dealer.example", i), fmt.Sprintf("Manager %d", i), identity.RoleManager)
		actors[i] = identity.NewActor(id, identity.RoleManager)
	}
	lead := f.db.CreateLead("Dana", "+77015550000", nil)

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]error, managers)
	)
	for i, actor := range actors {
		wg.Add(1)
		go func(i int, actor identity.Actor) {
			defer wg.Done()
			<-start
			_, results[i] = f.leads.ClaimLead(ctx, actor, lead.ID)
		}(i, actor)
	}
	close(start)
	wg.Wait()

	var winner uuid.UUID
	wins := 0
	for i, err := range results {
		if err == nil {
			wins++
			winner = actors[i].UserID
			continue
		}
		assert.True(t, errors.Is(err, crm.ErrLeadAlreadyClaimed), "unexpected error: %v", err)
	}
	require.Equal(t, 1, wins, "exactly one claim must win")

	stored, err := persistence.NewGormLeadRepository(f.db.DB).FindByID(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AssignedManagerID)
	assert.Equal(t, winner, *stored.AssignedManagerID)
	assert.Equal(t, crm.LeadStatusContacted, stored.Status)

	// Only the winner earns the fast response bonus
	winnerScores := f.scores(t, winner)
	require.Len(t, winnerScores, 1)
	assert.Equal(t, crm.ScoreActionFastResponse, winnerScores[0].ActionType)
	for _, actor := range actors {
		if actor.UserID != winner {
			assert.Empty(t, f.scores(t, actor.UserID))
		}
	}
}

func TestLeadWorkflow_SaleAndReviewAwards(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := context.Background()

	managerID := f.db.CreateStaff("marat@dealer.example", "Marat", identity.RoleManager)
	adminID := f.db.CreateStaff("admin@dealer.example", "Admin", identity.RoleAdmin)
	manager := identity.NewActor(managerID, identity.RoleManager)
	admin := identity.NewActor(adminID, identity.RoleAdmin)

	car := f.db.CreateCar("Kia", "K5", 14_500_000)
	lead := f.db.CreateLead("Dana", "+77015550000", &car.ID)

	_, err := f.leads.ClaimLead(ctx, manager, lead.ID)
	require.NoError(t, err)

	_, err = f.leads.ChangeStatus(ctx, manager, lead.ID, appcrm.ChangeStatusRequest{Status: string(crm.LeadStatusNegotiating)})
	require.NoError(t, err)
	won, err := f.leads.ChangeStatus(ctx, manager, lead.ID, appcrm.ChangeStatusRequest{Status: string(crm.LeadStatusClosedWon)})
	require.NoError(t, err)
	assert.Equal(t, string(crm.LeadStatusClosedWon), string(won.Status))

	// The admin flipping the lead away and back does not pay the sale twice
	_, err = f.leads.ChangeStatus(ctx, admin, lead.ID, appcrm.ChangeStatusRequest{Status: string(crm.LeadStatusNegotiating)})
	require.NoError(t, err)
	_, err = f.leads.ChangeStatus(ctx, admin, lead.ID, appcrm.ChangeStatusRequest{Status: string(crm.LeadStatusClosedWon)})
	require.NoError(t, err)

	review, err := f.reviews.SubmitReview(ctx, lead.TrackingToken, appcrm.SubmitReviewRequest{Rating: 5, Comment: "Great"})
	require.NoError(t, err)
	_, err = f.reviews.ApproveReview(ctx, admin, review.ID, true)
	require.NoError(t, err)
	_, err = f.reviews.ApproveReview(ctx, admin, review.ID, true)
	require.NoError(t, err)

	points := map[crm.ScoreAction]int{}
	for _, s := range f.scores(t, managerID) {
		points[s.ActionType] += s.Points
	}
	assert.Equal(t, map[crm.ScoreAction]int{
		crm.ScoreActionFastResponse: 10,
		crm.ScoreActionSale:         100,
		crm.ScoreActionReview:       20,
	}, points)

	board, err := f.stats.Leaderboard(ctx, manager)
	require.NoError(t, err)
	require.NotEmpty(t, board)
	assert.Equal(t, managerID, board[0].ManagerID)
	assert.Equal(t, int64(130), board[0].TotalPoints)
	assert.Equal(t, int64(1), board[0].SalesCount)
	assert.InDelta(t, 5.0, board[0].AvgRating, 0.001)
	assert.Equal(t, int64(1), board[0].LeadsCount)
	assert.Equal(t, int64(1), board[0].WonCount)
}
