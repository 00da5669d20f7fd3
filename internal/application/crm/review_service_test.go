package crm

import (
	"context"
	"errors"
	"testing"

	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reviewServiceFixture struct {
	service     *ReviewService
	leadRepo    *MockLeadRepository
	reviewRepo  *MockReviewRepository
	scoreRepo   *MockScoreRepository
	profileRepo *MockProfileRepository
	publisher   *MockEventPublisher
}

func newReviewServiceFixture() *reviewServiceFixture {
	f := &reviewServiceFixture{
		leadRepo:    new(MockLeadRepository),
		reviewRepo:  new(MockReviewRepository),
		scoreRepo:   new(MockScoreRepository),
		profileRepo: new(MockProfileRepository),
		publisher:   &MockEventPublisher{},
	}
	f.service = NewReviewService(
		f.leadRepo, f.reviewRepo, f.profileRepo,
		NewNoOpTransactionScope(f.leadRepo, f.reviewRepo, f.scoreRepo),
		crm.DefaultScorePolicy(),
		zap.NewNop(),
	)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func TestReviewService_SubmitReview(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an unapproved review", func(t *testing.T) {
		f := newReviewServiceFixture()
		managerID := uuid.New()
		lead := newClaimedLead(t, managerID)
		f.leadRepo.On("FindByToken", ctx, lead.TrackingToken).Return(lead, nil)
		f.reviewRepo.On("ExistsForLead", ctx, lead.ID).Return(false, nil)
		f.reviewRepo.On("Create", ctx, mock.AnythingOfType("*crm.Review")).Return(nil)

		resp, err := f.service.SubmitReview(ctx, lead.TrackingToken, SubmitReviewRequest{Rating: 4, Comment: "Helpful"})
		require.NoError(t, err)
		assert.False(t, resp.IsApproved)
		assert.Equal(t, managerID, resp.ManagerID)
		assert.Equal(t, "Aigerim", resp.CustomerName)
		assert.Len(t, f.publisher.GetEventsByType(crm.EventTypeReviewSubmitted), 1)
	})

	t.Run("unassigned lead cannot be reviewed", func(t *testing.T) {
		f := newReviewServiceFixture()
		lead := newOpenLead(t)
		f.leadRepo.On("FindByToken", ctx, lead.TrackingToken).Return(lead, nil)

		_, err := f.service.SubmitReview(ctx, lead.TrackingToken, SubmitReviewRequest{Rating: 5})
		assert.True(t, errors.Is(err, crm.ErrLeadNotAssigned))
		f.reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("second review is a conflict", func(t *testing.T) {
		f := newReviewServiceFixture()
		lead := newClaimedLead(t, uuid.New())
		f.leadRepo.On("FindByToken", ctx, lead.TrackingToken).Return(lead, nil)
		f.reviewRepo.On("ExistsForLead", ctx, lead.ID).Return(true, nil)

		_, err := f.service.SubmitReview(ctx, lead.TrackingToken, SubmitReviewRequest{Rating: 5})
		assert.True(t, errors.Is(err, crm.ErrReviewAlreadyExists))
		f.reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique violation from a race is a conflict too", func(t *testing.T) {
		f := newReviewServiceFixture()
		lead := newClaimedLead(t, uuid.New())
		f.leadRepo.On("FindByToken", ctx, lead.TrackingToken).Return(lead, nil)
		f.reviewRepo.On("ExistsForLead", ctx, lead.ID).Return(false, nil)
		f.reviewRepo.On("Create", ctx, mock.Anything).Return(crm.ErrReviewAlreadyExists)

		_, err := f.service.SubmitReview(ctx, lead.TrackingToken, SubmitReviewRequest{Rating: 5})
		assert.True(t, errors.Is(err, crm.ErrReviewAlreadyExists))
	})

	t.Run("rating out of range", func(t *testing.T) {
		f := newReviewServiceFixture()
		lead := newClaimedLead(t, uuid.New())
		f.leadRepo.On("FindByToken", ctx, lead.TrackingToken).Return(lead, nil)

		_, err := f.service.SubmitReview(ctx, lead.TrackingToken, SubmitReviewRequest{Rating: 6})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_RATING", de.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		f := newReviewServiceFixture()
		_, err := f.service.SubmitReview(ctx, "nope", SubmitReviewRequest{Rating: 5})
		assert.True(t, errors.Is(err, crm.ErrInvalidToken))
	})
}

func TestReviewService_GetRateState(t *testing.T) {
	ctx := context.Background()
	f := newReviewServiceFixture()
	lead := newClaimedLead(t, uuid.New())
	f.leadRepo.On("FindByToken", ctx, lead.TrackingToken).Return(lead, nil)
	f.reviewRepo.On("ExistsForLead", ctx, lead.ID).Return(true, nil)

	state, err := f.service.GetRateState(ctx, lead.TrackingToken)
	require.NoError(t, err)
	assert.True(t, state.HasManager)
	assert.True(t, state.AlreadyReviewed)
	assert.Equal(t, "Aigerim", state.CustomerName)
}

func TestReviewService_ApproveReview(t *testing.T) {
	ctx := context.Background()
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)

	newPendingReview := func(t *testing.T, rating int) *crm.Review {
		r, err := crm.NewReview(newClaimedLead(t, uuid.New()), rating, "")
		require.NoError(t, err)
		r.ClearDomainEvents()
		return r
	}

	t.Run("approval awards four points per star", func(t *testing.T) {
		f := newReviewServiceFixture()
		review := newPendingReview(t, 5)
		f.reviewRepo.On("FindByID", ctx, review.ID).Return(review, nil)
		f.reviewRepo.On("Save", ctx, review).Return(nil)
		f.scoreRepo.On("Award", ctx, mock.MatchedBy(func(s *crm.ManagerScore) bool {
			return s.ActionType == crm.ScoreActionReview && s.Points == 20 && s.ManagerID == review.ManagerID
		})).Return(true, nil)

		resp, err := f.service.ApproveReview(ctx, admin, review.ID, true)
		require.NoError(t, err)
		assert.True(t, resp.IsApproved)
		f.scoreRepo.AssertExpectations(t)
		assert.Len(t, f.publisher.GetEventsByType(crm.EventTypeReviewApproved), 1)
	})

	t.Run("approving twice awards once", func(t *testing.T) {
		f := newReviewServiceFixture()
		review := newPendingReview(t, 3)
		review.Approve(uuid.New())
		f.reviewRepo.On("FindByID", ctx, review.ID).Return(review, nil)

		_, err := f.service.ApproveReview(ctx, admin, review.ID, true)
		require.NoError(t, err)
		f.scoreRepo.AssertNotCalled(t, "Award", mock.Anything, mock.Anything)
		f.reviewRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejection never awards", func(t *testing.T) {
		f := newReviewServiceFixture()
		review := newPendingReview(t, 5)
		f.reviewRepo.On("FindByID", ctx, review.ID).Return(review, nil)
		f.reviewRepo.On("Save", ctx, review).Return(nil)

		resp, err := f.service.ApproveReview(ctx, admin, review.ID, false)
		require.NoError(t, err)
		assert.False(t, resp.IsApproved)
		f.scoreRepo.AssertNotCalled(t, "Award", mock.Anything, mock.Anything)
	})

	t.Run("managers cannot moderate", func(t *testing.T) {
		f := newReviewServiceFixture()
		_, err := f.service.ApproveReview(ctx, identity.NewActor(uuid.New(), identity.RoleManager), uuid.New(), true)
		assert.True(t, errors.Is(err, shared.ErrForbidden))
		f.reviewRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestReviewService_DeleteReview(t *testing.T) {
	ctx := context.Background()
	admin := identity.NewActor(uuid.New(), identity.RoleAdmin)

	t.Run("delete keeps points", func(t *testing.T) {
		f := newReviewServiceFixture()
		r, err := crm.NewReview(newClaimedLead(t, uuid.New()), 5, "")
		require.NoError(t, err)
		f.reviewRepo.On("FindByID", ctx, r.ID).Return(r, nil)
		f.reviewRepo.On("Delete", ctx, r.ID).Return(nil)

		require.NoError(t, f.service.DeleteReview(ctx, admin, r.ID))
		assert.Empty(t, f.scoreRepo.Calls)
	})

	t.Run("missing review", func(t *testing.T) {
		f := newReviewServiceFixture()
		id := uuid.New()
		f.reviewRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		err := f.service.DeleteReview(ctx, admin, id)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestReviewService_ListPublicReviews(t *testing.T) {
	ctx := context.Background()
	f := newReviewServiceFixture()
	managerID := uuid.New()
	r, err := crm.NewReview(newClaimedLead(t, managerID), 5, "Top")
	require.NoError(t, err)
	r.Approve(uuid.New())

	f.reviewRepo.On("List", ctx, mock.MatchedBy(func(filter crm.ReviewFilter) bool {
		return filter.Approved != nil && *filter.Approved
	})).Return([]crm.Review{*r}, int64(1), nil)
	f.profileRepo.On("FindByUserIDs", ctx, []uuid.UUID{managerID}).Return(map[uuid.UUID]*identity.Profile{
		managerID: {UserID: managerID, FullName: "Yerlan B."},
	}, nil)

	reviews, total, err := f.service.ListPublicReviews(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Yerlan B.", reviews[0].ManagerName)
}
