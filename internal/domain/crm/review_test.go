package crm

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	manager := uuid.New()

	t.Run("requires an assigned manager", func(t *testing.T) {
		_, err := NewReview(newTestLead(t), 5, "great")
		assert.True(t, errors.Is(err, ErrLeadNotAssigned))
	})

	t.Run("rating bounds", func(t *testing.T) {
		lead := claimedLead(t, manager)
		for _, rating := range []int{0, 6, -1} {
			_, err := NewReview(lead, rating, "")
			assert.Error(t, err, "rating %d", rating)
		}
	})

	t.Run("unapproved by default", func(t *testing.T) {
		lead := claimedLead(t, manager)
		r, err := NewReview(lead, 4, "  fast and polite ")
		require.NoError(t, err)
		assert.False(t, r.IsApproved)
		assert.Equal(t, manager, r.ManagerID)
		assert.Equal(t, lead.ID, r.LeadID)
		assert.Equal(t, "fast and polite", r.Comment)
		assert.Equal(t, "Dana", r.CustomerName)
	})
}

func TestReview_ApproveReject(t *testing.T) {
	lead := claimedLead(t, uuid.New())
	r, err := NewReview(lead, 5, "")
	require.NoError(t, err)
	admin := uuid.New()

	assert.True(t, r.Approve(admin))
	assert.False(t, r.Approve(admin), "second approval is a no-op")
	assert.Equal(t, &admin, r.ApprovedBy)

	r.Reject()
	assert.False(t, r.IsApproved)
	assert.Nil(t, r.ApprovedAt)
	assert.True(t, r.Approve(admin))
}

func TestScorePolicy(t *testing.T) {
	policy := DefaultScorePolicy()
	manager := uuid.New()

	t.Run("sale award goes to the assignee", func(t *testing.T) {
		lead := claimedLead(t, manager)
		s := policy.SaleAward(lead)
		require.NotNil(t, s)
		assert.Equal(t, manager, s.ManagerID)
		assert.Equal(t, 100, s.Points)
		assert.Equal(t, ScoreActionSale, s.ActionType)
		assert.Equal(t, lead.ID, *s.LeadID)
	})

	t.Run("no sale award without manager", func(t *testing.T) {
		assert.Nil(t, policy.SaleAward(newTestLead(t)))
	})

	t.Run("review award is proportional to stars", func(t *testing.T) {
		lead := claimedLead(t, manager)
		r, err := NewReview(lead, 5, "")
		require.NoError(t, err)
		s := policy.ReviewAward(r)
		require.NotNil(t, s)
		assert.Equal(t, 20, s.Points)

		r.Rating = 2
		assert.Equal(t, 8, policy.ReviewAward(r).Points)
	})

	t.Run("fast response inside window only", func(t *testing.T) {
		lead := newTestLead(t)
		require.NoError(t, lead.Claim(manager, lead.CreatedAt.Add(5*time.Minute)))
		require.NotNil(t, policy.FastResponseAward(lead))

		slow := newTestLead(t)
		require.NoError(t, slow.Claim(manager, slow.CreatedAt.Add(2*time.Hour)))
		assert.Nil(t, policy.FastResponseAward(slow))
	})
}
