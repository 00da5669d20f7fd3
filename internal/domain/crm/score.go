package crm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScoreAction identifies why points were awarded
type ScoreAction string

const (
	ScoreActionSale         ScoreAction = "sale"
	ScoreActionReview       ScoreAction = "review"
	ScoreActionFastResponse ScoreAction = "fast_response"
)

// ManagerScore is an immutable point-earning record. At most one record per
// (lead, action) exists; the store enforces it with a unique index.
type ManagerScore struct {
	ID          uuid.UUID
	ManagerID   uuid.UUID
	ActionType  ScoreAction
	Points      int
	LeadID      *uuid.UUID
	Description string
	CreatedAt   time.Time
}

// ScorePolicy holds the point values of the manager incentive scheme
type ScorePolicy struct {
	SalePoints         int
	PointsPerStar      int
	FastResponsePoints int
	FastResponseWindow time.Duration
}

// DefaultScorePolicy: 100 per sale, 4 per review star (20 for five stars),
// 10 for claiming within 15 minutes.
func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{
		SalePoints:         100,
		PointsPerStar:      4,
		FastResponsePoints: 10,
		FastResponseWindow: 15 * time.Minute,
	}
}

// SaleAward returns the score for closing a lead as won, or nil when nobody is assigned
func (p ScorePolicy) SaleAward(l *Lead) *ManagerScore {
	if !l.IsAssigned() || p.SalePoints <= 0 {
		return nil
	}
	return newScore(*l.AssignedManagerID, ScoreActionSale, p.SalePoints, l.ID,
		fmt.Sprintf("Sale closed for %s", l.CustomerName))
}

// ReviewAward returns the score for an approved review
func (p ScorePolicy) ReviewAward(r *Review) *ManagerScore {
	points := r.Rating * p.PointsPerStar
	if points <= 0 {
		return nil
	}
	return newScore(r.ManagerID, ScoreActionReview, points, r.LeadID,
		fmt.Sprintf("%d-star review approved", r.Rating))
}

// FastResponseAward returns a bonus when the claim happened inside the window
func (p ScorePolicy) FastResponseAward(l *Lead) *ManagerScore {
	if !l.IsAssigned() || l.ClaimedAt == nil || p.FastResponsePoints <= 0 {
		return nil
	}
	if l.ClaimedAt.Sub(l.CreatedAt) > p.FastResponseWindow {
		return nil
	}
	return newScore(*l.AssignedManagerID, ScoreActionFastResponse, p.FastResponsePoints, l.ID,
		"Lead claimed quickly")
}

func newScore(managerID uuid.UUID, action ScoreAction, points int, leadID uuid.UUID, description string) *ManagerScore {
	return &ManagerScore{
		ID:          uuid.New(),
		ManagerID:   managerID,
		ActionType:  action,
		Points:      points,
		LeadID:      &leadID,
		Description: description,
		CreatedAt:   time.Now(),
	}
}
