package crm

import (
	"context"
	"fmt"
	"sort"

	"github.com/autodealer/backend/internal/domain/catalog"
	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StatsService computes dashboard aggregates. The store does the grouping;
// this service only shapes the numbers.
type StatsService struct {
	leadRepo    crm.LeadRepository
	reviewRepo  crm.ReviewRepository
	scoreRepo   crm.ScoreRepository
	carRepo     catalog.CarRepository
	profileRepo identity.ProfileRepository
	roleRepo    identity.RoleRepository
	logger      *zap.Logger
}

// NewStatsService creates a new StatsService
func NewStatsService(
	leadRepo crm.LeadRepository,
	reviewRepo crm.ReviewRepository,
	scoreRepo crm.ScoreRepository,
	carRepo catalog.CarRepository,
	profileRepo identity.ProfileRepository,
	roleRepo identity.RoleRepository,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		leadRepo:    leadRepo,
		reviewRepo:  reviewRepo,
		scoreRepo:   scoreRepo,
		carRepo:     carRepo,
		profileRepo: profileRepo,
		roleRepo:    roleRepo,
		logger:      logger,
	}
}

// LeadStats summarizes the lead pipeline (admin only)
func (s *StatsService) LeadStats(ctx context.Context, actor identity.Actor) (*LeadStatsResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	counts, err := s.leadRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	return BuildLeadStats(counts), nil
}

// BuildLeadStats derives the pipeline summary from per-status counts.
// Conversion rate is won/total as a percentage with two decimals, 0 for no leads.
func BuildLeadStats(counts map[crm.LeadStatus]int64) *LeadStatsResponse {
	stats := &LeadStatsResponse{
		New:  counts[crm.LeadStatusNew],
		Won:  counts[crm.LeadStatusClosedWon],
		Lost: counts[crm.LeadStatusClosedLost],
	}
	stats.InProgress = counts[crm.LeadStatusContacted] + counts[crm.LeadStatusNegotiating]
	stats.Closed = stats.Won + stats.Lost
	for _, n := range counts {
		stats.Total += n
	}
	if stats.Total > 0 {
		stats.ConversionRate = decimal.NewFromInt(stats.Won).
			Div(decimal.NewFromInt(stats.Total)).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			InexactFloat64()
	}
	return stats
}

// CarStats counts listings per status (admin only)
func (s *StatsService) CarStats(ctx context.Context, actor identity.Actor) (*CarStatsResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	counts, err := s.carRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count cars: %w", err)
	}
	stats := &CarStatsResponse{
		Available: counts[catalog.CarStatusAvailable],
		Reserved:  counts[catalog.CarStatusReserved],
		Sold:      counts[catalog.CarStatusSold],
	}
	stats.Total = stats.Available + stats.Reserved + stats.Sold
	return stats, nil
}

// Leaderboard ranks every manager by total points. Managers without any
// score are listed with zeros. Lead totals come from the leads themselves, so
// a manager who lost every deal still shows their workload.
func (s *StatsService) Leaderboard(ctx context.Context, actor identity.Actor) ([]LeaderboardEntry, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}

	totals, err := s.scoreRepo.TotalsByManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum scores: %w", err)
	}
	ratings, err := s.reviewRepo.RatingsByManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to average ratings: %w", err)
	}
	leadCounts, err := s.leadRepo.CountsByManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads per manager: %w", err)
	}
	managerIDs, err := s.roleRepo.UsersWithRole(ctx, identity.RoleManager)
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}

	entries := make(map[uuid.UUID]*LeaderboardEntry)
	ids := make([]uuid.UUID, 0, len(managerIDs)+len(totals))
	add := func(id uuid.UUID) *LeaderboardEntry {
		if e, ok := entries[id]; ok {
			return e
		}
		e := &LeaderboardEntry{ManagerID: id}
		entries[id] = e
		ids = append(ids, id)
		return e
	}
	for _, id := range managerIDs {
		add(id)
	}
	for _, t := range totals {
		e := add(t.ManagerID)
		e.TotalPoints = t.TotalPoints
		e.SalesCount = t.SalesCount
		e.ReviewsCount = t.ReviewsCount
	}
	for id, r := range ratings {
		if e, ok := entries[id]; ok {
			e.AvgRating = decimal.NewFromFloat(r.AverageScore).Round(2).InexactFloat64()
		}
	}
	for id, c := range leadCounts {
		if e, ok := entries[id]; ok {
			e.LeadsCount = c.Assigned
			e.WonCount = c.Won
		}
	}

	profiles, err := s.profileRepo.FindByUserIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to load manager profiles", zap.Error(err))
	}

	result := make([]LeaderboardEntry, 0, len(entries))
	for _, id := range ids {
		e := entries[id]
		if p, ok := profiles[id]; ok {
			e.FullName = p.FullName
		}
		result = append(result, *e)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].TotalPoints != result[j].TotalPoints {
			return result[i].TotalPoints > result[j].TotalPoints
		}
		return result[i].FullName < result[j].FullName
	})
	return result, nil
}

// MyScores returns the calling manager's score history and totals
func (s *StatsService) MyScores(ctx context.Context, actor identity.Actor) (*MyScoresResponse, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	scores, err := s.scoreRepo.ListByManager(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}

	resp := &MyScoresResponse{History: make([]ScoreResponse, 0, len(scores))}
	for i := range scores {
		sc := &scores[i]
		resp.TotalPoints += int64(sc.Points)
		switch sc.ActionType {
		case crm.ScoreActionSale:
			resp.SalesCount++
		case crm.ScoreActionReview:
			resp.ReviewsCount++
		}
		resp.History = append(resp.History, ToScoreResponse(sc))
	}
	return resp, nil
}
