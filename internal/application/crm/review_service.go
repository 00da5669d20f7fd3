package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewService handles customer reviews and the points they earn
type ReviewService struct {
	leadRepo       crm.LeadRepository
	reviewRepo     crm.ReviewRepository
	profileRepo    identity.ProfileRepository
	txScope        TransactionScope
	policy         crm.ScorePolicy
	eventPublisher shared.EventPublisher
	metrics        WorkflowMetrics
	logger         *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	leadRepo crm.LeadRepository,
	reviewRepo crm.ReviewRepository,
	profileRepo identity.ProfileRepository,
	txScope TransactionScope,
	policy crm.ScorePolicy,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		leadRepo:    leadRepo,
		reviewRepo:  reviewRepo,
		profileRepo: profileRepo,
		txScope:     txScope,
		policy:      policy,
		metrics:     noopMetrics{},
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReviewService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the workflow metrics recorder
func (s *ReviewService) SetMetrics(m WorkflowMetrics) {
	if m != nil {
		s.metrics = m
	}
}

func (s *ReviewService) leadByToken(ctx context.Context, token string) (*crm.Lead, error) {
	if !crm.IsWellFormedToken(token) {
		return nil, crm.ErrInvalidToken
	}
	lead, err := s.leadRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, crm.ErrInvalidToken
		}
		return nil, err
	}
	return lead, nil
}

// GetRateState tells the rating page whether the lead can be rated
func (s *ReviewService) GetRateState(ctx context.Context, token string) (*RateStateResponse, error) {
	lead, err := s.leadByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	exists, err := s.reviewRepo.ExistsForLead(ctx, lead.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check review: %w", err)
	}
	return &RateStateResponse{
		CustomerName:    lead.CustomerName,
		HasManager:      lead.IsAssigned(),
		AlreadyReviewed: exists,
	}, nil
}

// SubmitReview stores the customer's rating of their manager. The review
// stays hidden until an admin approves it.
func (s *ReviewService) SubmitReview(ctx context.Context, token string, req SubmitReviewRequest) (*ReviewResponse, error) {
	lead, err := s.leadByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	review, err := crm.NewReview(lead, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsForLead(ctx, lead.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check review: %w", err)
	}
	if exists {
		return nil, crm.ErrReviewAlreadyExists
	}

	// The unique index on lead_id settles races the check above cannot see
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.logger.Info("Review submitted",
		zap.String("review_id", review.ID.String()),
		zap.String("lead_id", lead.ID.String()),
		zap.Int("rating", review.Rating),
	)
	s.publishDomainEvents(ctx, review)

	resp := ToReviewResponse(review)
	return &resp, nil
}

// ApproveReview approves or rejects a review. Approval awards rating-proportional
// points in the same transaction; the award happens at most once per lead.
func (s *ReviewService) ApproveReview(ctx context.Context, actor identity.Actor, reviewID uuid.UUID, approve bool) (*ReviewResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var review *crm.Review
	var awardedPoints int
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		review, err = repos.ReviewRepo().FindByID(ctx, reviewID)
		if err != nil {
			return err
		}

		if !approve {
			review.Reject()
			return repos.ReviewRepo().Save(ctx, review)
		}

		if !review.Approve(actor.UserID) {
			return nil
		}
		if err := repos.ReviewRepo().Save(ctx, review); err != nil {
			return err
		}
		award := s.policy.ReviewAward(review)
		if award == nil {
			return nil
		}
		awarded, err := repos.ScoreRepo().Award(ctx, award)
		if err != nil {
			return fmt.Errorf("failed to award review points: %w", err)
		}
		if awarded {
			awardedPoints = award.Points
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Review moderated",
		zap.String("review_id", reviewID.String()),
		zap.Bool("approved", approve),
		zap.Int("points_awarded", awardedPoints),
	)
	if awardedPoints > 0 {
		s.metrics.RecordScoreAwarded(ctx, crm.ScoreActionReview, awardedPoints)
	}
	s.publishDomainEvents(ctx, review)

	resp := ToReviewResponse(review)
	return &resp, nil
}

// DeleteReview removes a review. Points already granted for it are kept.
func (s *ReviewService) DeleteReview(ctx context.Context, actor identity.Actor, reviewID uuid.UUID) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if _, err := s.reviewRepo.FindByID(ctx, reviewID); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}
	s.logger.Info("Review deleted",
		zap.String("review_id", reviewID.String()),
		zap.String("admin_id", actor.UserID.String()),
	)
	return nil
}

// ListPublicReviews returns approved reviews, newest first
func (s *ReviewService) ListPublicReviews(ctx context.Context, page, pageSize int) ([]PublicReviewResponse, int64, error) {
	approved := true
	filter := crm.ReviewFilter{
		Filter:   shared.Filter{Page: page, PageSize: pageSize}.Normalize(),
		Approved: &approved,
	}
	reviews, total, err := s.reviewRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	names := s.managerNames(ctx, reviews)
	result := make([]PublicReviewResponse, len(reviews))
	for i := range reviews {
		r := &reviews[i]
		result[i] = PublicReviewResponse{
			ID:           r.ID,
			Rating:       r.Rating,
			Comment:      r.Comment,
			CustomerName: r.CustomerName,
			ManagerName:  names[r.ManagerID],
			CreatedAt:    r.CreatedAt,
		}
	}
	return result, total, nil
}

// ListReviews is the admin moderation list
func (s *ReviewService) ListReviews(ctx context.Context, actor identity.Actor, filter ReviewListFilter) ([]ReviewResponse, int64, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, 0, err
	}
	reviews, total, err := s.reviewRepo.List(ctx, crm.ReviewFilter{
		Filter:    shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(),
		Approved:  filter.Approved,
		ManagerID: filter.ManagerID,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	names := s.managerNames(ctx, reviews)
	result := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		result[i] = ToReviewResponse(&reviews[i])
		result[i].ManagerName = names[reviews[i].ManagerID]
	}
	return result, total, nil
}

func (s *ReviewService) managerNames(ctx context.Context, reviews []crm.Review) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string)
	if len(reviews) == 0 {
		return names
	}
	ids := make([]uuid.UUID, 0, len(reviews))
	for i := range reviews {
		ids = append(ids, reviews[i].ManagerID)
	}
	profiles, err := s.profileRepo.FindByUserIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to load manager profiles", zap.Error(err))
		return names
	}
	for id, p := range profiles {
		names[id] = p.FullName
	}
	return names
}

func (s *ReviewService) publishDomainEvents(ctx context.Context, review *crm.Review) {
	if s.eventPublisher == nil || review == nil {
		return
	}
	events := review.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	review.ClearDomainEvents()
}
