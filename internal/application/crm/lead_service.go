package crm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/autodealer/backend/internal/domain/catalog"
	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadServiceConfig contains configuration for the lead service
type LeadServiceConfig struct {
	// PublicBaseURL is the website origin used to build status and rating links
	PublicBaseURL string
	Policy        crm.ScorePolicy
}

// LeadService handles lead intake, claiming and the status workflow
type LeadService struct {
	leadRepo       crm.LeadRepository
	reviewRepo     crm.ReviewRepository
	carRepo        catalog.CarRepository
	profileRepo    identity.ProfileRepository
	roleRepo       identity.RoleRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	metrics        WorkflowMetrics
	config         LeadServiceConfig
	logger         *zap.Logger
	now            func() time.Time
}

// NewLeadService creates a new LeadService
func NewLeadService(
	leadRepo crm.LeadRepository,
	reviewRepo crm.ReviewRepository,
	carRepo catalog.CarRepository,
	profileRepo identity.ProfileRepository,
	roleRepo identity.RoleRepository,
	txScope TransactionScope,
	config LeadServiceConfig,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:    leadRepo,
		reviewRepo:  reviewRepo,
		carRepo:     carRepo,
		profileRepo: profileRepo,
		roleRepo:    roleRepo,
		txScope:     txScope,
		metrics:     noopMetrics{},
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LeadService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the workflow metrics recorder
func (s *LeadService) SetMetrics(m WorkflowMetrics) {
	if m != nil {
		s.metrics = m
	}
}

// CreateLead records a new inquiry. An authenticated client is linked from the
// actor, never from the request body.
func (s *LeadService) CreateLead(ctx context.Context, actor identity.Actor, req CreateLeadRequest) (*CreateLeadResponse, error) {
	contact := crm.LeadContact{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Message:       req.Message,
		Source:        req.Source,
		CarID:         req.CarID,
	}
	if actor.IsClient() {
		clientID := actor.UserID
		contact.ClientUserID = &clientID
	}

	if req.CarID != nil {
		exists, err := s.carRepo.Exists(ctx, *req.CarID)
		if err != nil {
			return nil, fmt.Errorf("failed to check car: %w", err)
		}
		if !exists {
			return nil, shared.NewDomainError("INVALID_CAR", "Referenced car does not exist")
		}
	}

	token, err := crm.NewTrackingToken()
	if err != nil {
		return nil, err
	}
	lead, err := crm.NewLead(contact, token)
	if err != nil {
		return nil, err
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		s.logger.Error("Failed to create lead", zap.Error(err))
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.logger.Info("Lead created",
		zap.String("lead_id", lead.ID.String()),
		zap.String("source", lead.Source),
		zap.Bool("client_linked", lead.ClientUserID != nil),
	)
	s.metrics.RecordLeadCreated(ctx, lead.Source)
	s.publishDomainEvents(ctx, lead)

	return &CreateLeadResponse{
		ID:            lead.ID,
		Status:        lead.Status,
		TrackingToken: lead.TrackingToken,
		StatusURL:     s.publicLink("/lead-status", lead.TrackingToken),
		RateURL:       s.publicLink("/rate", lead.TrackingToken),
	}, nil
}

// ClaimLead makes the calling manager the lead's sole handler. Concurrent
// claims are decided by a conditional update; exactly one caller wins.
func (s *LeadService) ClaimLead(ctx context.Context, actor identity.Actor, leadID uuid.UUID) (*LeadResponse, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}

	var lead *crm.Lead
	var fast bool
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lead, err = repos.LeadRepo().FindByID(ctx, leadID)
		if err != nil {
			return err
		}
		claimedAt := s.now()
		if err := lead.Claim(actor.UserID, claimedAt); err != nil {
			return err
		}

		won, err := repos.LeadRepo().ClaimUnassigned(ctx, leadID, actor.UserID, claimedAt)
		if err != nil {
			return fmt.Errorf("failed to claim lead: %w", err)
		}
		if !won {
			return s.resolveLostClaim(ctx, repos.LeadRepo(), leadID)
		}

		if award := s.config.Policy.FastResponseAward(lead); award != nil {
			awarded, err := repos.ScoreRepo().Award(ctx, award)
			if err != nil {
				return fmt.Errorf("failed to award fast response: %w", err)
			}
			if awarded {
				fast = true
				s.metrics.RecordScoreAwarded(ctx, award.ActionType, award.Points)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, crm.ErrLeadAlreadyClaimed) {
			s.logger.Info("Lead claim lost",
				zap.String("lead_id", leadID.String()),
				zap.String("manager_id", actor.UserID.String()),
			)
		}
		return nil, err
	}

	s.logger.Info("Lead claimed",
		zap.String("lead_id", leadID.String()),
		zap.String("manager_id", actor.UserID.String()),
		zap.Bool("fast_response", fast),
	)
	s.metrics.RecordLeadClaimed(ctx, fast)
	s.publishDomainEvents(ctx, lead)

	resp := ToLeadResponse(lead)
	s.enrich(ctx, []*LeadResponse{&resp})
	return &resp, nil
}

// resolveLostClaim explains why the conditional update matched no row
func (s *LeadService) resolveLostClaim(ctx context.Context, repo crm.LeadRepository, leadID uuid.UUID) error {
	current, err := repo.FindByID(ctx, leadID)
	if err != nil {
		return err
	}
	if current.IsAssigned() {
		return crm.ErrLeadAlreadyClaimed
	}
	return crm.ErrLeadNotOpen
}

// ChangeStatus moves a lead through the workflow. Managers act only on their
// own leads and along permitted transitions; admins may set any status except new.
// Entering closed_won awards the sale score in the same transaction.
func (s *LeadService) ChangeStatus(ctx context.Context, actor identity.Actor, leadID uuid.UUID, req ChangeStatusRequest) (*LeadResponse, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	to := crm.LeadStatus(req.Status)

	var lead *crm.Lead
	var change crm.StatusChange
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lead, err = repos.LeadRepo().FindByID(ctx, leadID)
		if err != nil {
			return err
		}
		if req.Version > 0 && req.Version != lead.Version {
			return shared.ErrConcurrencyConflict
		}

		if actor.IsAdmin() {
			change, err = lead.OverrideStatus(actor.UserID, to)
		} else {
			change, err = lead.AdvanceStatus(actor.UserID, to)
		}
		if err != nil {
			return err
		}
		if change.From == change.To {
			return nil
		}
		if err := repos.LeadRepo().SaveWithLock(ctx, lead); err != nil {
			return err
		}
		return s.awardSale(ctx, repos, lead, change.Won())
	})
	if err != nil {
		return nil, err
	}

	if change.From != change.To {
		s.logger.Info("Lead status changed",
			zap.String("lead_id", leadID.String()),
			zap.String("from", string(change.From)),
			zap.String("to", string(change.To)),
			zap.String("actor_id", actor.UserID.String()),
		)
		if change.To.IsTerminal() {
			s.metrics.RecordLeadClosed(ctx, change.To)
		}
	}
	s.publishDomainEvents(ctx, lead)

	resp := ToLeadResponse(lead)
	s.enrich(ctx, []*LeadResponse{&resp})
	return &resp, nil
}

// AdminUpdateLead reassigns a lead and/or overrides its status
func (s *LeadService) AdminUpdateLead(ctx context.Context, actor identity.Actor, leadID uuid.UUID, req AdminUpdateLeadRequest) (*LeadResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if req.Status == nil && req.AssignedManagerID == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Nothing to update")
	}

	if req.AssignedManagerID != nil {
		roles, err := s.roleRepo.RolesOf(ctx, *req.AssignedManagerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load assignee roles: %w", err)
		}
		if !identity.NewActor(*req.AssignedManagerID, roles...).IsManager() {
			return nil, shared.NewDomainError("INVALID_ASSIGNEE", "Assignee must hold the manager role")
		}
	}

	var lead *crm.Lead
	var change crm.StatusChange
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lead, err = repos.LeadRepo().FindByID(ctx, leadID)
		if err != nil {
			return err
		}
		startVersion := lead.Version
		wasAssigned := lead.IsAssigned()

		if req.AssignedManagerID != nil {
			if err := lead.Reassign(actor.UserID, *req.AssignedManagerID, s.now()); err != nil {
				return err
			}
		}
		if req.Status != nil {
			change, err = lead.OverrideStatus(actor.UserID, crm.LeadStatus(*req.Status))
			if err != nil {
				return err
			}
		}
		if lead.Version == startVersion {
			return nil
		}
		// SaveWithLock expects exactly one bump
		lead.Version = startVersion + 1
		if err := repos.LeadRepo().SaveWithLock(ctx, lead); err != nil {
			return err
		}
		// A lead won while unassigned pays its sale to the first assignee.
		wonUnassigned := !wasAssigned && lead.IsAssigned() && lead.Status == crm.LeadStatusClosedWon
		return s.awardSale(ctx, repos, lead, change.Won() || wonUnassigned)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lead updated by admin",
		zap.String("lead_id", leadID.String()),
		zap.String("admin_id", actor.UserID.String()),
	)
	if change.From != change.To && change.To.IsTerminal() {
		s.metrics.RecordLeadClosed(ctx, change.To)
	}
	s.publishDomainEvents(ctx, lead)

	resp := ToLeadResponse(lead)
	s.enrich(ctx, []*LeadResponse{&resp})
	return &resp, nil
}

func (s *LeadService) awardSale(ctx context.Context, repos TransactionalRepositories, lead *crm.Lead, won bool) error {
	if !won {
		return nil
	}
	award := s.config.Policy.SaleAward(lead)
	if award == nil {
		return nil
	}
	awarded, err := repos.ScoreRepo().Award(ctx, award)
	if err != nil {
		return fmt.Errorf("failed to award sale: %w", err)
	}
	if awarded {
		s.metrics.RecordScoreAwarded(ctx, award.ActionType, award.Points)
	}
	return nil
}

// ListLeads returns leads visible to the actor: everything for admins,
// unassigned plus own leads for managers.
func (s *LeadService) ListLeads(ctx context.Context, actor identity.Actor, filter LeadListFilter) ([]LeadResponse, int64, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, 0, err
	}

	domainFilter := crm.LeadFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		},
		Status:            crm.LeadStatus(filter.Status),
		AssignedManagerID: filter.AssignedManagerID,
		Unassigned:        filter.Unassigned,
	}
	domainFilter.Filter = domainFilter.Filter.Normalize()
	if !actor.IsAdmin() {
		self := actor.UserID
		domainFilter.VisibleToManagerID = &self
	}

	leads, total, err := s.leadRepo.List(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}

	result := make([]LeadResponse, len(leads))
	ptrs := make([]*LeadResponse, len(leads))
	for i := range leads {
		result[i] = ToLeadResponse(&leads[i])
		ptrs[i] = &result[i]
	}
	s.enrich(ctx, ptrs)
	return result, total, nil
}

// GetLead returns one lead under the same visibility rule as ListLeads.
// Leads the actor may not see are reported as not found.
func (s *LeadService) GetLead(ctx context.Context, actor identity.Actor, leadID uuid.UUID) (*LeadResponse, error) {
	if err := actor.RequireStaff(); err != nil {
		return nil, err
	}
	lead, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, lead) {
		return nil, shared.ErrNotFound
	}

	resp := ToLeadResponse(lead)
	s.enrich(ctx, []*LeadResponse{&resp})

	review, err := s.reviewRepo.FindByLeadID(ctx, lead.ID)
	switch {
	case err == nil:
		resp.Review = &ReviewSummary{ID: review.ID, Rating: review.Rating, Comment: review.Comment, IsApproved: review.IsApproved}
	case !errors.Is(err, shared.ErrNotFound):
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return &resp, nil
}

func canView(actor identity.Actor, lead *crm.Lead) bool {
	if actor.IsAdmin() {
		return true
	}
	return !lead.IsAssigned() || lead.IsAssignedTo(actor.UserID)
}

// ListClientLeads returns the calling client's own leads with manager contact and review state
func (s *LeadService) ListClientLeads(ctx context.Context, actor identity.Actor) ([]ClientLeadResponse, error) {
	if err := actor.RequireAuthenticated(); err != nil {
		return nil, err
	}
	leads, err := s.leadRepo.ListByClient(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client leads: %w", err)
	}

	cars, managers := s.loadRelations(ctx, leads)
	result := make([]ClientLeadResponse, 0, len(leads))
	for i := range leads {
		l := &leads[i]
		item := ClientLeadResponse{
			ID:            l.ID,
			Status:        l.Status,
			Message:       l.Message,
			TrackingToken: l.TrackingToken,
			CreatedAt:     l.CreatedAt,
		}
		if l.CarID != nil {
			item.Car = ToCarSummary(cars[*l.CarID])
		}
		if l.AssignedManagerID != nil {
			item.Manager = ToManagerContact(managers[*l.AssignedManagerID])
		}
		review, err := s.reviewRepo.FindByLeadID(ctx, l.ID)
		switch {
		case err == nil:
			item.Review = &PublicReviewOfLead{ID: review.ID, Rating: review.Rating, Comment: review.Comment}
		case !errors.Is(err, shared.ErrNotFound):
			return nil, fmt.Errorf("failed to load review: %w", err)
		}
		item.CanReview = l.IsAssigned() && item.Review == nil
		result = append(result, item)
	}
	return result, nil
}

// GetLeadStatus resolves a tracking token to the public status view
func (s *LeadService) GetLeadStatus(ctx context.Context, token string) (*LeadStatusResponse, error) {
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

	resp := &LeadStatusResponse{
		ID:           lead.ID,
		CustomerName: lead.CustomerName,
		Status:       lead.Status,
		CreatedAt:    lead.CreatedAt,
	}
	cars, managers := s.loadRelations(ctx, []crm.Lead{*lead})
	if lead.CarID != nil {
		resp.Car = ToCarSummary(cars[*lead.CarID])
	}
	if lead.AssignedManagerID != nil {
		resp.Manager = ToManagerContact(managers[*lead.AssignedManagerID])
	}

	review, err := s.reviewRepo.FindByLeadID(ctx, lead.ID)
	switch {
	case err == nil:
		resp.Review = &PublicReviewOfLead{ID: review.ID, Rating: review.Rating, Comment: review.Comment}
	case !errors.Is(err, shared.ErrNotFound):
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return resp, nil
}

// enrich attaches car summaries and manager contacts. Lookup failures are
// logged and leave the fields empty.
func (s *LeadService) enrich(ctx context.Context, items []*LeadResponse) {
	leads := make([]crm.Lead, 0, len(items))
	for _, it := range items {
		leads = append(leads, crm.Lead{CarID: it.CarID, AssignedManagerID: it.AssignedManagerID})
	}
	cars, managers := s.loadRelations(ctx, leads)
	for _, it := range items {
		if it.CarID != nil {
			it.Car = ToCarSummary(cars[*it.CarID])
		}
		if it.AssignedManagerID != nil {
			it.Manager = ToManagerContact(managers[*it.AssignedManagerID])
		}
	}
}

func (s *LeadService) loadRelations(ctx context.Context, leads []crm.Lead) (map[uuid.UUID]*catalog.Car, map[uuid.UUID]*identity.Profile) {
	carIDs := make([]uuid.UUID, 0)
	managerIDs := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]struct{})
	for i := range leads {
		if id := leads[i].CarID; id != nil {
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				carIDs = append(carIDs, *id)
			}
		}
		if id := leads[i].AssignedManagerID; id != nil {
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				managerIDs = append(managerIDs, *id)
			}
		}
	}

	cars := make(map[uuid.UUID]*catalog.Car)
	if len(carIDs) > 0 {
		list, err := s.carRepo.FindByIDs(ctx, carIDs)
		if err != nil {
			s.logger.Warn("Failed to load cars for leads", zap.Error(err))
		}
		for i := range list {
			cars[list[i].ID] = &list[i]
		}
	}

	managers := make(map[uuid.UUID]*identity.Profile)
	if len(managerIDs) > 0 {
		profiles, err := s.profileRepo.FindByUserIDs(ctx, managerIDs)
		if err != nil {
			s.logger.Warn("Failed to load manager profiles", zap.Error(err))
		} else {
			managers = profiles
		}
	}
	return cars, managers
}

func (s *LeadService) publicLink(path, token string) string {
	base := strings.TrimRight(s.config.PublicBaseURL, "/")
	return base + path + "?token=" + url.QueryEscape(token)
}

// publishDomainEvents publishes all pending events from the lead
func (s *LeadService) publishDomainEvents(ctx context.Context, lead *crm.Lead) {
	if s.eventPublisher == nil || lead == nil {
		return
	}
	events := lead.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Publish errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
	lead.ClearDomainEvents()
}
