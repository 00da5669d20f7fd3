package crm

import (
	"time"

	"github.com/autodealer/backend/internal/domain/catalog"
	"github.com/autodealer/backend/internal/domain/crm"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLeadRequest is the public inquiry form
type CreateLeadRequest struct {
	CustomerName  string     `json:"customer_name" binding:"required,max=100"`
	CustomerPhone string     `json:"customer_phone" binding:"required,min=6,max=20"`
	CustomerEmail string     `json:"customer_email" binding:"omitempty,email,max=200"`
	Message       string     `json:"message" binding:"max=2000"`
	CarID         *uuid.UUID `json:"car_id"`
	Source        string     `json:"source" binding:"max=50"`
}

// CreateLeadResponse is returned to whoever submitted the form.
// The token is the only way an anonymous customer can reach the lead again.
type CreateLeadResponse struct {
	ID            uuid.UUID      `json:"id"`
	Status        crm.LeadStatus `json:"status"`
	TrackingToken string         `json:"tracking_token"`
	StatusURL     string         `json:"status_url"`
	RateURL       string         `json:"rate_url"`
}

// ChangeStatusRequest moves a lead through the workflow
type ChangeStatusRequest struct {
	Status  string `json:"status" binding:"required,oneof=new contacted negotiating closed_won closed_lost"`
	Version int    `json:"version"`
}

// AdminUpdateLeadRequest is the admin override: new status, new assignee, or both
type AdminUpdateLeadRequest struct {
	Status            *string    `json:"status" binding:"omitempty,oneof=new contacted negotiating closed_won closed_lost"`
	AssignedManagerID *uuid.UUID `json:"assigned_manager_id"`
}

// LeadListFilter represents filter options for the staff lead list
type LeadListFilter struct {
	Search            string     `form:"search"`
	Status            string     `form:"status" binding:"omitempty,oneof=new contacted negotiating closed_won closed_lost"`
	AssignedManagerID *uuid.UUID `form:"assigned_manager_id"`
	Unassigned        bool       `form:"unassigned"`
	Page              int        `form:"page"`
	PageSize          int        `form:"page_size" binding:"omitempty,max=100"`
	OrderBy           string     `form:"order_by"`
	OrderDir          string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CarSummary is the short car reference attached to leads
type CarSummary struct {
	ID          uuid.UUID       `json:"id"`
	Make        string          `json:"make"`
	Model       string          `json:"model"`
	Year        int             `json:"year"`
	PublicPrice decimal.Decimal `json:"public_price"`
	Image       string          `json:"image,omitempty"`
}

// ManagerContact is what customers see of their manager
type ManagerContact struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
}

// LeadResponse is the staff view of a lead
type LeadResponse struct {
	ID                uuid.UUID       `json:"id"`
	CustomerName      string          `json:"customer_name"`
	CustomerPhone     string          `json:"customer_phone"`
	CustomerEmail     string          `json:"customer_email,omitempty"`
	Message           string          `json:"message,omitempty"`
	Source            string          `json:"source"`
	Status            crm.LeadStatus  `json:"status"`
	CarID             *uuid.UUID      `json:"car_id,omitempty"`
	Car               *CarSummary     `json:"car,omitempty"`
	ClientUserID      *uuid.UUID      `json:"client_user_id,omitempty"`
	AssignedManagerID *uuid.UUID      `json:"assigned_manager_id,omitempty"`
	Manager           *ManagerContact `json:"manager,omitempty"`
	Review            *ReviewSummary  `json:"review,omitempty"`
	ClaimedAt         *time.Time      `json:"claimed_at,omitempty"`
	ClosedAt          *time.Time      `json:"closed_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ReviewSummary is the review state attached to a lead
type ReviewSummary struct {
	ID         uuid.UUID `json:"id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	IsApproved bool      `json:"is_approved"`
}

// LeadStatusResponse is the public view behind /lead-status. It must never
// carry contact details, internal ids or the assignee's account id.
type LeadStatusResponse struct {
	ID           uuid.UUID           `json:"id"`
	CustomerName string              `json:"customer_name"`
	Status       crm.LeadStatus      `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	Car          *CarSummary         `json:"car"`
	Manager      *ManagerContact     `json:"manager"`
	Review       *PublicReviewOfLead `json:"review"`
}

// PublicReviewOfLead is the customer's own review as shown on the status page
type PublicReviewOfLead struct {
	ID      uuid.UUID `json:"id"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment,omitempty"`
}

// ClientLeadResponse is one row of the client dashboard
type ClientLeadResponse struct {
	ID            uuid.UUID           `json:"id"`
	Status        crm.LeadStatus      `json:"status"`
	Message       string              `json:"message,omitempty"`
	TrackingToken string              `json:"tracking_token"`
	Car           *CarSummary         `json:"car,omitempty"`
	Manager       *ManagerContact     `json:"manager,omitempty"`
	Review        *PublicReviewOfLead `json:"review,omitempty"`
	CanReview     bool                `json:"can_review"`
	CreatedAt     time.Time           `json:"created_at"`
}

// SubmitReviewRequest is posted by the customer through the rating link
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// RateStateResponse tells the rating page what to render
type RateStateResponse struct {
	CustomerName    string `json:"customer_name"`
	HasManager      bool   `json:"has_manager"`
	AlreadyReviewed bool   `json:"already_reviewed"`
}

// ApproveReviewRequest approves or rejects a review
type ApproveReviewRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// ReviewListFilter represents filter options for the admin review list
type ReviewListFilter struct {
	Approved  *bool      `form:"approved"`
	ManagerID *uuid.UUID `form:"manager_id"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size" binding:"omitempty,max=100"`
}

// ReviewResponse is the admin view of a review
type ReviewResponse struct {
	ID           uuid.UUID  `json:"id"`
	LeadID       uuid.UUID  `json:"lead_id"`
	ManagerID    uuid.UUID  `json:"manager_id"`
	ManagerName  string     `json:"manager_name,omitempty"`
	Rating       int        `json:"rating"`
	Comment      string     `json:"comment,omitempty"`
	CustomerName string     `json:"customer_name"`
	IsApproved   bool       `json:"is_approved"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PublicReviewResponse is an approved review as shown on the website
type PublicReviewResponse struct {
	ID           uuid.UUID `json:"id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CustomerName string    `json:"customer_name"`
	ManagerName  string    `json:"manager_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LeadStatsResponse summarizes the pipeline
type LeadStatsResponse struct {
	Total          int64   `json:"total"`
	New            int64   `json:"new"`
	InProgress     int64   `json:"in_progress"`
	Closed         int64   `json:"closed"`
	Won            int64   `json:"won"`
	Lost           int64   `json:"lost"`
	ConversionRate float64 `json:"conversion_rate"`
}

// CarStatsResponse counts listings per status
type CarStatsResponse struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Reserved  int64 `json:"reserved"`
	Sold      int64 `json:"sold"`
}

// LeaderboardEntry is one manager's standing
type LeaderboardEntry struct {
	ManagerID    uuid.UUID `json:"manager_id"`
	FullName     string    `json:"full_name"`
	TotalPoints  int64     `json:"total_points"`
	SalesCount   int64     `json:"sales_count"`
	ReviewsCount int64     `json:"reviews_count"`
	AvgRating    float64   `json:"avg_rating"`
	LeadsCount   int64     `json:"leads_count"`
	WonCount     int64     `json:"won_count"`
}

// ScoreResponse is one score history record
type ScoreResponse struct {
	ID          uuid.UUID       `json:"id"`
	ActionType  crm.ScoreAction `json:"action_type"`
	Points      int             `json:"points"`
	LeadID      *uuid.UUID      `json:"lead_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MyScoresResponse is the calling manager's history and totals
type MyScoresResponse struct {
	TotalPoints  int64           `json:"total_points"`
	SalesCount   int64           `json:"sales_count"`
	ReviewsCount int64           `json:"reviews_count"`
	History      []ScoreResponse `json:"history"`
}

// ToCarSummary converts a car to its summary
func ToCarSummary(c *catalog.Car) *CarSummary {
	if c == nil {
		return nil
	}
	s := &CarSummary{
		ID:          c.ID,
		Make:        c.Make,
		Model:       c.Model,
		Year:        c.Year,
		PublicPrice: c.PublicPrice,
	}
	if len(c.Images) > 0 {
		s.Image = c.Images[0]
	}
	return s
}

// ToManagerContact converts a profile to the contact card customers see
func ToManagerContact(p *identity.Profile) *ManagerContact {
	if p == nil {
		return nil
	}
	return &ManagerContact{FullName: p.FullName, Phone: p.Phone}
}

// ToLeadResponse converts a lead to the staff view
func ToLeadResponse(l *crm.Lead) LeadResponse {
	return LeadResponse{
		ID:                l.ID,
		CustomerName:      l.CustomerName,
		CustomerPhone:     l.CustomerPhone,
		CustomerEmail:     l.CustomerEmail,
		Message:           l.Message,
		Source:            l.Source,
		Status:            l.Status,
		CarID:             l.CarID,
		ClientUserID:      l.ClientUserID,
		AssignedManagerID: l.AssignedManagerID,
		ClaimedAt:         l.ClaimedAt,
		ClosedAt:          l.ClosedAt,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
		Version:           l.Version,
	}
}

// ToReviewResponse converts a review to the admin view
func ToReviewResponse(r *crm.Review) ReviewResponse {
	return ReviewResponse{
		ID:           r.ID,
		LeadID:       r.LeadID,
		ManagerID:    r.ManagerID,
		Rating:       r.Rating,
		Comment:      r.Comment,
		CustomerName: r.CustomerName,
		IsApproved:   r.IsApproved,
		ApprovedAt:   r.ApprovedAt,
		CreatedAt:    r.CreatedAt,
	}
}

// ToScoreResponse converts a score record
func ToScoreResponse(s *crm.ManagerScore) ScoreResponse {
	return ScoreResponse{
		ID:          s.ID,
		ActionType:  s.ActionType,
		Points:      s.Points,
		LeadID:      s.LeadID,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}
