package catalog

import (
	"time"

	"github.com/autodealer/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CarRequest is the admin create/update payload
type CarRequest struct {
	Make         string            `json:"make" binding:"required,max=100"`
	Model        string            `json:"model" binding:"required,max=100"`
	Year         int               `json:"year" binding:"required,min=1900"`
	BodyType     string            `json:"body_type" binding:"max=50"`
	EngineVolume decimal.Decimal   `json:"engine_volume"`
	FuelType     string            `json:"fuel_type" binding:"max=50"`
	Transmission string            `json:"transmission" binding:"max=50"`
	Mileage      int               `json:"mileage" binding:"min=0"`
	Color        string            `json:"color" binding:"max=50"`
	Description  string            `json:"description" binding:"max=5000"`
	PublicPrice  decimal.Decimal   `json:"public_price" binding:"required"`
	IsFeatured   bool              `json:"is_featured"`
	Videos       []string          `json:"videos" binding:"max=10,dive,url"`
	Costs        *CostBreakdownDTO `json:"costs"`
	SellerName   string            `json:"seller_name" binding:"max=200"`
	SellerNotes  string            `json:"seller_notes" binding:"max=2000"`
	Version      int               `json:"version"`
}

// CostBreakdownDTO carries the staff-only cost fields
type CostBreakdownDTO struct {
	CostPrice        decimal.Decimal `json:"cost_price"`
	DeliveryCost     decimal.Decimal `json:"delivery_cost"`
	CustomsCost      decimal.Decimal `json:"customs_cost"`
	UtilizationFee   decimal.Decimal `json:"utilization_fee"`
	RegistrationCost decimal.Decimal `json:"registration_cost"`
	Commission       decimal.Decimal `json:"commission"`
}

// ChangeCarStatusRequest sets the listing status
type ChangeCarStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available reserved sold"`
}

// CarListFilter represents the public catalog query
type CarListFilter struct {
	Search   string           `form:"search"`
	Make     string           `form:"make"`
	BodyType string           `form:"body_type"`
	FuelType string           `form:"fuel_type"`
	Status   string           `form:"status" binding:"omitempty,oneof=available reserved sold"`
	MinPrice *decimal.Decimal `form:"min_price"`
	MaxPrice *decimal.Decimal `form:"max_price"`
	MinYear  *int             `form:"min_year"`
	MaxYear  *int             `form:"max_year"`
	Page     int              `form:"page"`
	PageSize int              `form:"page_size" binding:"omitempty,max=100"`
	OrderBy  string           `form:"order_by"`
	OrderDir string           `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CarResponse is a listing. Internal is set only for staff.
type CarResponse struct {
	ID           uuid.UUID            `json:"id"`
	Make         string               `json:"make"`
	Model        string               `json:"model"`
	Year         int                  `json:"year"`
	BodyType     string               `json:"body_type,omitempty"`
	EngineVolume decimal.Decimal      `json:"engine_volume"`
	FuelType     string               `json:"fuel_type,omitempty"`
	Transmission string               `json:"transmission,omitempty"`
	Mileage      int                  `json:"mileage"`
	Color        string               `json:"color,omitempty"`
	Description  string               `json:"description,omitempty"`
	PublicPrice  decimal.Decimal      `json:"public_price"`
	Status       catalog.CarStatus    `json:"status"`
	Images       []string             `json:"images"`
	Videos       []string             `json:"videos"`
	IsFeatured   bool                 `json:"is_featured"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	Version      int                  `json:"version"`
	Internal     *CarInternalResponse `json:"internal,omitempty"`
}

// CarInternalResponse holds the staff-only fields
type CarInternalResponse struct {
	Costs       CostBreakdownDTO `json:"costs"`
	TotalCost   decimal.Decimal  `json:"total_cost"`
	Margin      decimal.Decimal  `json:"margin"`
	SellerName  string           `json:"seller_name,omitempty"`
	SellerNotes string           `json:"seller_notes,omitempty"`
}

// CarListResult is one page of the catalog
type CarListResult struct {
	Items    []CarResponse `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// ImageUploadRequest asks for a presigned upload URL
type ImageUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// ImageUploadResponse carries the presigned URL and where the image will live
type ImageUploadResponse struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	PublicURL  string    `json:"public_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// AttachImageRequest confirms an upload and adds it to the gallery
type AttachImageRequest struct {
	StorageKey string `json:"storage_key" binding:"required"`
}

// CalculatorRequest is the turnkey calculator input. Omitted items use the dealership default.
type CalculatorRequest struct {
	CarPrice         decimal.Decimal  `json:"car_price" binding:"required"`
	DeliveryCost     *decimal.Decimal `json:"delivery_cost"`
	CustomsCost      *decimal.Decimal `json:"customs_cost"`
	UtilizationFee   *decimal.Decimal `json:"utilization_fee"`
	RegistrationCost *decimal.Decimal `json:"registration_cost"`
	Commission       *decimal.Decimal `json:"commission"`
}

// QuoteLineResponse is one row of a price breakdown
type QuoteLineResponse struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// QuoteResponse is a turnkey price breakdown
type QuoteResponse struct {
	CarID    *uuid.UUID          `json:"car_id,omitempty"`
	CarTitle string              `json:"car_title,omitempty"`
	Lines    []QuoteLineResponse `json:"lines"`
	Total    decimal.Decimal     `json:"total"`
}

// ToCarResponse converts a car to its public view
func ToCarResponse(c *catalog.Car) CarResponse {
	images := c.Images
	if images == nil {
		images = []string{}
	}
	videos := c.Videos
	if videos == nil {
		videos = []string{}
	}
	return CarResponse{
		ID:           c.ID,
		Make:         c.Make,
		Model:        c.Model,
		Year:         c.Year,
		BodyType:     c.BodyType,
		EngineVolume: c.EngineVolume,
		FuelType:     c.FuelType,
		Transmission: c.Transmission,
		Mileage:      c.Mileage,
		Color:        c.Color,
		Description:  c.Description,
		PublicPrice:  c.PublicPrice,
		Status:       c.Status,
		Images:       images,
		Videos:       videos,
		IsFeatured:   c.IsFeatured,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Version:      c.Version,
	}
}

// ToStaffCarResponse converts a car to the staff view including costs
func ToStaffCarResponse(c *catalog.Car) CarResponse {
	resp := ToCarResponse(c)
	resp.Internal = &CarInternalResponse{
		Costs: CostBreakdownDTO{
			CostPrice:        c.Costs.CostPrice,
			DeliveryCost:     c.Costs.DeliveryCost,
			CustomsCost:      c.Costs.CustomsCost,
			UtilizationFee:   c.Costs.UtilizationFee,
			RegistrationCost: c.Costs.RegistrationCost,
			Commission:       c.Costs.Commission,
		},
		TotalCost:   c.Costs.Total(),
		Margin:      c.Margin(),
		SellerName:  c.SellerName,
		SellerNotes: c.SellerNotes,
	}
	return resp
}

func (r CarRequest) attributes() catalog.CarAttributes {
	return catalog.CarAttributes{
		Make:         r.Make,
		Model:        r.Model,
		Year:         r.Year,
		BodyType:     r.BodyType,
		EngineVolume: r.EngineVolume,
		FuelType:     r.FuelType,
		Transmission: r.Transmission,
		Mileage:      r.Mileage,
		Color:        r.Color,
		Description:  r.Description,
	}
}

func (d CostBreakdownDTO) toDomain() catalog.CostBreakdown {
	return catalog.CostBreakdown{
		CostPrice:        d.CostPrice,
		DeliveryCost:     d.DeliveryCost,
		CustomsCost:      d.CustomsCost,
		UtilizationFee:   d.UtilizationFee,
		RegistrationCost: d.RegistrationCost,
		Commission:       d.Commission,
	}
}

func toQuoteResponse(t catalog.TurnkeyCost) QuoteResponse {
	lines := t.Lines()
	resp := QuoteResponse{Lines: make([]QuoteLineResponse, len(lines)), Total: t.Total()}
	for i, l := range lines {
		resp.Lines[i] = QuoteLineResponse{Key: l.Key, Label: l.Label, Amount: l.Amount}
	}
	return resp
}
