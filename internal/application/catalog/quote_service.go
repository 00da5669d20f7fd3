package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/autodealer/backend/internal/domain/catalog"
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteService runs the turnkey price calculator and prints quotes
type QuoteService struct {
	carRepo    catalog.CarRepository
	renderer   QuoteRenderer
	dealerName string
	logger     *zap.Logger
}

// NewQuoteService creates a new QuoteService. renderer may be nil, which disables PDFs.
func NewQuoteService(carRepo catalog.CarRepository, renderer QuoteRenderer, dealerName string, logger *zap.Logger) *QuoteService {
	return &QuoteService{
		carRepo:    carRepo,
		renderer:   renderer,
		dealerName: dealerName,
		logger:     logger,
	}
}

// Calculate prices a car on a turnkey basis; omitted items take the dealership default
func (s *QuoteService) Calculate(req CalculatorRequest) (*QuoteResponse, error) {
	cost := catalog.DefaultTurnkeyCost(req.CarPrice)
	override := func(dst *decimal.Decimal, v *decimal.Decimal) {
		if v != nil {
			*dst = *v
		}
	}
	override(&cost.DeliveryCost, req.DeliveryCost)
	override(&cost.CustomsCost, req.CustomsCost)
	override(&cost.UtilizationFee, req.UtilizationFee)
	override(&cost.RegistrationCost, req.RegistrationCost)
	override(&cost.Commission, req.Commission)

	if err := cost.Validate(); err != nil {
		return nil, err
	}
	resp := toQuoteResponse(cost)
	return &resp, nil
}

// QuoteForCar prices a listed car with the dealership defaults. Internal
// cost fields are never used, so the quote is safe to show anyone.
func (s *QuoteService) QuoteForCar(ctx context.Context, carID uuid.UUID) (*QuoteResponse, error) {
	car, err := s.carRepo.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	resp := toQuoteResponse(catalog.DefaultTurnkeyCost(car.PublicPrice))
	id := car.ID
	resp.CarID = &id
	resp.CarTitle = car.Title()
	return &resp, nil
}

// QuotePDF renders the car's quote as a PDF and suggests a file name
func (s *QuoteService) QuotePDF(ctx context.Context, carID uuid.UUID) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", shared.NewDomainError("PRINTING_DISABLED", "PDF rendering is not configured")
	}
	quote, err := s.QuoteForCar(ctx, carID)
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	pdf, err := s.renderer.RenderQuotePDF(ctx, QuoteDocument{
		DealerName: s.dealerName,
		CarTitle:   quote.CarTitle,
		Quote:      *quote,
		IssuedAt:   start,
	})
	if err != nil {
		s.logger.Error("Failed to render quote", zap.String("car_id", carID.String()), zap.Error(err))
		return nil, "", fmt.Errorf("failed to render quote: %w", err)
	}
	s.logger.Debug("Quote rendered",
		zap.String("car_id", carID.String()),
		zap.Int("bytes", len(pdf)),
		zap.Duration("took", time.Since(start)),
	)
	return pdf, fmt.Sprintf("quote-%s.pdf", carID.String()[:8]), nil
}
