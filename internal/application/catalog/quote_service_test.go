package catalog

import (
	"context"
	"testing"

	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRenderer struct {
	last QuoteDocument
}

func (r *fakeRenderer) RenderQuotePDF(_ context.Context, doc QuoteDocument) ([]byte, error) {
	r.last = doc
	return []byte("%PDF-1.4"), nil
}

func TestQuoteService_Calculate(t *testing.T) {
	svc := NewQuoteService(new(MockCarRepository), nil, "Test Motors", zap.NewNop())

	t.Run("defaults", func(t *testing.T) {
		quote, err := svc.Calculate(CalculatorRequest{CarPrice: decimal.NewFromInt(5_000_000)})
		require.NoError(t, err)
		assert.True(t, quote.Total.Equal(decimal.NewFromInt(5_625_000)), quote.Total.String())
		assert.Len(t, quote.Lines, 6)
		assert.Equal(t, "car_price", quote.Lines[0].Key)
	})

	t.Run("overrides", func(t *testing.T) {
		zero := decimal.Zero
		quote, err := svc.Calculate(CalculatorRequest{CarPrice: decimal.NewFromInt(1_000_000), Commission: &zero})
		require.NoError(t, err)
		assert.True(t, quote.Total.Equal(decimal.NewFromInt(1_525_000)), quote.Total.String())
	})

	t.Run("out of range", func(t *testing.T) {
		tooMuch := decimal.NewFromInt(2_000_000)
		_, err := svc.Calculate(CalculatorRequest{CarPrice: decimal.NewFromInt(1), DeliveryCost: &tooMuch})
		assert.Error(t, err)

		_, err = svc.Calculate(CalculatorRequest{CarPrice: decimal.NewFromInt(60_000_000)})
		assert.Error(t, err)
	})
}

func TestQuoteService_QuoteForCar(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCarRepository)
	renderer := &fakeRenderer{}
	svc := NewQuoteService(repo, renderer, "Test Motors", zap.NewNop())
	car := newTestCar(t)
	repo.On("FindByID", ctx, car.ID).Return(car, nil)

	quote, err := svc.QuoteForCar(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "Toyota Camry 2022", quote.CarTitle)
	assert.True(t, quote.Lines[0].Amount.Equal(car.PublicPrice), "quotes use the public price, never the cost price")

	pdf, name, err := svc.QuotePDF(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
	assert.Equal(t, "quote-"+car.ID.String()[:8]+".pdf", name)
	assert.Equal(t, "Test Motors", renderer.last.DealerName)

	noPrinter := NewQuoteService(repo, nil, "Test Motors", zap.NewNop())
	_, _, err = noPrinter.QuotePDF(ctx, car.ID)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "PRINTING_DISABLED", de.Code)
}
