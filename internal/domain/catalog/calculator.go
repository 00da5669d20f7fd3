package catalog

import (
	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Dealership defaults for the turnkey price calculator (KZT)
var (
	DefaultDeliveryCost     = decimal.NewFromInt(300_000)
	DefaultCustomsCost      = decimal.NewFromInt(150_000)
	DefaultUtilizationFee   = decimal.NewFromInt(50_000)
	DefaultRegistrationCost = decimal.NewFromInt(25_000)
	DefaultCommission       = decimal.NewFromInt(100_000)

	MaxCalculatorCarPrice = decimal.NewFromInt(50_000_000)
	MaxCalculatorItem     = decimal.NewFromInt(1_000_000)
)

// TurnkeyCost is the input of the "car on a turnkey basis" calculation
type TurnkeyCost struct {
	CarPrice         decimal.Decimal
	DeliveryCost     decimal.Decimal
	CustomsCost      decimal.Decimal
	UtilizationFee   decimal.Decimal
	RegistrationCost decimal.Decimal
	Commission       decimal.Decimal
}

// QuoteLine is one row of a price breakdown
type QuoteLine struct {
	Key    string
	Label  string
	Amount decimal.Decimal
}

// DefaultTurnkeyCost fills every non-car item with the dealership default
func DefaultTurnkeyCost(carPrice decimal.Decimal) TurnkeyCost {
	return TurnkeyCost{
		CarPrice:         carPrice,
		DeliveryCost:     DefaultDeliveryCost,
		CustomsCost:      DefaultCustomsCost,
		UtilizationFee:   DefaultUtilizationFee,
		RegistrationCost: DefaultRegistrationCost,
		Commission:       DefaultCommission,
	}
}

// Validate checks every item is within the calculator's ranges
func (t TurnkeyCost) Validate() error {
	if t.CarPrice.IsNegative() || t.CarPrice.GreaterThan(MaxCalculatorCarPrice) {
		return shared.NewDomainError("INVALID_CAR_PRICE", "Car price must be between 0 and 50 000 000")
	}
	for _, line := range t.Lines()[1:] {
		if line.Amount.IsNegative() || line.Amount.GreaterThan(MaxCalculatorItem) {
			return shared.NewDomainError("INVALID_COST_ITEM", line.Label+" must be between 0 and 1 000 000")
		}
	}
	return nil
}

// Lines returns the breakdown in display order, car price first
func (t TurnkeyCost) Lines() []QuoteLine {
	return []QuoteLine{
		{Key: "car_price", Label: "Car price", Amount: t.CarPrice},
		{Key: "delivery", Label: "Delivery", Amount: t.DeliveryCost},
		{Key: "customs", Label: "Customs clearance", Amount: t.CustomsCost},
		{Key: "utilization_fee", Label: "Utilization fee", Amount: t.UtilizationFee},
		{Key: "registration", Label: "Registration", Amount: t.RegistrationCost},
		{Key: "commission", Label: "Commission", Amount: t.Commission},
	}
}

// Total is the turnkey price: the sum of every line
func (t TurnkeyCost) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range t.Lines() {
		total = total.Add(line.Amount)
	}
	return total
}
