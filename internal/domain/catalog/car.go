package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/autodealer/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CarStatus represents the sales status of a vehicle listing
type CarStatus string

const (
	CarStatusAvailable CarStatus = "available"
	CarStatusReserved  CarStatus = "reserved"
	CarStatusSold      CarStatus = "sold"
)

// IsValid reports whether s is a known car status
func (s CarStatus) IsValid() bool {
	switch s {
	case CarStatusAvailable, CarStatusReserved, CarStatusSold:
		return true
	}
	return false
}

// MaxImages caps the gallery size of a listing
const MaxImages = 30

// CarAttributes are the descriptive, publicly visible fields of a listing
type CarAttributes struct {
	Make         string
	Model        string
	Year         int
	BodyType     string
	EngineVolume decimal.Decimal // litres
	FuelType     string
	Transmission string
	Mileage      int // km
	Color        string
	Description  string
}

// CostBreakdown is the dealership's internal cost structure for a car.
// Visible to staff only.
type CostBreakdown struct {
	CostPrice        decimal.Decimal
	DeliveryCost     decimal.Decimal
	CustomsCost      decimal.Decimal
	UtilizationFee   decimal.Decimal
	RegistrationCost decimal.Decimal
	Commission       decimal.Decimal
}

// Total sums every cost component
func (c CostBreakdown) Total() decimal.Decimal {
	return c.CostPrice.
		Add(c.DeliveryCost).
		Add(c.CustomsCost).
		Add(c.UtilizationFee).
		Add(c.RegistrationCost).
		Add(c.Commission)
}

func (c CostBreakdown) validate() error {
	for _, v := range []decimal.Decimal{c.CostPrice, c.DeliveryCost, c.CustomsCost, c.UtilizationFee, c.RegistrationCost, c.Commission} {
		if v.IsNegative() {
			return shared.NewDomainError("INVALID_COST", "Cost components cannot be negative")
		}
	}
	return nil
}

// Car is a vehicle listing and the aggregate root of the catalog
type Car struct {
	shared.BaseAggregateRoot
	CarAttributes
	PublicPrice decimal.Decimal
	Costs       CostBreakdown
	SellerName  string
	SellerNotes string
	Status      CarStatus
	Images      []string
	Videos      []string
	IsFeatured  bool
}

// NewCar creates an available listing
func NewCar(attrs CarAttributes, publicPrice decimal.Decimal) (*Car, error) {
	attrs = normalizeAttributes(attrs)
	if err := validateAttributes(attrs); err != nil {
		return nil, err
	}
	if err := validatePrice(publicPrice); err != nil {
		return nil, err
	}

	car := &Car{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CarAttributes:     attrs,
		PublicPrice:       publicPrice,
		Status:            CarStatusAvailable,
		Images:            make([]string, 0),
		Videos:            make([]string, 0),
	}
	car.AddDomainEvent(NewCarCreatedEvent(car))
	return car, nil
}

// Update replaces the descriptive fields and the public price
func (c *Car) Update(attrs CarAttributes, publicPrice decimal.Decimal) error {
	attrs = normalizeAttributes(attrs)
	if err := validateAttributes(attrs); err != nil {
		return err
	}
	if err := validatePrice(publicPrice); err != nil {
		return err
	}

	c.CarAttributes = attrs
	c.PublicPrice = publicPrice
	c.Touch()
	c.AddDomainEvent(NewCarUpdatedEvent(c))
	return nil
}

// SetCostBreakdown replaces the internal costs
func (c *Car) SetCostBreakdown(costs CostBreakdown) error {
	if err := costs.validate(); err != nil {
		return err
	}
	c.Costs = costs
	c.Touch()
	c.AddDomainEvent(NewCarUpdatedEvent(c))
	return nil
}

// SetSeller records who the car was sourced from
func (c *Car) SetSeller(name, notes string) error {
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_SELLER", "Seller name cannot exceed 200 characters")
	}
	c.SellerName = strings.TrimSpace(name)
	c.SellerNotes = notes
	c.UpdatedAt = time.Now()
	return nil
}

// ChangeStatus sets the listing status. Any of the three statuses may follow
// any other; the dealership moves cars back to available when a deal falls through.
func (c *Car) ChangeStatus(status CarStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Car status must be available, reserved or sold")
	}
	if c.Status == status {
		return nil
	}
	old := c.Status
	c.Status = status
	c.Touch()
	c.AddDomainEvent(NewCarStatusChangedEvent(c, old, status))
	return nil
}

// SetFeatured toggles the listing on the home page
func (c *Car) SetFeatured(featured bool) {
	if c.IsFeatured == featured {
		return
	}
	c.IsFeatured = featured
	c.Touch()
	c.AddDomainEvent(NewCarUpdatedEvent(c))
}

// AddImage appends an image URL to the gallery
func (c *Car) AddImage(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return shared.NewDomainError("INVALID_IMAGE", "Image URL cannot be empty")
	}
	if len(c.Images) >= MaxImages {
		return shared.NewDomainError("TOO_MANY_IMAGES", "Image gallery is full")
	}
	for _, existing := range c.Images {
		if existing == url {
			return nil
		}
	}
	c.Images = append(c.Images, url)
	c.Touch()
	c.AddDomainEvent(NewCarUpdatedEvent(c))
	return nil
}

// SetVideos replaces the video URL list
func (c *Car) SetVideos(urls []string) {
	c.Videos = make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			c.Videos = append(c.Videos, u)
		}
	}
	c.UpdatedAt = time.Now()
}

// Margin is the public price minus the total internal cost
func (c *Car) Margin() decimal.Decimal {
	return c.PublicPrice.Sub(c.Costs.Total())
}

// IsAvailable returns true if the car can still be sold
func (c *Car) IsAvailable() bool {
	return c.Status == CarStatusAvailable
}

// Title is "Make Model Year", used in quotes and lead summaries
func (c *Car) Title() string {
	return strings.TrimSpace(c.Make + " " + c.Model + " " + strconv.Itoa(c.Year))
}

func normalizeAttributes(a CarAttributes) CarAttributes {
	a.Make = strings.TrimSpace(a.Make)
	a.Model = strings.TrimSpace(a.Model)
	a.BodyType = strings.TrimSpace(a.BodyType)
	a.FuelType = strings.TrimSpace(a.FuelType)
	a.Transmission = strings.TrimSpace(a.Transmission)
	a.Color = strings.TrimSpace(a.Color)
	return a
}

func validateAttributes(a CarAttributes) error {
	if a.Make == "" {
		return shared.NewDomainError("INVALID_MAKE", "Make cannot be empty")
	}
	if len(a.Make) > 100 {
		return shared.NewDomainError("INVALID_MAKE", "Make cannot exceed 100 characters")
	}
	if a.Model == "" {
		return shared.NewDomainError("INVALID_MODEL", "Model cannot be empty")
	}
	if len(a.Model) > 100 {
		return shared.NewDomainError("INVALID_MODEL", "Model cannot exceed 100 characters")
	}
	maxYear := time.Now().Year() + 1
	if a.Year < 1900 || a.Year > maxYear {
		return shared.NewDomainError("INVALID_YEAR", "Year is out of range")
	}
	if a.Mileage < 0 {
		return shared.NewDomainError("INVALID_MILEAGE", "Mileage cannot be negative")
	}
	if a.EngineVolume.IsNegative() || a.EngineVolume.GreaterThan(decimal.NewFromInt(20)) {
		return shared.NewDomainError("INVALID_ENGINE_VOLUME", "Engine volume must be between 0 and 20 litres")
	}
	if len(a.Description) > 5000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 5000 characters")
	}
	return nil
}

func validatePrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Public price must be positive")
	}
	return nil
}
