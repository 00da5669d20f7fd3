package models

import (
	"github.com/autodealer/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CarModel is the persistence model for the Car aggregate.
type CarModel struct {
	AggregateModel
	Make             string            `gorm:"type:varchar(100);not null;index"`
	Model            string            `gorm:"type:varchar(100);not null"`
	Year             int               `gorm:"not null;index"`
	BodyType         string            `gorm:"type:varchar(50)"`
	EngineVolume     decimal.Decimal   `gorm:"type:decimal(4,2);not null;default:0"`
	FuelType         string            `gorm:"type:varchar(50)"`
	Transmission     string            `gorm:"type:varchar(50)"`
	Mileage          int               `gorm:"not null;default:0"`
	Color            string            `gorm:"type:varchar(50)"`
	Description      string            `gorm:"type:text"`
	PublicPrice      decimal.Decimal   `gorm:"type:decimal(18,2);not null;index"`
	CostPrice        decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	DeliveryCost     decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	CustomsCost      decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	UtilizationFee   decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	RegistrationCost decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	Commission       decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	SellerName       string            `gorm:"type:varchar(200)"`
	SellerNotes      string            `gorm:"type:text"`
	Status           catalog.CarStatus `gorm:"type:varchar(20);not null;default:'available';index"`
	Images           []string          `gorm:"type:jsonb;serializer:json;not null"`
	Videos           []string          `gorm:"type:jsonb;serializer:json;not null"`
	IsFeatured       bool              `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CarModel) TableName() string {
	return "cars"
}

// ToDomain converts the persistence model to a domain Car.
func (m *CarModel) ToDomain() *catalog.Car {
	images, videos := m.Images, m.Videos
	if images == nil {
		images = []string{}
	}
	if videos == nil {
		videos = []string{}
	}
	return &catalog.Car{
		BaseAggregateRoot: m.Root(),
		CarAttributes: catalog.CarAttributes{
			Make:         m.Make,
			Model:        m.Model,
			Year:         m.Year,
			BodyType:     m.BodyType,
			EngineVolume: m.EngineVolume,
			FuelType:     m.FuelType,
			Transmission: m.Transmission,
			Mileage:      m.Mileage,
			Color:        m.Color,
			Description:  m.Description,
		},
		PublicPrice: m.PublicPrice,
		Costs: catalog.CostBreakdown{
			CostPrice:        m.CostPrice,
			DeliveryCost:     m.DeliveryCost,
			CustomsCost:      m.CustomsCost,
			UtilizationFee:   m.UtilizationFee,
			RegistrationCost: m.RegistrationCost,
			Commission:       m.Commission,
		},
		SellerName:  m.SellerName,
		SellerNotes: m.SellerNotes,
		Status:      m.Status,
		Images:      images,
		Videos:      videos,
		IsFeatured:  m.IsFeatured,
	}
}

// FromDomain populates the persistence model from a domain Car.
func (m *CarModel) FromDomain(c *catalog.Car) {
	m.SetRoot(c.BaseAggregateRoot)
	m.Make = c.Make
	m.Model = c.Model
	m.Year = c.Year
	m.BodyType = c.BodyType
	m.EngineVolume = c.EngineVolume
	m.FuelType = c.FuelType
	m.Transmission = c.Transmission
	m.Mileage = c.Mileage
	m.Color = c.Color
	m.Description = c.Description
	m.PublicPrice = c.PublicPrice
	m.CostPrice = c.Costs.CostPrice
	m.DeliveryCost = c.Costs.DeliveryCost
	m.CustomsCost = c.Costs.CustomsCost
	m.UtilizationFee = c.Costs.UtilizationFee
	m.RegistrationCost = c.Costs.RegistrationCost
	m.Commission = c.Costs.Commission
	m.SellerName = c.SellerName
	m.SellerNotes = c.SellerNotes
	m.Status = c.Status
	m.Images = c.Images
	m.Videos = c.Videos
	m.IsFeatured = c.IsFeatured
	if m.Images == nil {
		m.Images = []string{}
	}
	if m.Videos == nil {
		m.Videos = []string{}
	}
}

// CarModelFromDomain creates a new persistence model from a domain Car.
func CarModelFromDomain(c *catalog.Car) *CarModel {
	m := &CarModel{}
	m.FromDomain(c)
	return m
}
