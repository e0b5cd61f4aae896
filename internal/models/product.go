package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DaysPerMonth converts a package duration in months to stored days
const DaysPerMonth = 30

// Product is a purchasable fitness package
type Product struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name               string                      `gorm:"type:varchar(255);not null" json:"name"`
	Description        string                      `gorm:"type:text" json:"description"`
	Price              decimal.Decimal             `gorm:"type:decimal(15,2);not null" json:"price"`
	Category           string                      `gorm:"type:varchar(255);index" json:"category"`
	DurationDays       int                         `gorm:"not null" json:"duration_days"`
	DiscountPercentage decimal.Decimal             `gorm:"type:decimal(5,2);not null" json:"discount_percentage"`
	Features           string                      `gorm:"type:text" json:"features"`
	IsActive           bool                        `gorm:"not null" json:"is_active"`
	MainImage          *string                     `gorm:"type:text" json:"main_image"`
	Images             datatypes.JSONSlice[string] `gorm:"type:json" json:"images"`
}

// DurationMonths is the inverse of the months x 30 conversion
func (p Product) DurationMonths() int {
	return p.DurationDays / DaysPerMonth
}

// FinalPrice applies the discount percentage to the price
func (p Product) FinalPrice() decimal.Decimal {
	if p.DiscountPercentage.IsZero() {
		return p.Price
	}
	off := p.Price.Mul(p.DiscountPercentage).Div(decimal.NewFromInt(100))
	return p.Price.Sub(off).Round(2)
}
