package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is a party package offered in the catalog.
type Service struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    Category        `gorm:"size:50;not null;index" json:"category"`
	ImageURL    string          `gorm:"size:300" json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PriceLabel formats the price the way the storefront shows it.
func (s *Service) PriceLabel() string {
	return FormatMoney(s.Price)
}

// FormatMoney renders an amount in roubles with two decimals.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2) + " ₽"
}

// SumPrices adds up the prices of the given services.
func SumPrices(services []Service) decimal.Decimal {
	total := decimal.Zero
	for _, s := range services {
		total = total.Add(s.Price)
	}
	return total
}
