package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog entry. ID is the internal object reference and Code the
// external productId that clients send.
type Product struct {
	ID            int64           `json:"id"`
	Code          string          `json:"productId"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	IsSaleable    bool            `json:"isSaleable"`
	IsDisplayable bool            `json:"isDisplayable"`
	PrepaidOnly   bool            `json:"prepaidOnly"`
	Sizes         []string        `json:"sizes"`
	Colors        []string        `json:"colors"`
	Image         string          `json:"image"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (p *Product) IsAvailable() bool {
	return p.IsSaleable && p.IsDisplayable
}

func (p *Product) HasSize(size string) bool {
	return contains(p.Sizes, size)
}

func (p *Product) HasColor(color string) bool {
	return contains(p.Colors, color)
}

// AllowsPayment reports whether the product may be bought with the given method.
func (p *Product) AllowsPayment(method PaymentMethod) bool {
	return !(p.PrepaidOnly && method == PaymentCOD)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
