package memstore

import (
	"github.com/shopspring/decimal"

	"storefront/models"
)

func cloneProduct(p *models.Product) *models.Product {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Sizes = append([]string(nil), p.Sizes...)
	cp.Colors = append([]string(nil), p.Colors...)
	return &cp
}

func cloneOrder(o *models.Order) *models.Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Items = models.CloneItems(o.Items)
	if o.PaymentDetails != nil {
		details := *o.PaymentDetails
		cp.PaymentDetails = &details
	}
	return &cp
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
