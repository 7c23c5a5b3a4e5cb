package utils

import "github.com/shopspring/decimal"

// LineTotal returns price × quantity rounded half away from zero to 2 decimals.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
