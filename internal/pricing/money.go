package pricing

import "github.com/shopspring/decimal"

// Round normalises a money value to 2 decimal places. decimal.Round uses
// round-half-away-from-zero, which is the behaviour required for all money
// values in this service.
func Round(value float64) float64 {
	f, _ := decimal.NewFromFloat(value).Round(2).Float64()
	return f
}

// EffectivePrice applies a percentage discount to a base price and rounds.
func EffectivePrice(base, discountPercent float64) float64 {
	price := decimal.NewFromFloat(base)
	discount := decimal.NewFromFloat(discountPercent).Div(decimal.NewFromInt(100))
	effective := price.Mul(decimal.NewFromInt(1).Sub(discount))
	f, _ := effective.Round(2).Float64()
	return f
}

// Amount computes a rounded line amount for a unit price and quantity.
func Amount(unitPrice float64, quantity int) float64 {
	amount := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
	f, _ := amount.Round(2).Float64()
	return f
}
