// Package coupon resolves coupon codes into a discount amount against an
// order subtotal. The checkout core consumes the resolved amount only; coupon
// administration lives elsewhere.
package coupon

import "context"

// Discount types.
const (
	TypePercent = "percent"
	TypeFixed   = "fixed"
)

// Coupon is one discount definition.
type Coupon struct {
	Code        string  `json:"code"`
	Type        string  `json:"type"` // "percent" or "fixed"
	Value       float64 `json:"value"`
	MinSubTotal float64 `json:"minSubTotal"`
}

// Resolver resolves a coupon code into a discount amount for a subtotal.
// Unknown or non-qualifying codes resolve to zero; a coupon never fails a
// checkout.
type Resolver interface {
	Resolve(ctx context.Context, code string, subTotal float64) float64
}
