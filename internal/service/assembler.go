package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/model"
	"storefront/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// assembleOrder builds the immutable order aggregate from the reserved item
// snapshots: totals, shipping, coupon discount, order number.
func (s *checkoutService) assembleOrder(ctx context.Context, req *model.CheckoutRequest, items []model.OrderItem) *model.Order {
	subTotal := decimal.Zero
	for _, item := range items {
		subTotal = subTotal.Add(decimal.NewFromFloat(item.Amount))
	}
	sub, _ := subTotal.Round(2).Float64()

	shipping := s.cfg.ShippingFee
	if sub >= s.cfg.FreeShippingThreshold {
		shipping = 0
	}

	discount := 0.0
	if req.CouponCode != "" {
		discount = s.coupons.Resolve(ctx, req.CouponCode, sub)
	}

	paymentStatus := model.PaymentStatusPending
	if req.RequiresPaymentVerification() {
		// Verified upfront; a gateway order only reaches assembly paid.
		paymentStatus = model.PaymentStatusPaid
	}

	now := s.now()

	return &model.Order{
		OrderNumber:    s.generateOrderNumber(now.UTC().UnixMilli()),
		UserID:         req.UserID,
		Items:          items,
		SubTotal:       sub,
		ShippingCost:   pricing.Round(shipping),
		CouponCode:     req.CouponCode,
		CouponDiscount: discount,
		TotalAmount:    computeTotal(sub, shipping, discount),
		Shipping:       req.ShippingDetails(),
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  paymentStatus,
		Status:         model.OrderStatusNew,
		Notes:          req.Notes,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// computeTotal applies the order total invariant:
// totalAmount = max(0, subTotal + shippingCost - couponDiscount).
func computeTotal(subTotal, shipping, discount float64) float64 {
	total := decimal.NewFromFloat(subTotal).
		Add(decimal.NewFromFloat(shipping)).
		Sub(decimal.NewFromFloat(discount))

	if total.IsNegative() {
		return 0
	}

	f, _ := total.Round(2).Float64()
	return f
}

// generateOrderNumber produces a human-readable order number from the
// configured prefix, a base-36 timestamp and a random suffix. Collisions are
// rare but possible; the unique index surfaces one as an insert failure,
// which is safe to retry with the same idempotency key.
func (s *checkoutService) generateOrderNumber(unixMilli int64) string {
	ts := strings.ToUpper(strconv.FormatInt(unixMilli, 36))
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s%s", s.cfg.OrderNumberPrefix, ts, suffix)
}
