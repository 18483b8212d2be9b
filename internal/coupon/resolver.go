package coupon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"storefront/internal/pricing"

	"github.com/rs/zerolog"
)

// resolver implements Resolver over an in-memory coupon table.
// The table is read-only after initialisation, so no locking is needed.
type resolver struct {
	coupons map[string]Coupon
	logger  zerolog.Logger
}

// NewResolver creates a resolver over the given coupons.
func NewResolver(coupons []Coupon, logger zerolog.Logger) Resolver {
	table := make(map[string]Coupon, len(coupons))
	for _, c := range coupons {
		table[strings.ToUpper(c.Code)] = c
	}

	return &resolver{
		coupons: table,
		logger:  logger.With().Str("component", "coupon-resolver").Logger(),
	}
}

// NewResolverFromFile loads the coupon table from a JSON file. A missing file
// yields an empty resolver rather than a startup failure.
func NewResolverFromFile(path string, logger zerolog.Logger) (Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", path).Msg("coupon file not found, no coupons loaded")
			return NewResolver(nil, logger), nil
		}
		return nil, fmt.Errorf("failed to read coupon file: %w", err)
	}

	var coupons []Coupon
	if err := json.Unmarshal(data, &coupons); err != nil {
		return nil, fmt.Errorf("failed to parse coupon file: %w", err)
	}

	logger.Info().Int("count", len(coupons)).Str("path", path).Msg("coupons loaded")

	return NewResolver(coupons, logger), nil
}

// Resolve returns the discount amount for the code, or zero when the code is
// unknown, the subtotal does not qualify, or the type is unrecognised.
func (r *resolver) Resolve(ctx context.Context, code string, subTotal float64) float64 {
	if code == "" {
		return 0
	}

	c, ok := r.coupons[strings.ToUpper(code)]
	if !ok {
		r.logger.Warn().Str("coupon_code", code).Msg("unknown coupon code")
		return 0
	}

	if subTotal < c.MinSubTotal {
		r.logger.Debug().
			Str("coupon_code", code).
			Float64("sub_total", subTotal).
			Float64("min_sub_total", c.MinSubTotal).
			Msg("subtotal below coupon minimum")
		return 0
	}

	switch c.Type {
	case TypePercent:
		return pricing.Round(subTotal * c.Value / 100)
	case TypeFixed:
		return pricing.Round(c.Value)
	default:
		r.logger.Warn().Str("coupon_code", code).Str("type", c.Type).Msg("unknown coupon type")
		return 0
	}
}
