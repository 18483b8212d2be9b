// Package cache is the explicit product-cache service: reads carry a TTL,
// and writers to product stock call Invalidate rather than relying on
// expiry alone.
package cache

import (
	"context"
	"errors"

	"storefront/internal/model"
)

// ProductCache caches catalogue products by ID.
type ProductCache interface {
	Get(ctx context.Context, productID string) (*model.Product, error)
	Set(ctx context.Context, product *model.Product) error
	Invalidate(ctx context.Context, productIDs ...string) error
}

// ErrCacheMiss is returned by Get when the product is not cached.
var ErrCacheMiss = errors.New("cache miss")
