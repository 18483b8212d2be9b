package cache

import (
	"context"

	"storefront/internal/model"
)

// NoopCache satisfies ProductCache without caching anything. Used when Redis
// is disabled so callers never need a nil check.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, productID string) (*model.Product, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) Set(ctx context.Context, product *model.Product) error { return nil }

func (NoopCache) Invalidate(ctx context.Context, productIDs ...string) error { return nil }
