package service

import (
	"context"
	"time"

	"storefront/internal/model"
)

// timeNow is a seam for tests.
var timeNow = time.Now

// ProductService defines read operations for the product catalogue.
type ProductService interface {
	// GetAll retrieves active products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID, reading through the cache.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// CheckoutService converts a user's cart into a persisted order.
type CheckoutService interface {
	// PlaceOrder runs the checkout pipeline. The returned bool is true when
	// the order is an idempotent replay of a previous submission.
	PlaceOrder(ctx context.Context, req *model.CheckoutRequest) (*model.Order, bool, error)
}

// OrderService defines operations on existing orders.
type OrderService interface {
	// GetByID retrieves an order owned by the user.
	GetByID(ctx context.Context, userID, orderID string) (*model.Order, error)

	// RequestReturn appends a return request to a delivered order,
	// validated against the order's item snapshots.
	RequestReturn(ctx context.Context, orderID string, input *model.ReturnRequestInput) (*model.Order, error)
}
