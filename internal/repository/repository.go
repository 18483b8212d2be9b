package repository

import (
	"context"
	"errors"

	"storefront/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInsufficientStock is returned by ReserveStock when the conditional
// decrement matched no document. Not-enough-stock and a concurrently
// deactivated or deleted product are indistinguishable here; both mean the
// line cannot be fulfilled.
var ErrInsufficientStock = errors.New("insufficient stock or unavailable product")

// ErrDuplicateOrder is returned by Insert when the (userId, idempotencyKey)
// unique index rejects the document, meaning a concurrent retry already won.
var ErrDuplicateOrder = errors.New("order already exists for idempotency key")

// CartRepository reads and clears a user's pending cart lines. Cart mutation
// endpoints own the writes; checkout only consumes and deletes.
type CartRepository interface {
	// LoadItems returns the user's cart lines, or model.ErrEmptyCart when
	// there are none.
	LoadItems(ctx context.Context, userID string) ([]model.CartLineItem, error)

	// Clear deletes every cart line for the user. Called only after the
	// order is durably committed.
	Clear(ctx context.Context, userID string) error
}

// ProductRepository provides catalogue reads and the inventory ledger. The
// reserve/release pair is the only code path allowed to mutate stock.
type ProductRepository interface {
	// GetAll retrieves active products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product, or nil when absent.
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)

	// ReserveStock atomically decrements stock and increments the sales
	// counter, conditional on the product (or variant) being active with
	// stock >= quantity. Returns ErrInsufficientStock when the condition
	// matched nothing.
	ReserveStock(ctx context.Context, productID primitive.ObjectID, variantID string, quantity int) error

	// ReleaseStock unconditionally reverses a reservation. Compensation
	// only; used by the non-transactional checkout path.
	ReleaseStock(ctx context.Context, productID primitive.ObjectID, variantID string, quantity int) error
}

// OrderRepository persists and retrieves order aggregates.
type OrderRepository interface {
	// Insert persists a new order. Returns ErrDuplicateOrder when the
	// idempotency index rejects it.
	Insert(ctx context.Context, order *model.Order) error

	// GetByID retrieves an order, or nil when absent.
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error)

	// GetByIdempotencyKey retrieves the order previously created for
	// (userID, key), or nil when none exists.
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*model.Order, error)

	// AppendReturnRequest pushes a return request onto a delivered order
	// owned by the user. Returns false when no such order matched.
	AppendReturnRequest(ctx context.Context, orderID primitive.ObjectID, userID string, request model.ReturnRequest) (bool, error)
}
