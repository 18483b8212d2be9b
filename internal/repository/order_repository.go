package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/database"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// orderRepository implements OrderRepository over the orders collection.
type orderRepository struct {
	collection *mongo.Collection
	logger     zerolog.Logger
}

// NewOrderRepository creates a MongoDB-backed order repository.
func NewOrderRepository(db *mongo.Database, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		collection: db.Collection(database.CollectionOrders),
		logger:     logger.With().Str("repository", "order").Logger(),
	}
}

// Insert persists a new order as a single document insert. A duplicate-key
// rejection from the idempotency index is mapped to ErrDuplicateOrder so the
// caller can fetch the order the concurrent retry created.
func (r *orderRepository) Insert(ctx context.Context, order *model.Order) error {
	result, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) && order.IdempotencyKey != "" {
			r.logger.Info().
				Str("user_id", order.UserID).
				Msg("duplicate idempotency key on insert")
			return ErrDuplicateOrder
		}
		r.logger.Error().Err(err).
			Str("user_id", order.UserID).
			Str("order_number", order.OrderNumber).
			Msg("failed to insert order")
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}

	return nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	var order model.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.Hex()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return &order, nil
}

// GetByIdempotencyKey retrieves the order previously created for (userID, key).
func (r *orderRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*model.Order, error) {
	var order model.Order
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "idempotencyKey": key}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Str("user_id", userID).
			Msg("failed to query order by idempotency key")
		return nil, fmt.Errorf("failed to query order by idempotency key: %w", err)
	}

	return &order, nil
}

// AppendReturnRequest pushes a return request onto the order, conditional on
// the order belonging to the user and being in delivered status. The filter
// re-checks status so a concurrent status change cannot slip a return onto a
// non-delivered order.
func (r *orderRepository) AppendReturnRequest(ctx context.Context, orderID primitive.ObjectID, userID string, request model.ReturnRequest) (bool, error) {
	filter := bson.M{
		"_id":    orderID,
		"userId": userID,
		"status": model.OrderStatusDelivered,
	}
	update := bson.M{
		"$push": bson.M{"returnRequests": request},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", orderID.Hex()).
			Str("user_id", userID).
			Msg("failed to append return request")
		return false, fmt.Errorf("failed to append return request: %w", err)
	}

	return result.ModifiedCount > 0, nil
}
