package repository

import (
	"context"
	"fmt"

	"storefront/internal/database"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// cartRepository implements CartRepository over the cart_items collection.
type cartRepository struct {
	collection *mongo.Collection
	logger     zerolog.Logger
}

// NewCartRepository creates a MongoDB-backed cart repository.
func NewCartRepository(db *mongo.Database, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		collection: db.Collection(database.CollectionCartItems),
		logger:     logger.With().Str("repository", "cart").Logger(),
	}
}

// LoadItems returns the user's cart lines, or model.ErrEmptyCart when there are none.
func (r *cartRepository) LoadItems(ctx context.Context, userID string) ([]model.CartLineItem, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []model.CartLineItem
	if err := cursor.All(ctx, &items); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to decode cart items")
		return nil, fmt.Errorf("failed to decode cart items: %w", err)
	}

	if len(items) == 0 {
		r.logger.Debug().Str("user_id", userID).Msg("cart is empty")
		return nil, model.ErrEmptyCart
	}

	return items, nil
}

// Clear deletes every cart line for the user.
func (r *cartRepository) Clear(ctx context.Context, userID string) error {
	result, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID).
		Int64("deleted", result.DeletedCount).
		Msg("cart cleared")

	return nil
}
