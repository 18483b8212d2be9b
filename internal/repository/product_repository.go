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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// productRepository implements ProductRepository over the products collection.
type productRepository struct {
	collection *mongo.Collection
	logger     zerolog.Logger
}

// NewProductRepository creates a MongoDB-backed product repository.
func NewProductRepository(db *mongo.Database, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		collection: db.Collection(database.CollectionProducts),
		logger:     logger.With().Str("repository", "product").Logger(),
	}
}

// GetAll retrieves active products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "title", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []model.Product
	if err := cursor.All(ctx, &products); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode products")
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	var product model.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Debug().Str("product_id", id.Hex()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.Hex()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &product, nil
}

// ReserveStock performs the conditional decrement that is the sole stock
// correctness mechanism. The condition and the mutation are one atomic
// database operation; there is no application-level locking.
func (r *productRepository) ReserveStock(ctx context.Context, productID primitive.ObjectID, variantID string, quantity int) error {
	var filter, update bson.M

	if variantID != "" {
		filter = bson.M{
			"_id":      productID,
			"isActive": true,
			"variants": bson.M{"$elemMatch": bson.M{
				"variantId": variantID,
				"isActive":  true,
				"stock":     bson.M{"$gte": quantity},
			}},
		}
		update = bson.M{
			"$inc": bson.M{
				"variants.$.stock":      -quantity,
				"variants.$.salesCount": quantity,
				"salesCount":            quantity,
			},
			"$set": bson.M{"updatedAt": time.Now()},
		}
	} else {
		filter = bson.M{
			"_id":         productID,
			"isActive":    true,
			"hasVariants": false,
			"stock":       bson.M{"$gte": quantity},
		}
		update = bson.M{
			"$inc": bson.M{
				"stock":      -quantity,
				"salesCount": quantity,
			},
			"$set": bson.M{"updatedAt": time.Now()},
		}
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID.Hex()).
			Str("variant_id", variantID).
			Int("quantity", quantity).
			Msg("failed to reserve stock")
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	if result.ModifiedCount == 0 {
		r.logger.Warn().
			Str("product_id", productID.Hex()).
			Str("variant_id", variantID).
			Int("quantity", quantity).
			Msg("stock reservation condition matched nothing")
		return ErrInsufficientStock
	}

	return nil
}

// ReleaseStock reverses a reservation without any condition. Best-effort
// compensation for the sequential checkout path.
func (r *productRepository) ReleaseStock(ctx context.Context, productID primitive.ObjectID, variantID string, quantity int) error {
	var filter, update bson.M

	if variantID != "" {
		filter = bson.M{
			"_id":      productID,
			"variants": bson.M{"$elemMatch": bson.M{"variantId": variantID}},
		}
		update = bson.M{
			"$inc": bson.M{
				"variants.$.stock":      quantity,
				"variants.$.salesCount": -quantity,
				"salesCount":            -quantity,
			},
			"$set": bson.M{"updatedAt": time.Now()},
		}
	} else {
		filter = bson.M{"_id": productID}
		update = bson.M{
			"$inc": bson.M{
				"stock":      quantity,
				"salesCount": -quantity,
			},
			"$set": bson.M{"updatedAt": time.Now()},
		}
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID.Hex()).
			Str("variant_id", variantID).
			Int("quantity", quantity).
			Msg("failed to release stock")
		return fmt.Errorf("failed to release stock: %w", err)
	}

	return nil
}
