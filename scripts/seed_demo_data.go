// Seeds the configured MongoDB database with demo products and a cart for
// manual testing:
//
//	go run scripts/seed_demo_data.go
//
// Honours MONGO_URI and MONGO_DATABASE; defaults match internal/config.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const demoUserID = "demo-user"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.Connect(ctx, cfg.Mongo, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.Mongo.Database)

	if err := database.EnsureIndexes(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	now := time.Now().UTC()

	products := []model.Product{
		{
			ID:        primitive.NewObjectID(),
			Title:     "Earl Grey Tea",
			SKU:       "TEA-EG-250",
			Price:     10.00,
			Stock:     120,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        primitive.NewObjectID(),
			Title:     "Stoneware Mug",
			SKU:       "MUG-ST-01",
			Price:     25.00,
			Discount:  10,
			Stock:     40,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          primitive.NewObjectID(),
			Title:       "Linen Shirt",
			SKU:         "SHIRT-LN",
			IsActive:    true,
			HasVariants: true,
			Variants: []model.Variant{
				{VariantID: "shirt-s", Title: "Small", SKU: "SHIRT-LN-S", Price: 40.00, Stock: 15, IsActive: true},
				{VariantID: "shirt-m", Title: "Medium", SKU: "SHIRT-LN-M", Price: 40.00, Stock: 20, IsActive: true},
				{VariantID: "shirt-l", Title: "Large", SKU: "SHIRT-LN-L", Price: 42.00, Discount: 5, Stock: 10, IsActive: true},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	productsColl := db.Collection(database.CollectionProducts)
	cartColl := db.Collection(database.CollectionCartItems)

	// Re-seed from scratch so the script is repeatable.
	if _, err := productsColl.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	if _, err := cartColl.DeleteMany(ctx, bson.M{"userId": demoUserID}); err != nil {
		return fmt.Errorf("failed to clear demo cart: %w", err)
	}

	docs := make([]interface{}, len(products))
	for i := range products {
		docs[i] = products[i]
	}
	if _, err := productsColl.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert products: %w", err)
	}

	cart := []interface{}{
		model.CartLineItem{
			UserID:    demoUserID,
			ProductID: products[0].ID,
			Quantity:  2,
			CreatedAt: now,
		},
		model.CartLineItem{
			UserID:    demoUserID,
			ProductID: products[2].ID,
			VariantID: "shirt-m",
			Quantity:  1,
			CreatedAt: now,
		},
	}
	if _, err := cartColl.InsertMany(ctx, cart); err != nil {
		return fmt.Errorf("failed to insert cart items: %w", err)
	}

	logger.Info().
		Int("products", len(products)).
		Int("cart_lines", len(cart)).
		Str("user_id", demoUserID).
		Msg("demo data seeded")

	return nil
}
