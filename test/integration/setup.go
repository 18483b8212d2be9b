package integration

import (
	"context"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestDB represents a MongoDB test instance.
type TestDB struct {
	Container *mongodb.MongoDBContainer
	Client    *mongo.Client
	DB        *mongo.Database
	TxCapable bool
}

// SetupTestDB starts a MongoDB test container with a single-node replica set
// so both the transactional and sequential checkout paths can be exercised.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connStr))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		t.Fatalf("failed to ping mongo: %v", err)
	}

	logger := zerolog.Nop()
	db := client.Database("storefront_test")

	if err := database.EnsureIndexes(ctx, db, logger); err != nil {
		t.Fatalf("failed to ensure indexes: %v", err)
	}

	txCapable, err := database.ProbeTransactions(ctx, db, logger)
	if err != nil {
		t.Fatalf("transaction probe failed: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: container,
		Client:    client,
		DB:        db,
		TxCapable: txCapable,
	}
}

// SeedProduct inserts one product and returns it.
func SeedProduct(t *testing.T, db *mongo.Database, title string, price float64, stock int) *model.Product {
	t.Helper()

	now := time.Now().UTC()
	p := &model.Product{
		ID:        primitive.NewObjectID(),
		Title:     title,
		SKU:       "SKU-" + title,
		Price:     price,
		Stock:     stock,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := db.Collection(database.CollectionProducts).InsertOne(context.Background(), p); err != nil {
		t.Fatalf("failed to seed product %s: %v", title, err)
	}

	return p
}

// SeedCartLine inserts one cart line for the user.
func SeedCartLine(t *testing.T, db *mongo.Database, userID string, productID primitive.ObjectID, quantity int) {
	t.Helper()

	line := model.CartLineItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := db.Collection(database.CollectionCartItems).InsertOne(context.Background(), line); err != nil {
		t.Fatalf("failed to seed cart line: %v", err)
	}
}

// CleanupDB removes all data from the test collections.
func CleanupDB(t *testing.T, db *mongo.Database) {
	t.Helper()

	ctx := context.Background()
	for _, coll := range []string{database.CollectionOrders, database.CollectionCartItems, database.CollectionProducts} {
		if _, err := db.Collection(coll).DeleteMany(ctx, bson.M{}); err != nil {
			t.Logf("failed to clean collection %s: %v", coll, err)
		}
	}
}
