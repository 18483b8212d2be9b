package database

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/config"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names used by the service.
const (
	CollectionProducts  = "products"
	CollectionCartItems = "cart_items"
	CollectionOrders    = "orders"
)

// illegalOperationCode is the server error code returned when a transaction
// is attempted against a deployment that does not support them (standalone
// mongod). Detection is strictly code-based, never message-based.
const illegalOperationCode = 20

// Connect creates a MongoDB client and verifies connectivity.
func Connect(ctx context.Context, cfg config.MongoConfig, logger zerolog.Logger) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	logger.Info().
		Str("uri", cfg.URI).
		Str("database", cfg.Database).
		Msg("connecting to mongodb")

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info().Msg("mongodb connection established")

	return client, nil
}

// EnsureIndexes creates the indexes the order-placement core depends on.
// The partial unique index on (userId, idempotencyKey) is the storage-level
// guarantee that two racing retries of the same checkout cannot both insert.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger zerolog.Logger) error {
	cartIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
		},
	}

	orderIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "idempotencyKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{
					{Key: "idempotencyKey", Value: bson.D{{Key: "$exists", Value: true}}},
				}),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}

	if _, err := db.Collection(CollectionCartItems).Indexes().CreateMany(ctx, cartIndexes); err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}

	if _, err := db.Collection(CollectionOrders).Indexes().CreateMany(ctx, orderIndexes); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	logger.Info().Msg("database indexes ensured")

	return nil
}

// ProbeTransactions reports whether the connected deployment supports
// multi-document transactions. It runs one throwaway transaction and
// classifies the outcome, so the answer reflects the actual topology rather
// than guesswork.
func ProbeTransactions(ctx context.Context, db *mongo.Database, logger zerolog.Logger) (bool, error) {
	session, err := db.Client().StartSession()
	if err != nil {
		return false, fmt.Errorf("failed to start probe session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		err := db.Collection(CollectionProducts).FindOne(sc, bson.D{}).Err()
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, nil
	})

	if err != nil {
		if IsTransactionUnsupported(err) {
			logger.Warn().Msg("deployment does not support multi-document transactions, checkout will use the sequential fallback")
			return false, nil
		}
		return false, fmt.Errorf("transaction probe failed: %w", err)
	}

	logger.Info().Msg("multi-document transactions supported")

	return true, nil
}

// IsTransactionUnsupported reports whether err is the capability signal a
// standalone deployment raises when a transaction is attempted.
func IsTransactionUnsupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == illegalOperationCode {
		return true
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == illegalOperationCode {
				return true
			}
		}
	}

	return false
}
