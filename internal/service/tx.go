package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner executes a function inside one multi-document transaction. The
// checkout coordinator depends on this interface so its fallback logic can be
// exercised without a replica set.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTxRunner runs functions inside a MongoDB session transaction.
type MongoTxRunner struct {
	client *mongo.Client
}

// NewMongoTxRunner creates a transaction runner over the given client.
func NewMongoTxRunner(client *mongo.Client) *MongoTxRunner {
	return &MongoTxRunner{client: client}
}

// WithTransaction executes fn inside a transaction. The session context is
// passed to fn, so every repository call made with it joins the transaction.
func (r *MongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})

	return err
}
