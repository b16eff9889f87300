package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner runs fn so that the repository writes made with the ctx it
// receives commit or roll back together.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Transactional() bool
}

// NoTx runs fn directly. Used with standalone MongoDB and the in-memory store.
type NoTx struct{}

func (NoTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (NoTx) Transactional() bool { return false }

// MongoTxRunner runs fn inside a MongoDB session transaction. Requires a replica set.
type MongoTxRunner struct {
	client *mongo.Client
}

// NewMongoTxRunner creates a new MongoTxRunner
func NewMongoTxRunner(client *mongo.Client) *MongoTxRunner {
	return &MongoTxRunner{client: client}
}

func (r *MongoTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (r *MongoTxRunner) Transactional() bool { return true }
