package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs fn inside a transactional boundary. Either every write made
// through the context passed to fn commits, or none does.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Transactional() bool
}

// NewTransactor returns a session-backed transactor when enabled, otherwise one
// that runs fn directly. Multi-document transactions need a replica set.
func NewTransactor(client *mongo.Client, enabled bool) Transactor {
	if !enabled || client == nil {
		return NoopTransactor{}
	}
	return &mongoTransactor{client: client}
}

type mongoTransactor struct {
	client *mongo.Client
}

func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	// WithTransaction commits on success, aborts on error and retries on
	// TransientTransactionError / UnknownTransactionCommitResult labels.
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (t *mongoTransactor) Transactional() bool { return true }

// NoopTransactor runs fn without a transaction.
type NoopTransactor struct{}

func (NoopTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (NoopTransactor) Transactional() bool { return false }
