package mongo

import (
	"context"
	"fmt"
	apperrors "rentwheels/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
	// Transactional reports whether fn runs inside a real multi-document
	// transaction. When false, writes made by fn are not rolled back on error.
	Transactional() bool
}

type mongoTransactionManager struct {
	client *mongo.Client
}

// NewTransactionManager returns a manager backed by Mongo sessions. Transactions
// need a replica set or sharded cluster; use NewDirectManager on a standalone server.
func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

func (m *mongoTransactionManager) Transactional() bool {
	return true
}

type directManager struct{}

// NewDirectManager runs fn without a session. Each write is applied on its own.
func NewDirectManager() TransactionManager {
	return directManager{}
}

func (directManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	// A nil session is never picked up by the driver, so operations run sessionless.
	return fn(mongo.NewSessionContext(ctx, nil))
}

func (directManager) Transactional() bool {
	return false
}

// NewManager picks the session-backed manager when transactions are enabled.
func NewManager(client *mongo.Client, transactionsEnabled bool) TransactionManager {
	if transactionsEnabled {
		return NewTransactionManager(client)
	}
	return NewDirectManager()
}
