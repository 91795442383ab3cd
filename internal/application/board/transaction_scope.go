package board

import (
	"context"

	"github.com/orderboard/backend/internal/domain/board"
)

// TransactionScope provides transactional access to board repositories.
// Every mutating board operation runs inside exactly one scope so that a
// partial reindex or reorder can never be observed.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the board repositories
// within a transaction. Both share the same underlying transaction.
type TransactionalRepositories interface {
	// ColumnRepo returns the column repository scoped to the current transaction
	ColumnRepo() board.ColumnRepository
	// CardRepo returns the card repository scoped to the current transaction
	CardRepo() board.CardRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests.
type NoOpTransactionScope struct {
	columnRepo board.ColumnRepository
	cardRepo   board.CardRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(columnRepo board.ColumnRepository, cardRepo board.CardRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		columnRepo: columnRepo,
		cardRepo:   cardRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ColumnRepo returns the column repository.
func (s *NoOpTransactionScope) ColumnRepo() board.ColumnRepository {
	return s.columnRepo
}

// CardRepo returns the card repository.
func (s *NoOpTransactionScope) CardRepo() board.CardRepository {
	return s.cardRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
