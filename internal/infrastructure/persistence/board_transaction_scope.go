package persistence

import (
	"context"

	"gorm.io/gorm"

	appboard "github.com/orderboard/backend/internal/application/board"
	"github.com/orderboard/backend/internal/domain/board"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appboard.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to the board repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ColumnRepo returns the column repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ColumnRepo() board.ColumnRepository {
	return NewGormColumnRepository(r.tx)
}

// CardRepo returns the card repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CardRepo() board.CardRepository {
	return NewGormCardRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appboard.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appboard.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
