package board

import (
	"context"
)

// ColumnRepository defines persistence for board columns. Every method
// is scoped to a single owner; soft-deleted rows are excluded unless a
// method says otherwise.
type ColumnRepository interface {
	// FindByCode finds a live column by code.
	FindByCode(ctx context.Context, owner OwnerRef, code string) (*Column, error)

	// FindAll returns all live columns ordered by position.
	FindAll(ctx context.Context, owner OwnerRef) ([]Column, error)

	// FindSystem returns the owner's system column, if any.
	FindSystem(ctx context.Context, owner OwnerRef) (*Column, error)

	// ExistsByCode checks whether a live column uses the code.
	ExistsByCode(ctx context.Context, owner OwnerRef, code string) (bool, error)

	// MaxPosition returns the highest position among live columns,
	// zero when the owner has none.
	MaxPosition(ctx context.Context, owner OwnerRef) (int, error)

	// MaxSystemPosition returns the highest position among live system
	// columns, zero when there are none.
	MaxSystemPosition(ctx context.Context, owner OwnerRef) (int, error)

	// Save creates or updates a column.
	Save(ctx context.Context, column *Column) error
}

// CardRepository defines persistence for order cards, owner scoped.
type CardRepository interface {
	// FindByOrderID finds the card for one external order.
	FindByOrderID(ctx context.Context, owner OwnerRef, shopOrderID string) (*Card, error)

	// FindAll returns every card for the owner.
	FindAll(ctx context.Context, owner OwnerRef) ([]Card, error)

	// NextPositionInColumn returns the position the next card
	// appended to a column should take: one step past the highest
	// occupied position, zero when the column holds no cards.
	NextPositionInColumn(ctx context.Context, owner OwnerRef, columnCode string) (int, error)

	// Upsert inserts the card or, when a card for the same order
	// already exists, updates its mutable fields.
	Upsert(ctx context.Context, card *Card) error

	// UpdatePlacement sets column and position for one order's card,
	// creating it when absent.
	UpdatePlacement(ctx context.Context, owner OwnerRef, shopOrderID, columnCode string, position int) error

	// UpdateOrderNumber sets the display number on an existing card.
	// Missing cards are left alone.
	UpdateOrderNumber(ctx context.Context, owner OwnerRef, shopOrderID, number string) error

	// UpdateNote sets the note for one order's card, creating a bare
	// card when absent.
	UpdateNote(ctx context.Context, owner OwnerRef, shopOrderID, note string) error
}
