package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orderboard/backend/internal/domain/board"
	"github.com/orderboard/backend/internal/domain/shared"
)

// GormCardRepository implements board.CardRepository using GORM
type GormCardRepository struct {
	db *gorm.DB
}

// NewGormCardRepository creates a new GormCardRepository
func NewGormCardRepository(db *gorm.DB) *GormCardRepository {
	return &GormCardRepository{db: db}
}

var _ board.CardRepository = (*GormCardRepository)(nil)

func (r *GormCardRepository) scoped(ctx context.Context, owner board.OwnerRef) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&board.Card{}).
		Where("owner_kind = ? AND owner_id = ?", owner.Kind, owner.ID)
}

// FindByOrderID finds the card for one external order
func (r *GormCardRepository) FindByOrderID(ctx context.Context, owner board.OwnerRef, shopOrderID string) (*board.Card, error) {
	var card board.Card
	if err := r.scoped(ctx, owner).Where("shop_order_id = ?", shopOrderID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

// FindAll returns every card for the owner
func (r *GormCardRepository) FindAll(ctx context.Context, owner board.OwnerRef) ([]board.Card, error) {
	var cards []board.Card
	if err := r.scoped(ctx, owner).Order("column_code ASC, position ASC").Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// NextPositionInColumn returns the position one step past the highest
// occupied slot in a column, zero when the column holds no cards
func (r *GormCardRepository) NextPositionInColumn(ctx context.Context, owner board.OwnerRef, columnCode string) (int, error) {
	var next int
	if err := r.scoped(ctx, owner).Where("column_code = ?", columnCode).
		Select("COALESCE(MAX(position) + ?, 0)", board.PositionStep).Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// Upsert inserts the card or updates the mutable fields of the existing
// card for the same owner and order
func (r *GormCardRepository) Upsert(ctx context.Context, card *board.Card) error {
	card.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "owner_kind"},
			{Name: "owner_id"},
			{Name: "shop_order_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"shop_order_number", "column_code", "position", "note", "updated_at",
		}),
	}).Create(card).Error
}

// UpdatePlacement sets column and position for one order's card, creating
// it when absent
func (r *GormCardRepository) UpdatePlacement(ctx context.Context, owner board.OwnerRef, shopOrderID, columnCode string, position int) error {
	card, err := r.FindByOrderID(ctx, owner, shopOrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return r.db.WithContext(ctx).
				Create(board.NewCard(owner, shopOrderID, "", columnCode, position)).Error
		}
		return err
	}
	card.MoveTo(columnCode, position)
	return r.db.WithContext(ctx).Save(card).Error
}

// UpdateOrderNumber sets the display number on an existing card. Missing
// cards are left alone.
func (r *GormCardRepository) UpdateOrderNumber(ctx context.Context, owner board.OwnerRef, shopOrderID, number string) error {
	return r.scoped(ctx, owner).Where("shop_order_id = ?", shopOrderID).
		Updates(map[string]interface{}{
			"shop_order_number": number,
			"updated_at":        time.Now(),
		}).Error
}

// UpdateNote sets the note for one order's card, creating a bare card in
// the default column when absent
func (r *GormCardRepository) UpdateNote(ctx context.Context, owner board.OwnerRef, shopOrderID, note string) error {
	card, err := r.FindByOrderID(ctx, owner, shopOrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			fresh := board.NewCard(owner, shopOrderID, "", board.SystemColumnCode, 0)
			fresh.Note = note
			return r.db.WithContext(ctx).Create(fresh).Error
		}
		return err
	}
	card.SetNote(note)
	return r.db.WithContext(ctx).Save(card).Error
}
