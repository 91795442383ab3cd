package handler

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	boardapp "github.com/orderboard/backend/internal/application/board"
	"github.com/orderboard/backend/internal/domain/board"
	"github.com/orderboard/backend/internal/domain/shared"
)

// memColumnRepo is an in-memory board.ColumnRepository for handler tests.
type memColumnRepo struct {
	mu      sync.Mutex
	columns []*board.Column
}

func newMemColumnRepo() *memColumnRepo {
	return &memColumnRepo{}
}

func sameOwner(kind board.OwnerKind, id string, owner board.OwnerRef) bool {
	return kind == owner.Kind && id == owner.ID
}

func (r *memColumnRepo) FindByCode(_ context.Context, owner board.OwnerRef, code string) (*board.Column, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.columns {
		if sameOwner(c.OwnerKind, c.OwnerID, owner) && c.Code == code && c.DeletedAt == nil {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memColumnRepo) FindAll(_ context.Context, owner board.OwnerRef) ([]board.Column, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []board.Column
	for _, c := range r.columns {
		if sameOwner(c.OwnerKind, c.OwnerID, owner) && c.DeletedAt == nil {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memColumnRepo) FindSystem(_ context.Context, owner board.OwnerRef) (*board.Column, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.columns {
		if sameOwner(c.OwnerKind, c.OwnerID, owner) && c.IsSystem && c.DeletedAt == nil {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memColumnRepo) ExistsByCode(ctx context.Context, owner board.OwnerRef, code string) (bool, error) {
	_, err := r.FindByCode(ctx, owner, code)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *memColumnRepo) MaxPosition(_ context.Context, owner board.OwnerRef) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, c := range r.columns {
		if sameOwner(c.OwnerKind, c.OwnerID, owner) && c.DeletedAt == nil && c.Position > max {
			max = c.Position
		}
	}
	return max, nil
}

func (r *memColumnRepo) MaxSystemPosition(_ context.Context, owner board.OwnerRef) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, c := range r.columns {
		if sameOwner(c.OwnerKind, c.OwnerID, owner) && c.IsSystem && c.DeletedAt == nil && c.Position > max {
			max = c.Position
		}
	}
	return max, nil
}

func (r *memColumnRepo) Save(_ context.Context, column *board.Column) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if column.ID == uuid.Nil {
		column.ID = uuid.New()
	}
	for i, c := range r.columns {
		if c.ID == column.ID {
			r.columns[i] = column
			return nil
		}
	}
	r.columns = append(r.columns, column)
	return nil
}

// memCardRepo is an in-memory board.CardRepository for handler tests.
type memCardRepo struct {
	mu     sync.Mutex
	cards  []*board.Card
	nextID uint64
}

func newMemCardRepo() *memCardRepo {
	return &memCardRepo{}
}

func (r *memCardRepo) find(owner board.OwnerRef, shopOrderID string) *board.Card {
	for _, c := range r.cards {
		if sameOwner(c.OwnerKind, c.OwnerID, owner) && c.ShopOrderID == shopOrderID {
			return c
		}
	}
	return nil
}

func (r *memCardRepo) FindByOrderID(_ context.Context, owner board.OwnerRef, shopOrderID string) (*board.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.find(owner, shopOrderID); c != nil {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCardRepo) FindAll(_ context.Context, owner board.OwnerRef) ([]board.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []board.Card
	for _, c := range r.cards {
		if sameOwner(c.OwnerKind, c.OwnerID, owner) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCardRepo) NextPositionInColumn(_ context.Context, owner board.OwnerRef, columnCode string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := 0
	for _, c := range r.cards {
		if sameOwner(c.OwnerKind, c.OwnerID, owner) && c.ColumnCode == columnCode && c.Position+board.PositionStep > next {
			next = c.Position + board.PositionStep
		}
	}
	return next, nil
}

func (r *memCardRepo) Upsert(_ context.Context, card *board.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing := r.find(card.Owner(), card.ShopOrderID); existing != nil {
		*existing = *card
		existing.ID = card.ID
		return nil
	}
	r.nextID++
	card.ID = r.nextID
	r.cards = append(r.cards, card)
	return nil
}

func (r *memCardRepo) UpdatePlacement(ctx context.Context, owner board.OwnerRef, shopOrderID, columnCode string, position int) error {
	r.mu.Lock()
	if c := r.find(owner, shopOrderID); c != nil {
		c.MoveTo(columnCode, position)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()
	return r.Upsert(ctx, board.NewCard(owner, shopOrderID, "", columnCode, position))
}

func (r *memCardRepo) UpdateOrderNumber(_ context.Context, owner board.OwnerRef, shopOrderID, number string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.find(owner, shopOrderID); c != nil {
		c.ShopOrderNumber = number
	}
	return nil
}

func (r *memCardRepo) UpdateNote(ctx context.Context, owner board.OwnerRef, shopOrderID, note string) error {
	r.mu.Lock()
	if c := r.find(owner, shopOrderID); c != nil {
		c.Note = note
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()
	fresh := board.NewCard(owner, shopOrderID, "", board.SystemColumnCode, 0)
	fresh.Note = note
	return r.Upsert(ctx, fresh)
}

// memOrderFeed serves a canned order list.
type memOrderFeed struct {
	orders []boardapp.ExternalOrder
	err    error
}

func (f *memOrderFeed) FetchOrders(_ context.Context, _ board.OwnerRef) ([]boardapp.ExternalOrder, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

var _ board.ColumnRepository = (*memColumnRepo)(nil)
var _ board.CardRepository = (*memCardRepo)(nil)
var _ boardapp.OrderFeed = (*memOrderFeed)(nil)
