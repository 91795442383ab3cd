package board

import (
	"context"
	"errors"

	"github.com/orderboard/backend/internal/domain/board"
	"github.com/orderboard/backend/internal/domain/shared"
)

// ErrUnknownColumn is returned by card operations that target a column
// the owner does not have.
var ErrUnknownColumn = shared.NewDomainError("UNKNOWN_COLUMN", "Column does not exist")

// CardService handles card placement operations.
type CardService struct {
	columnRepo board.ColumnRepository
	cardRepo   board.CardRepository
	scope      TransactionScope
}

// NewCardService creates a new CardService
func NewCardService(columnRepo board.ColumnRepository, cardRepo board.CardRepository, scope TransactionScope) *CardService {
	return &CardService{
		columnRepo: columnRepo,
		cardRepo:   cardRepo,
		scope:      scope,
	}
}

// Move upserts one order's card into the target column, then applies
// either the coarse index or a full reindex when the caller sent the
// column's order.
func (s *CardService) Move(ctx context.Context, owner board.OwnerRef, shopOrderID string, req MoveCardRequest) error {
	exists, err := s.columnRepo.ExistsByCode(ctx, owner, req.Column)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownColumn
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		card, err := s.upsertInto(ctx, repos.CardRepo(), owner, shopOrderID, req.Column, req.ShopOrderNumber)
		if err != nil {
			return err
		}

		if req.NewIndex != nil {
			card.MoveTo(req.Column, *req.NewIndex*board.PositionStep)
			if err := repos.CardRepo().Upsert(ctx, card); err != nil {
				return err
			}
		}

		if len(req.OrderedIDs) > 0 {
			return reindexColumn(ctx, repos.CardRepo(), owner, req.Column, req.OrderedIDs)
		}
		return nil
	})
}

// Reorder densely reindexes one column from a full top-to-bottom id list.
func (s *CardService) Reorder(ctx context.Context, owner board.OwnerRef, req ReorderCardsRequest) error {
	exists, err := s.columnRepo.ExistsByCode(ctx, owner, req.Column)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownColumn
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return reindexColumn(ctx, repos.CardRepo(), owner, req.Column, req.OrderedIDs)
	})
}

// SetNote stores a note on one order's card, creating the card when it
// does not exist yet. An empty note clears it.
func (s *CardService) SetNote(ctx context.Context, owner board.OwnerRef, shopOrderID, note string) error {
	return s.cardRepo.UpdateNote(ctx, owner, shopOrderID, note)
}

func (s *CardService) upsertInto(ctx context.Context, cards board.CardRepository, owner board.OwnerRef, shopOrderID, columnCode, number string) (*board.Card, error) {
	card, err := cards.FindByOrderID(ctx, owner, shopOrderID)
	if err == nil {
		card.ColumnCode = columnCode
		card.SetOrderNumber(number)
		if err := cards.Upsert(ctx, card); err != nil {
			return nil, err
		}
		return card, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	card = board.NewCard(owner, shopOrderID, number, columnCode, 0)
	if err := cards.Upsert(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// reindexColumn assigns positions 0, STEP, 2*STEP over the deduplicated
// id list, moving every listed card into the column. Cards in the column
// that are absent from the list keep their stored positions.
func reindexColumn(ctx context.Context, cards board.CardRepository, owner board.OwnerRef, columnCode string, orderedIDs []string) error {
	ids := board.NormalizeOrderIDs(orderedIDs)
	if len(ids) == 0 {
		return nil
	}
	for i, id := range ids {
		if err := cards.UpdatePlacement(ctx, owner, id, columnCode, i*board.PositionStep); err != nil {
			return err
		}
	}
	return nil
}
