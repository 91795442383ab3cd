package board

import (
	"context"

	"go.uber.org/zap"

	"github.com/orderboard/backend/internal/domain/board"
	"github.com/orderboard/backend/internal/infrastructure/telemetry"
)

// SyncService reconciles the stored cards with the external order feed.
// It only ever appends: existing cards keep their column and position,
// and at most a missing display number is backfilled.
type SyncService struct {
	columnService *ColumnService
	feed          OrderFeed
	scope         TransactionScope
	logger        *zap.Logger
}

// NewSyncService creates a new SyncService
func NewSyncService(columnService *ColumnService, feed OrderFeed, scope TransactionScope, logger *zap.Logger) *SyncService {
	return &SyncService{
		columnService: columnService,
		feed:          feed,
		scope:         scope,
		logger:        logger,
	}
}

// SyncResult reports what one reconciliation pass did.
type SyncResult struct {
	Fetched    int `json:"fetched"`
	Created    int `json:"created"`
	Backfilled int `json:"backfilled"`
}

// SyncExternal fetches the owner's orders and appends a card at the end
// of the system column for every order not seen before. Cards already on
// the board are never moved.
func (s *SyncService) SyncExternal(ctx context.Context, owner board.OwnerRef) (*SyncResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "board", "sync_external",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerKind, string(owner.Kind)))
	defer span.End()

	if _, err := s.columnService.EnsureSystem(ctx, owner); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	orders, err := s.feed.FetchOrders(ctx, owner)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderCount, len(orders))

	result := &SyncResult{Fetched: len(orders)}
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		cards, err := repos.CardRepo().FindAll(ctx, owner)
		if err != nil {
			return err
		}
		known := make(map[string]*board.Card, len(cards))
		for i := range cards {
			known[cards[i].ShopOrderID] = &cards[i]
		}

		tail, err := repos.CardRepo().NextPositionInColumn(ctx, owner, board.SystemColumnCode)
		if err != nil {
			return err
		}

		for _, o := range orders {
			if o.ID == "" {
				continue
			}
			if card, ok := known[o.ID]; ok {
				if card.ShopOrderNumber == "" && o.Number != "" {
					if err := repos.CardRepo().UpdateOrderNumber(ctx, owner, o.ID, o.Number); err != nil {
						return err
					}
					result.Backfilled++
				}
				continue
			}

			card := board.NewCard(owner, o.ID, o.Number, board.SystemColumnCode, tail)
			if err := repos.CardRepo().Upsert(ctx, card); err != nil {
				return err
			}
			tail += board.PositionStep
			result.Created++
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrCardCount, result.Created)

	s.logger.Info("order sync finished",
		zap.String("owner", owner.String()),
		zap.Int("fetched", result.Fetched),
		zap.Int("created", result.Created),
		zap.Int("backfilled", result.Backfilled))
	return result, nil
}
