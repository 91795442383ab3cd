package board

import (
	"context"
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"github.com/orderboard/backend/internal/domain/board"
	"github.com/orderboard/backend/internal/infrastructure/telemetry"
)

// OrderFeed pulls the owner's orders from the external commerce
// platform. Implementations live in infrastructure.
type OrderFeed interface {
	// FetchOrders returns the owner's recent orders. Owners without a
	// connected shop yield an empty slice.
	FetchOrders(ctx context.Context, owner board.OwnerRef) ([]ExternalOrder, error)
}

// BoardService assembles the full board view: columns in order, orders
// from the feed grouped into them via the stored cards.
type BoardService struct {
	columnService *ColumnService
	columnRepo    board.ColumnRepository
	cardRepo      board.CardRepository
	feed          OrderFeed
	logger        *zap.Logger
}

// NewBoardService creates a new BoardService
func NewBoardService(
	columnService *ColumnService,
	columnRepo board.ColumnRepository,
	cardRepo board.CardRepository,
	feed OrderFeed,
	logger *zap.Logger,
) *BoardService {
	return &BoardService{
		columnService: columnService,
		columnRepo:    columnRepo,
		cardRepo:      cardRepo,
		feed:          feed,
		logger:        logger,
	}
}

// GetBoard returns the owner's board. The system column is bootstrapped
// first; orders whose card points at a missing or deleted column fall
// back into it. When the feed is unreachable the stored cards are
// rendered alone so the board still loads.
func (s *BoardService) GetBoard(ctx context.Context, owner board.OwnerRef) (*BoardResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "board", "get_board",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerKind, string(owner.Kind)))
	defer span.End()

	if _, err := s.columnService.EnsureSystem(ctx, owner); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	columns, err := s.columnRepo.FindAll(ctx, owner)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	orders, err := s.feed.FetchOrders(ctx, owner)
	if err != nil {
		s.logger.Warn("order feed unavailable, rendering stored cards only",
			zap.String("owner", owner.String()),
			zap.Error(err))
		telemetry.AddEvent(span, "feed_unavailable",
			telemetry.SpanAttrOwnerKind, string(owner.Kind))
		orders = nil
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderCount, len(orders))

	cards, err := s.cardRepo.FindAll(ctx, owner)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	cardByOrder := make(map[string]*board.Card, len(cards))
	for i := range cards {
		cardByOrder[cards[i].ShopOrderID] = &cards[i]
	}

	if len(orders) == 0 {
		orders = ordersFromCards(cards)
	}

	existing := make(map[string]struct{}, len(columns))
	for i := range columns {
		existing[columns[i].Code] = struct{}{}
	}

	type positioned struct {
		task BoardTask
		pos  int
	}
	byColumn := make(map[string][]positioned)
	for _, o := range orders {
		if o.ID == "" {
			continue
		}
		code := board.SystemColumnCode
		pos := 0
		note := ""
		if card, ok := cardByOrder[o.ID]; ok {
			if _, known := existing[card.ColumnCode]; known {
				code = card.ColumnCode
			}
			pos = card.Position
			note = card.Note
		}

		name := o.Number
		if name == "" {
			name = "#" + o.ID
		}
		byColumn[code] = append(byColumn[code], positioned{
			task: BoardTask{
				ID:       o.ID,
				Name:     name,
				Business: o.CustomerName,
				Total:    o.TotalPrice,
				Note:     note,
			},
			pos: pos,
		})
	}

	resp := &BoardResponse{Columns: make([]BoardColumn, 0, len(columns))}
	for i := range columns {
		c := &columns[i]
		entries := byColumn[c.Code]
		sort.SliceStable(entries, func(a, b int) bool { return entries[a].pos < entries[b].pos })

		tasks := make([]BoardTask, 0, len(entries))
		for _, e := range entries {
			tasks = append(tasks, e.task)
		}
		resp.Columns = append(resp.Columns, BoardColumn{
			Code:        c.Code,
			Name:        c.Name,
			Description: c.Description,
			HexColor:    c.HexColor,
			Meta:        json.RawMessage(c.Meta),
			IsSystem:    c.IsSystem,
			Tasks:       tasks,
		})
	}
	return resp, nil
}

func ordersFromCards(cards []board.Card) []ExternalOrder {
	orders := make([]ExternalOrder, 0, len(cards))
	for i := range cards {
		orders = append(orders, ExternalOrder{
			ID:     cards[i].ShopOrderID,
			Number: cards[i].ShopOrderNumber,
		})
	}
	return orders
}
