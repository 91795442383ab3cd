package board

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orderboard/backend/internal/domain/board"
)

func newBoardService(columnRepo *MockColumnRepository, cardRepo *MockCardRepository, feed *MockOrderFeed) *BoardService {
	columnService := NewColumnService(columnRepo, NewNoOpTransactionScope(columnRepo, cardRepo))
	return NewBoardService(columnService, columnRepo, cardRepo, feed, zap.NewNop())
}

func TestBoardServiceGetBoard(t *testing.T) {
	ctx := context.Background()
	owner := testOwner(t)

	system := board.NewSystemColumn(owner, 1)
	packed := &board.Column{Code: "packed", Name: "Packed", HexColor: "#FF9900", Position: 2, Meta: `{"wip_limit":5}`}

	t.Run("groups orders into columns ordered by card position", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		cardRepo := new(MockCardRepository)
		feed := new(MockOrderFeed)

		columnRepo.On("FindByCode", ctx, owner, board.SystemColumnCode).Return(system, nil)
		columnRepo.On("FindAll", ctx, owner).Return([]board.Column{*system, *packed}, nil)
		feed.On("FetchOrders", ctx, owner).Return([]ExternalOrder{
			{ID: "1", Number: "#1001", CustomerName: "Ada Lovelace", TotalPrice: decimal.RequireFromString("19.90")},
			{ID: "2", Number: "#1002", CustomerName: "Alan Turing"},
			{ID: "3", Number: "#1003"},
		}, nil)
		cardRepo.On("FindAll", ctx, owner).Return([]board.Card{
			{ShopOrderID: "2", ColumnCode: "packed", Position: 10, Note: "gift wrap"},
			{ShopOrderID: "3", ColumnCode: "packed", Position: 0},
		}, nil)

		svc := newBoardService(columnRepo, cardRepo, feed)
		resp, err := svc.GetBoard(ctx, owner)
		require.NoError(t, err)
		require.Len(t, resp.Columns, 2)

		newCol := resp.Columns[0]
		assert.Equal(t, board.SystemColumnCode, newCol.Code)
		assert.True(t, newCol.IsSystem)
		require.Len(t, newCol.Tasks, 1)
		assert.Equal(t, "1", newCol.Tasks[0].ID)
		assert.Equal(t, "#1001", newCol.Tasks[0].Name)
		assert.Equal(t, "Ada Lovelace", newCol.Tasks[0].Business)

		packedCol := resp.Columns[1]
		require.Len(t, packedCol.Tasks, 2)
		assert.Equal(t, []string{"3", "2"}, []string{packedCol.Tasks[0].ID, packedCol.Tasks[1].ID})
		assert.JSONEq(t, `{"wip_limit":5}`, string(packedCol.Meta))
		assert.Empty(t, newCol.Meta)
		assert.Equal(t, "gift wrap", packedCol.Tasks[1].Note)
	})

	t.Run("orders pointing at missing columns fall back to the system column", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		cardRepo := new(MockCardRepository)
		feed := new(MockOrderFeed)

		columnRepo.On("FindByCode", ctx, owner, board.SystemColumnCode).Return(system, nil)
		columnRepo.On("FindAll", ctx, owner).Return([]board.Column{*system}, nil)
		feed.On("FetchOrders", ctx, owner).Return([]ExternalOrder{{ID: "9", Number: "#1009"}}, nil)
		cardRepo.On("FindAll", ctx, owner).Return([]board.Card{
			{ShopOrderID: "9", ColumnCode: "deleted-lane", Position: 30},
		}, nil)

		svc := newBoardService(columnRepo, cardRepo, feed)
		resp, err := svc.GetBoard(ctx, owner)
		require.NoError(t, err)
		require.Len(t, resp.Columns, 1)
		require.Len(t, resp.Columns[0].Tasks, 1)
		assert.Equal(t, "9", resp.Columns[0].Tasks[0].ID)
	})

	t.Run("falls back to stored cards when the feed fails", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		cardRepo := new(MockCardRepository)
		feed := new(MockOrderFeed)

		columnRepo.On("FindByCode", ctx, owner, board.SystemColumnCode).Return(system, nil)
		columnRepo.On("FindAll", ctx, owner).Return([]board.Column{*system}, nil)
		feed.On("FetchOrders", ctx, owner).Return(nil, errors.New("upstream 503"))
		cardRepo.On("FindAll", ctx, owner).Return([]board.Card{
			{ShopOrderID: "5", ShopOrderNumber: "#1005", ColumnCode: board.SystemColumnCode, Position: 10},
		}, nil)

		svc := newBoardService(columnRepo, cardRepo, feed)
		resp, err := svc.GetBoard(ctx, owner)
		require.NoError(t, err)
		require.Len(t, resp.Columns, 1)
		require.Len(t, resp.Columns[0].Tasks, 1)
		assert.Equal(t, "#1005", resp.Columns[0].Tasks[0].Name)
	})

	t.Run("orders without numbers are labelled by id", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		cardRepo := new(MockCardRepository)
		feed := new(MockOrderFeed)

		columnRepo.On("FindByCode", ctx, owner, board.SystemColumnCode).Return(system, nil)
		columnRepo.On("FindAll", ctx, owner).Return([]board.Column{*system}, nil)
		feed.On("FetchOrders", ctx, owner).Return([]ExternalOrder{{ID: "42"}}, nil)
		cardRepo.On("FindAll", ctx, owner).Return([]board.Card{}, nil)

		svc := newBoardService(columnRepo, cardRepo, feed)
		resp, err := svc.GetBoard(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, "#42", resp.Columns[0].Tasks[0].Name)
	})
}
