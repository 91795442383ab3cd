package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boardapp "github.com/orderboard/backend/internal/application/board"
	"github.com/orderboard/backend/internal/domain/board"
)

func TestBoardHandler_GetBoard_BootstrapsSystemColumn(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/kanban/board", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                    `json:"success"`
		Data    boardapp.BoardResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data.Columns, 1)
	assert.Equal(t, board.SystemColumnCode, resp.Data.Columns[0].Code)
	assert.True(t, resp.Data.Columns[0].IsSystem)
	assert.Empty(t, resp.Data.Columns[0].Tasks)
}

func TestBoardHandler_GetBoard_GroupsOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createColumn(t, "packed")

	env.feed.orders = []boardapp.ExternalOrder{
		{ID: "1001", Number: "#1001", CustomerName: "Ada Lovelace", TotalPrice: decimal.NewFromInt(45)},
		{ID: "1002", Number: "#1002", CustomerName: "Alan Turing", TotalPrice: decimal.NewFromInt(90)},
		{ID: "1003", Number: "#1003"},
	}

	// 1002 was dragged into packed, 1003 points at a column that is gone
	require.NoError(t, env.cardService.Move(ctx, env.owner, "1002", boardapp.MoveCardRequest{Column: "packed"}))
	require.NoError(t, env.cardRepo.Upsert(ctx, board.NewCard(env.owner, "1003", "#1003", "ghost", 0)))

	w := env.do(t, http.MethodGet, "/api/v1/kanban/board", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data boardapp.BoardResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	byCode := map[string]boardapp.BoardColumn{}
	for _, c := range resp.Data.Columns {
		byCode[c.Code] = c
	}
	require.Contains(t, byCode, board.SystemColumnCode)
	require.Contains(t, byCode, "packed")

	// 1001 never had a card, 1003 falls back to the system column
	systemIDs := taskIDs(byCode[board.SystemColumnCode])
	assert.ElementsMatch(t, []string{"1001", "1003"}, systemIDs)
	assert.Equal(t, []string{"1002"}, taskIDs(byCode["packed"]))
	assert.Equal(t, "Alan Turing", byCode["packed"].Tasks[0].Business)
}

func TestBoardHandler_GetBoard_FeedDownRendersCards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.cardService.SetNote(ctx, env.owner, "1001", "stored"))
	env.feed.err = assert.AnError

	w := env.do(t, http.MethodGet, "/api/v1/kanban/board", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data boardapp.BoardResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Columns)
	require.Len(t, resp.Data.Columns[0].Tasks, 1)
	assert.Equal(t, "1001", resp.Data.Columns[0].Tasks[0].ID)
	assert.Equal(t, "stored", resp.Data.Columns[0].Tasks[0].Note)
}

func taskIDs(c boardapp.BoardColumn) []string {
	ids := make([]string, 0, len(c.Tasks))
	for _, task := range c.Tasks {
		ids = append(ids, task.ID)
	}
	return ids
}
