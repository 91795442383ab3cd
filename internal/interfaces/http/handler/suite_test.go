package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	boardapp "github.com/orderboard/backend/internal/application/board"
	"github.com/orderboard/backend/internal/domain/board"
	"github.com/orderboard/backend/internal/interfaces/http/dto"
	"github.com/orderboard/backend/internal/interfaces/http/middleware"
)

// testEnv wires the board services onto in-memory repositories behind a
// router whose auth is replaced by a fixed owner.
type testEnv struct {
	owner      board.OwnerRef
	columnRepo *memColumnRepo
	cardRepo   *memCardRepo
	feed       *memOrderFeed

	columnService *boardapp.ColumnService
	cardService   *boardapp.CardService

	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	owner, err := board.NewShopOwner("demo.myshopify.com")
	require.NoError(t, err)

	columnRepo := newMemColumnRepo()
	cardRepo := newMemCardRepo()
	feed := &memOrderFeed{}
	scope := boardapp.NewNoOpTransactionScope(columnRepo, cardRepo)

	columnService := boardapp.NewColumnService(columnRepo, scope)
	cardService := boardapp.NewCardService(columnRepo, cardRepo, scope)
	syncService := boardapp.NewSyncService(columnService, feed, scope, zap.NewNop())
	boardService := boardapp.NewBoardService(columnService, columnRepo, cardRepo, feed, zap.NewNop())

	boardHandler := NewBoardHandler(boardService, nil)
	columnHandler := NewColumnHandler(columnService, nil)
	cardHandler := NewCardHandler(cardService, syncService, nil)

	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) {
		c.Set(middleware.OwnerKey, owner)
		c.Next()
	})
	api.GET("/kanban/board", boardHandler.GetBoard)
	api.POST("/kanban/columns", columnHandler.Create)
	api.PUT("/kanban/columns/reorder", columnHandler.Reorder)
	api.PUT("/kanban/columns/:code", columnHandler.Update)
	api.DELETE("/kanban/columns/:code", columnHandler.Delete)
	api.PUT("/kanban/orders/reorder", cardHandler.Reorder)
	api.PUT("/kanban/orders/:orderId/move", cardHandler.Move)
	api.PUT("/kanban/orders/:orderId/note", cardHandler.SetNote)
	api.POST("/kanban/orders/sync", cardHandler.Sync)

	return &testEnv{
		owner:         owner,
		columnRepo:    columnRepo,
		cardRepo:      cardRepo,
		feed:          feed,
		columnService: columnService,
		cardService:   cardService,
		router:        router,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
