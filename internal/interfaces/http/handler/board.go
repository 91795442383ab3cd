package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	boardapp "github.com/orderboard/backend/internal/application/board"
	"github.com/orderboard/backend/internal/infrastructure/telemetry"
)

// BoardHandler serves the assembled kanban board.
type BoardHandler struct {
	BaseHandler
	boardService *boardapp.BoardService
	metrics      *telemetry.BoardMetrics
}

// NewBoardHandler creates a new BoardHandler. metrics may be nil.
func NewBoardHandler(boardService *boardapp.BoardService, metrics *telemetry.BoardMetrics) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		metrics:      metrics,
	}
}

// GetBoard returns all columns with their ordered cards, merged with the
// owner's current order feed. Bootstraps the system column on first load.
func (h *BoardHandler) GetBoard(c *gin.Context) {
	owner, ok := h.getOwner(c)
	if !ok {
		return
	}

	start := time.Now()
	resp, err := h.boardService.GetBoard(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordBoardAssembly(c.Request.Context(), time.Since(start))
	}

	h.Success(c, resp)
}
