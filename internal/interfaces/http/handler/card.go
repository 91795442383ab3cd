package handler

import (
	"github.com/gin-gonic/gin"

	boardapp "github.com/orderboard/backend/internal/application/board"
	"github.com/orderboard/backend/internal/infrastructure/telemetry"
	"github.com/orderboard/backend/internal/interfaces/http/middleware"
)

// CardHandler manages order cards on the board.
type CardHandler struct {
	BaseHandler
	cardService *boardapp.CardService
	syncService *boardapp.SyncService
	metrics     *telemetry.BoardMetrics
}

// NewCardHandler creates a new CardHandler. metrics may be nil.
func NewCardHandler(cardService *boardapp.CardService, syncService *boardapp.SyncService, metrics *telemetry.BoardMetrics) *CardHandler {
	return &CardHandler{
		cardService: cardService,
		syncService: syncService,
		metrics:     metrics,
	}
}

// MoveCardRequest is the move card request body. OrderedIDs, when
// present, is the target column's full top-to-bottom order and wins over
// NewIndex.
type MoveCardRequest struct {
	Column          string   `json:"column" binding:"required"`
	OrderedIDs      []string `json:"ordered_ids" binding:"omitempty,dive,required"`
	NewIndex        *int     `json:"new_index" binding:"omitempty,min=0"`
	ShopOrderNumber string   `json:"shop_order_number" binding:"omitempty,max=64"`
}

// ReorderCardsRequest is the reorder cards request body.
type ReorderCardsRequest struct {
	Column     string   `json:"column" binding:"required"`
	OrderedIDs []string `json:"ordered_ids" binding:"required,min=1,dive,required"`
}

// SetNoteRequest is the note request body. A null or absent note clears it.
type SetNoteRequest struct {
	Note *string `json:"note" binding:"omitempty,max=2000"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type syncResponse struct {
	OK     bool `json:"ok"`
	Synced int  `json:"synced"`
}

// Move places one order's card into a column, creating the card when the
// order was never seen before.
func (h *CardHandler) Move(c *gin.Context) {
	owner, ok := h.getOwner(c)
	if !ok {
		return
	}
	orderID := c.Param("orderId")

	var req MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err := h.cardService.Move(c.Request.Context(), owner, orderID, boardapp.MoveCardRequest{
		Column:          req.Column,
		OrderedIDs:      req.OrderedIDs,
		NewIndex:        req.NewIndex,
		ShopOrderNumber: req.ShopOrderNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCardMoved(c.Request.Context(), string(owner.Kind))
	}

	h.Success(c, okResponse{OK: true})
}

// Reorder rewrites card positions in one column from the submitted order
func (h *CardHandler) Reorder(c *gin.Context) {
	owner, ok := h.getOwner(c)
	if !ok {
		return
	}

	var req ReorderCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err := h.cardService.Reorder(c.Request.Context(), owner, boardapp.ReorderCardsRequest{
		Column:     req.Column,
		OrderedIDs: req.OrderedIDs,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCardsReordered(c.Request.Context(), string(owner.Kind))
	}

	h.Success(c, okResponse{OK: true})
}

// SetNote stores a free-form note on the order's card
func (h *CardHandler) SetNote(c *gin.Context) {
	owner, ok := h.getOwner(c)
	if !ok {
		return
	}
	orderID := c.Param("orderId")

	var req SetNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	note := ""
	if req.Note != nil {
		note = *req.Note
	}

	if err := h.cardService.SetNote(c.Request.Context(), owner, orderID, note); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Sync reconciles the board against the owner's current order feed
func (h *CardHandler) Sync(c *gin.Context) {
	owner, ok := h.getOwner(c)
	if !ok {
		return
	}

	result, err := h.syncService.SyncExternal(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordSyncOrders(c.Request.Context(), result.Created, result.Backfilled)
	}

	h.Success(c, syncResponse{OK: true, Synced: result.Created})
}
