package handler

import (
	"github.com/gin-gonic/gin"

	boardapp "github.com/orderboard/backend/internal/application/board"
	"github.com/orderboard/backend/internal/infrastructure/telemetry"
	"github.com/orderboard/backend/internal/interfaces/http/middleware"
)

// ColumnHandler manages the owner's board columns.
type ColumnHandler struct {
	BaseHandler
	columnService *boardapp.ColumnService
	metrics       *telemetry.BoardMetrics
}

// NewColumnHandler creates a new ColumnHandler. metrics may be nil.
func NewColumnHandler(columnService *boardapp.ColumnService, metrics *telemetry.BoardMetrics) *ColumnHandler {
	return &ColumnHandler{
		columnService: columnService,
		metrics:       metrics,
	}
}

// CreateColumnRequest is the create column request body.
type CreateColumnRequest struct {
	Code        string `json:"code" binding:"required,max=64"`
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"desc" binding:"omitempty"`
	HexColor    string `json:"hex" binding:"required"`
}

// UpdateColumnRequest is the update column request body. The code in the
// path never changes.
type UpdateColumnRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"desc" binding:"omitempty"`
	HexColor    string `json:"hex" binding:"required"`
}

// ReorderColumnsRequest carries the new left-to-right order of the
// owner's non-system columns.
type ReorderColumnsRequest struct {
	Codes []string `json:"codes" binding:"required,min=1,dive,required"`
}

// Create adds a user column at the end of the board
func (h *ColumnHandler) Create(c *gin.Context) {
	owner, ok := h.getOwner(c)
	if !ok {
		return
	}

	var req CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.columnService.Create(c.Request.Context(), owner, boardapp.CreateColumnRequest{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		HexColor:    req.HexColor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordColumnCreated(c.Request.Context(), string(owner.Kind))
	}

	h.Created(c, resp)
}

// Update changes a column's display attributes
func (h *ColumnHandler) Update(c *gin.Context) {
	owner, ok := h.getOwner(c)
	if !ok {
		return
	}
	code := c.Param("code")

	var req UpdateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err := h.columnService.Update(c.Request.Context(), owner, code, boardapp.UpdateColumnRequest{
		Name:        req.Name,
		Description: req.Description,
		HexColor:    req.HexColor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Delete soft-deletes a user column. The system column is protected.
func (h *ColumnHandler) Delete(c *gin.Context) {
	owner, ok := h.getOwner(c)
	if !ok {
		return
	}
	code := c.Param("code")

	if err := h.columnService.Delete(c.Request.Context(), owner, code); err != nil {
		h.HandleError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordColumnDeleted(c.Request.Context(), string(owner.Kind))
	}

	h.NoContent(c)
}

// Reorder rewrites column positions from the submitted code order
func (h *ColumnHandler) Reorder(c *gin.Context) {
	owner, ok := h.getOwner(c)
	if !ok {
		return
	}

	var req ReorderColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.columnService.Reorder(c.Request.Context(), owner, req.Codes); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
