package board

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orderboard/backend/internal/domain/board"
)

// CreateColumnRequest carries the attributes for a new user column.
type CreateColumnRequest struct {
	Code        string
	Name        string
	Description string
	HexColor    string
}

// UpdateColumnRequest carries the mutable display attributes of a column.
// The code itself never changes after creation.
type UpdateColumnRequest struct {
	Name        string
	Description string
	HexColor    string
}

// ColumnResponse is the summary returned after creating a column. Meta
// is an opaque JSON blob passed back exactly as stored.
type ColumnResponse struct {
	Code        string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"desc"`
	HexColor    string          `json:"hex"`
	Meta        json.RawMessage `json:"meta,omitempty"`
}

// MoveCardRequest places one order's card into a column. OrderedIDs,
// when present, is the full top-to-bottom order of the target column and
// triggers a dense reindex; NewIndex is the coarse fallback.
type MoveCardRequest struct {
	Column          string
	OrderedIDs      []string
	NewIndex        *int
	ShopOrderNumber string
}

// ReorderCardsRequest reindexes one column.
type ReorderCardsRequest struct {
	Column     string
	OrderedIDs []string
}

// ExternalOrder is one order row from the external commerce feed.
type ExternalOrder struct {
	ID           string
	Number       string
	CustomerName string
	TotalPrice   decimal.Decimal
	CreatedAt    time.Time
}

// BoardTask is one card as rendered on the board.
type BoardTask struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Business string          `json:"business"`
	Total    decimal.Decimal `json:"total"`
	Note     string          `json:"note,omitempty"`
}

// BoardColumn is one lane with its ordered tasks.
type BoardColumn struct {
	Code        string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"desc"`
	HexColor    string          `json:"hex"`
	Meta        json.RawMessage `json:"meta,omitempty"`
	IsSystem    bool            `json:"is_system"`
	Tasks       []BoardTask     `json:"tasks"`
}

// BoardResponse is the full board for one owner.
type BoardResponse struct {
	Columns []BoardColumn `json:"columns"`
}

func newColumnResponse(c *board.Column) *ColumnResponse {
	return &ColumnResponse{
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		HexColor:    c.HexColor,
		Meta:        json.RawMessage(c.Meta),
	}
}
