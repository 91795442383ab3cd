package board

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PositionStep is the spacing between consecutive cards in a column.
// Reindexing assigns index*PositionStep so a card can be dropped between
// two neighbours without rewriting the whole column.
const PositionStep = 10

var orderGIDPattern = regexp.MustCompile(`/Order/(\d+)$`)

// Card is the board-side placement record for one external order. The
// order itself lives in Shopify; the card only remembers where the owner
// put it and any note they attached.
type Card struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	OwnerKind       OwnerKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_cards_owner_order,priority:1;index:idx_cards_owner_column,priority:1"`
	OwnerID         string    `gorm:"type:varchar(191);not null;uniqueIndex:idx_cards_owner_order,priority:2;index:idx_cards_owner_column,priority:2"`
	ShopOrderID     string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_cards_owner_order,priority:3;index"`
	ShopOrderNumber string    `gorm:"type:varchar(64)"`
	ColumnCode      string    `gorm:"type:varchar(64);not null;default:'new';index:idx_cards_owner_column,priority:3"`
	Position        int       `gorm:"not null;default:0;index:idx_cards_owner_column,priority:4"`
	Note            string    `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (Card) TableName() string {
	return "kanban_order_cards"
}

// NewCard creates a placement for an order in the given column.
func NewCard(owner OwnerRef, shopOrderID, shopOrderNumber, columnCode string, position int) *Card {
	now := time.Now()
	return &Card{
		OwnerKind:       owner.Kind,
		OwnerID:         owner.ID,
		ShopOrderID:     shopOrderID,
		ShopOrderNumber: shopOrderNumber,
		ColumnCode:      columnCode,
		Position:        position,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Owner returns the owning principal reference.
func (c *Card) Owner() OwnerRef {
	return OwnerRef{Kind: c.OwnerKind, ID: c.OwnerID}
}

// MoveTo places the card in a column at an absolute position.
func (c *Card) MoveTo(columnCode string, position int) {
	c.ColumnCode = columnCode
	c.Position = position
	c.UpdatedAt = time.Now()
}

// SetNote replaces the card's note. Empty clears it.
func (c *Card) SetNote(note string) {
	c.Note = note
	c.UpdatedAt = time.Now()
}

// SetOrderNumber updates the cached order display number.
func (c *Card) SetOrderNumber(number string) {
	c.ShopOrderNumber = number
	c.UpdatedAt = time.Now()
}

// ExtractOrderID normalizes an external order identifier. Numeric ids
// pass through, GraphQL GIDs like gid://shopify/Order/123 yield the
// trailing numeric part, anything else is returned trimmed as-is.
func ExtractOrderID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return raw
	}
	if m := orderGIDPattern.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// NormalizeOrderIDs dedupes and strips blank entries while keeping the
// first occurrence order. Used by column reindexing.
func NormalizeOrderIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
