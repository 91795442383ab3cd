package board

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orderboard/backend/internal/domain/shared"
)

const (
	// SystemColumnCode is the reserved code of the per-owner system column.
	// New cards land there and the column can never be deleted.
	SystemColumnCode = "new"

	// DefaultSystemColumnName is used when the system column is bootstrapped.
	DefaultSystemColumnName = "New Orders"

	// DefaultHexColor is the fallback accent color for columns.
	DefaultHexColor = "#0284C7"
)

var (
	columnCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	hexColorPattern   = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

	// ErrReservedCode is returned when a caller tries to create or rename
	// a column to the reserved system code.
	ErrReservedCode = shared.NewDomainError("RESERVED_CODE", "Column code is reserved")
)

// Column is a vertical lane on an owner's board. Exactly one column per
// owner is the system column; the rest are user defined. Deleted columns
// stay in storage with DeletedAt set and are filtered out explicitly.
type Column struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerKind   OwnerKind  `gorm:"type:varchar(16);not null;uniqueIndex:idx_columns_owner_code,priority:1;index:idx_columns_owner_position,priority:1"`
	OwnerID     string     `gorm:"type:varchar(191);not null;uniqueIndex:idx_columns_owner_code,priority:2;index:idx_columns_owner_position,priority:2"`
	Code        string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_columns_owner_code,priority:3,where:deleted_at IS NULL"`
	Name        string     `gorm:"type:varchar(100);not null"`
	Description string     `gorm:"type:text"`
	HexColor    string     `gorm:"type:char(7);not null;default:'#0284C7'"`
	Position    int        `gorm:"not null;default:0;index:idx_columns_owner_position,priority:3"`
	Meta        string     `gorm:"type:jsonb"`
	IsSystem    bool       `gorm:"not null;default:false"`
	DeletedAt   *time.Time `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (Column) TableName() string {
	return "kanban_order_columns"
}

// NewColumn creates a user-defined column. Code, name and color are
// validated and normalized; the reserved system code is rejected.
func NewColumn(owner OwnerRef, code, name, description, hexColor string) (*Column, error) {
	code = strings.TrimSpace(code)
	if err := ValidateColumnCode(code); err != nil {
		return nil, err
	}
	if strings.EqualFold(code, SystemColumnCode) {
		return nil, ErrReservedCode
	}
	name = strings.TrimSpace(name)
	if err := validateColumnName(name); err != nil {
		return nil, err
	}
	hexColor = strings.ToUpper(strings.TrimSpace(hexColor))
	if err := validateHexColor(hexColor); err != nil {
		return nil, err
	}
	if owner.IsZero() {
		return nil, shared.NewDomainError("INVALID_OWNER", "Column owner is required")
	}

	now := time.Now()
	return &Column{
		ID:          uuid.New(),
		OwnerKind:   owner.Kind,
		OwnerID:     owner.ID,
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(description),
		HexColor:    hexColor,
		Meta:        "{}",
		IsSystem:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewSystemColumn creates the reserved system column for an owner.
func NewSystemColumn(owner OwnerRef, position int) *Column {
	now := time.Now()
	return &Column{
		ID:          uuid.New(),
		OwnerKind:   owner.Kind,
		OwnerID:     owner.ID,
		Code:        SystemColumnCode,
		Name:        DefaultSystemColumnName,
		Description: "System column",
		HexColor:    DefaultHexColor,
		Position:    position,
		Meta:        "{}",
		IsSystem:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Owner returns the owning principal reference.
func (c *Column) Owner() OwnerRef {
	return OwnerRef{Kind: c.OwnerKind, ID: c.OwnerID}
}

// Update applies new display attributes. The code of a system column is
// immutable but its name, description and color may still change.
func (c *Column) Update(name, description, hexColor string) error {
	name = strings.TrimSpace(name)
	if err := validateColumnName(name); err != nil {
		return err
	}
	hexColor = strings.ToUpper(strings.TrimSpace(hexColor))
	if err := validateHexColor(hexColor); err != nil {
		return err
	}

	c.Name = name
	c.Description = strings.TrimSpace(description)
	c.HexColor = hexColor
	c.UpdatedAt = time.Now()
	return nil
}

// PromoteToSystem converts a legacy system column in place to the
// reserved code, filling blank display attributes with defaults.
func (c *Column) PromoteToSystem() {
	c.Code = SystemColumnCode
	if strings.TrimSpace(c.Name) == "" {
		c.Name = DefaultSystemColumnName
	}
	if strings.TrimSpace(c.HexColor) == "" {
		c.HexColor = DefaultHexColor
	}
	c.Position = 1
	c.IsSystem = true
	c.UpdatedAt = time.Now()
}

// SetPosition moves the column to an absolute position.
func (c *Column) SetPosition(position int) {
	c.Position = position
	c.UpdatedAt = time.Now()
}

// SoftDelete marks the column deleted. System columns cannot be deleted.
func (c *Column) SoftDelete() error {
	if c.IsSystem {
		return shared.ErrForbidden
	}
	now := time.Now()
	c.DeletedAt = &now
	c.UpdatedAt = now
	return nil
}

// IsDeleted reports whether the column has been soft deleted.
func (c *Column) IsDeleted() bool {
	return c.DeletedAt != nil
}

// ValidateColumnCode checks the shape shared by create and update:
// 1..64 chars, leading alphanumeric, then alphanumerics, dot, underscore
// or hyphen.
func ValidateColumnCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Column code is required")
	}
	if len(code) > 64 {
		return shared.NewDomainError("INVALID_CODE", "Column code cannot exceed 64 characters")
	}
	if !columnCodePattern.MatchString(code) {
		return shared.NewDomainError("INVALID_CODE", "Column code must start with a letter or digit and contain only letters, digits, dots, underscores or hyphens")
	}
	return nil
}

func validateColumnName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Column name is required")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Column name cannot exceed 100 characters")
	}
	return nil
}

func validateHexColor(hex string) error {
	if !hexColorPattern.MatchString(hex) {
		return shared.NewDomainError("INVALID_COLOR", "Color must be a #RRGGBB hex value")
	}
	return nil
}
