package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/orderboard/backend/internal/domain/board"
	"github.com/orderboard/backend/internal/domain/shared"
)

// GormColumnRepository implements board.ColumnRepository using GORM
type GormColumnRepository struct {
	db *gorm.DB
}

// NewGormColumnRepository creates a new GormColumnRepository
func NewGormColumnRepository(db *gorm.DB) *GormColumnRepository {
	return &GormColumnRepository{db: db}
}

var _ board.ColumnRepository = (*GormColumnRepository)(nil)

func (r *GormColumnRepository) scoped(ctx context.Context, owner board.OwnerRef) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&board.Column{}).
		Where("owner_kind = ? AND owner_id = ? AND deleted_at IS NULL", owner.Kind, owner.ID)
}

// FindByCode finds a live column by code
func (r *GormColumnRepository) FindByCode(ctx context.Context, owner board.OwnerRef, code string) (*board.Column, error) {
	var column board.Column
	if err := r.scoped(ctx, owner).Where("code = ?", code).First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &column, nil
}

// FindAll returns all live columns for the owner ordered by position
func (r *GormColumnRepository) FindAll(ctx context.Context, owner board.OwnerRef) ([]board.Column, error) {
	var columns []board.Column
	if err := r.scoped(ctx, owner).Order("position ASC, code ASC").Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

// FindSystem returns the owner's system column, if any
func (r *GormColumnRepository) FindSystem(ctx context.Context, owner board.OwnerRef) (*board.Column, error) {
	var column board.Column
	if err := r.scoped(ctx, owner).Where("is_system = ?", true).
		Order("position ASC").First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &column, nil
}

// ExistsByCode checks whether a live column uses the code
func (r *GormColumnRepository) ExistsByCode(ctx context.Context, owner board.OwnerRef, code string) (bool, error) {
	var count int64
	if err := r.scoped(ctx, owner).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MaxPosition returns the highest position among live columns
func (r *GormColumnRepository) MaxPosition(ctx context.Context, owner board.OwnerRef) (int, error) {
	var max int
	if err := r.scoped(ctx, owner).
		Select("COALESCE(MAX(position), 0)").Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

// MaxSystemPosition returns the highest position among live system columns
func (r *GormColumnRepository) MaxSystemPosition(ctx context.Context, owner board.OwnerRef) (int, error) {
	var max int
	if err := r.scoped(ctx, owner).Where("is_system = ?", true).
		Select("COALESCE(MAX(position), 0)").Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

// Save creates or updates a column
func (r *GormColumnRepository) Save(ctx context.Context, column *board.Column) error {
	return r.db.WithContext(ctx).Save(column).Error
}
