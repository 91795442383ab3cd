package board

import (
	"context"
	"errors"

	"github.com/orderboard/backend/internal/domain/board"
	"github.com/orderboard/backend/internal/domain/shared"
)

// ColumnService handles column lifecycle operations for one owner's board.
type ColumnService struct {
	columnRepo board.ColumnRepository
	scope      TransactionScope
}

// NewColumnService creates a new ColumnService
func NewColumnService(columnRepo board.ColumnRepository, scope TransactionScope) *ColumnService {
	return &ColumnService{
		columnRepo: columnRepo,
		scope:      scope,
	}
}

// EnsureSystem guarantees the owner has a system column with the
// reserved code. A legacy system column under another code is renamed in
// place; otherwise the column is created at position 1.
func (s *ColumnService) EnsureSystem(ctx context.Context, owner board.OwnerRef) (*board.Column, error) {
	column, err := s.columnRepo.FindByCode(ctx, owner, board.SystemColumnCode)
	if err == nil {
		return column, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	var ensured *board.Column
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// rechecked inside the transaction to keep the bootstrap race free
		existing, err := repos.ColumnRepo().FindByCode(ctx, owner, board.SystemColumnCode)
		if err == nil {
			ensured = existing
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		legacy, err := repos.ColumnRepo().FindSystem(ctx, owner)
		if err == nil {
			legacy.PromoteToSystem()
			if err := repos.ColumnRepo().Save(ctx, legacy); err != nil {
				return err
			}
			ensured = legacy
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		created := board.NewSystemColumn(owner, 1)
		if err := repos.ColumnRepo().Save(ctx, created); err != nil {
			return err
		}
		ensured = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ensured, nil
}

// Create adds a user column after the last existing column.
func (s *ColumnService) Create(ctx context.Context, owner board.OwnerRef, req CreateColumnRequest) (*ColumnResponse, error) {
	column, err := board.NewColumn(owner, req.Code, req.Name, req.Description, req.HexColor)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.ColumnRepo().ExistsByCode(ctx, owner, column.Code)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Column with this code already exists")
		}

		maxPos, err := repos.ColumnRepo().MaxPosition(ctx, owner)
		if err != nil {
			return err
		}
		column.SetPosition(maxPos + 1)

		return repos.ColumnRepo().Save(ctx, column)
	})
	if err != nil {
		return nil, err
	}

	return newColumnResponse(column), nil
}

// Update changes a column's display attributes. The code is immutable.
func (s *ColumnService) Update(ctx context.Context, owner board.OwnerRef, code string, req UpdateColumnRequest) error {
	column, err := s.columnRepo.FindByCode(ctx, owner, code)
	if err != nil {
		return err
	}
	if err := column.Update(req.Name, req.Description, req.HexColor); err != nil {
		return err
	}
	return s.columnRepo.Save(ctx, column)
}

// Delete soft deletes a user column. The system column is protected.
func (s *ColumnService) Delete(ctx context.Context, owner board.OwnerRef, code string) error {
	column, err := s.columnRepo.FindByCode(ctx, owner, code)
	if err != nil {
		return err
	}
	if err := column.SoftDelete(); err != nil {
		return err
	}
	return s.columnRepo.Save(ctx, column)
}

// Reorder rewrites user column positions. Explicit codes come first in
// the given order, starting right after the last system column; the
// remaining user columns follow in their current relative order. Unknown
// codes are skipped.
func (s *ColumnService) Reorder(ctx context.Context, owner board.OwnerRef, codes []string) error {
	if len(codes) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "At least one column code is required")
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		base, err := repos.ColumnRepo().MaxSystemPosition(ctx, owner)
		if err != nil {
			return err
		}
		start := base + 1

		columns, err := repos.ColumnRepo().FindAll(ctx, owner)
		if err != nil {
			return err
		}
		byCode := make(map[string]*board.Column, len(columns))
		for i := range columns {
			byCode[columns[i].Code] = &columns[i]
		}

		explicit := make(map[string]struct{}, len(codes))
		for i, code := range codes {
			explicit[code] = struct{}{}
			column, ok := byCode[code]
			if !ok {
				continue
			}
			column.SetPosition(start + i)
			if err := repos.ColumnRepo().Save(ctx, column); err != nil {
				return err
			}
		}

		// columns come back ordered by position, so the remaining user
		// columns keep their relative order
		offset := start + len(codes)
		j := 0
		for i := range columns {
			column := &columns[i]
			if column.IsSystem {
				continue
			}
			if _, ok := explicit[column.Code]; ok {
				continue
			}
			column.SetPosition(offset + j)
			j++
			if err := repos.ColumnRepo().Save(ctx, column); err != nil {
				return err
			}
		}
		return nil
	})
}
