package board

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orderboard/backend/internal/domain/board"
	"github.com/orderboard/backend/internal/domain/shared"
)

func testOwner(t *testing.T) board.OwnerRef {
	t.Helper()
	owner, err := board.NewShopOwner("demo-store.myshopify.com")
	require.NoError(t, err)
	return owner
}

func newColumnService(columnRepo *MockColumnRepository, cardRepo *MockCardRepository) *ColumnService {
	return NewColumnService(columnRepo, NewNoOpTransactionScope(columnRepo, cardRepo))
}

func TestColumnServiceEnsureSystem(t *testing.T) {
	ctx := context.Background()
	owner := testOwner(t)

	t.Run("returns existing system column", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		system := board.NewSystemColumn(owner, 1)
		columnRepo.On("FindByCode", ctx, owner, board.SystemColumnCode).Return(system, nil)

		svc := newColumnService(columnRepo, new(MockCardRepository))
		got, err := svc.EnsureSystem(ctx, owner)
		require.NoError(t, err)
		assert.Same(t, system, got)
		columnRepo.AssertExpectations(t)
	})

	t.Run("renames legacy system column in place", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		legacy := &board.Column{Code: "inbox", Name: "Inbox", IsSystem: true, Position: 3}
		columnRepo.On("FindByCode", ctx, owner, board.SystemColumnCode).Return(nil, shared.ErrNotFound)
		columnRepo.On("FindSystem", ctx, owner).Return(legacy, nil)
		columnRepo.On("Save", ctx, legacy).Return(nil)

		svc := newColumnService(columnRepo, new(MockCardRepository))
		got, err := svc.EnsureSystem(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, board.SystemColumnCode, got.Code)
		assert.Equal(t, "Inbox", got.Name)
		assert.Equal(t, 1, got.Position)
		assert.True(t, got.IsSystem)
		columnRepo.AssertExpectations(t)
	})

	t.Run("creates system column when none exists", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		columnRepo.On("FindByCode", ctx, owner, board.SystemColumnCode).Return(nil, shared.ErrNotFound)
		columnRepo.On("FindSystem", ctx, owner).Return(nil, shared.ErrNotFound)
		columnRepo.On("Save", ctx, mock.AnythingOfType("*board.Column")).Return(nil)

		svc := newColumnService(columnRepo, new(MockCardRepository))
		got, err := svc.EnsureSystem(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, board.SystemColumnCode, got.Code)
		assert.Equal(t, board.DefaultSystemColumnName, got.Name)
		assert.Equal(t, 1, got.Position)
		assert.True(t, got.IsSystem)
		columnRepo.AssertExpectations(t)
	})
}

func TestColumnServiceCreate(t *testing.T) {
	ctx := context.Background()
	owner := testOwner(t)

	t.Run("creates column after the last position", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		columnRepo.On("ExistsByCode", ctx, owner, "packed").Return(false, nil)
		columnRepo.On("MaxPosition", ctx, owner).Return(4, nil)
		columnRepo.On("Save", ctx, mock.MatchedBy(func(c *board.Column) bool {
			return c.Code == "packed" && c.Position == 5 && !c.IsSystem
		})).Return(nil)

		svc := newColumnService(columnRepo, new(MockCardRepository))
		resp, err := svc.Create(ctx, owner, CreateColumnRequest{
			Code: "packed", Name: "Packed", HexColor: "#ff9900",
		})
		require.NoError(t, err)
		assert.Equal(t, "packed", resp.Code)
		assert.Equal(t, "#FF9900", resp.HexColor)
		columnRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		columnRepo.On("ExistsByCode", ctx, owner, "packed").Return(true, nil)

		svc := newColumnService(columnRepo, new(MockCardRepository))
		_, err := svc.Create(ctx, owner, CreateColumnRequest{
			Code: "packed", Name: "Packed", HexColor: "#ff9900",
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})

	t.Run("rejects reserved code before touching storage", func(t *testing.T) {
		svc := newColumnService(new(MockColumnRepository), new(MockCardRepository))
		_, err := svc.Create(ctx, owner, CreateColumnRequest{
			Code: "NEW", Name: "Nope", HexColor: "#000000",
		})
		assert.ErrorIs(t, err, board.ErrReservedCode)
	})
}

func TestColumnServiceUpdate(t *testing.T) {
	ctx := context.Background()
	owner := testOwner(t)

	t.Run("updates display attributes", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		column, err := board.NewColumn(owner, "packed", "Packed", "", "#ff9900")
		require.NoError(t, err)
		columnRepo.On("FindByCode", ctx, owner, "packed").Return(column, nil)
		columnRepo.On("Save", ctx, column).Return(nil)

		svc := newColumnService(columnRepo, new(MockCardRepository))
		err = svc.Update(ctx, owner, "packed", UpdateColumnRequest{
			Name: "Boxed", Description: "boxed up", HexColor: "#00ff00",
		})
		require.NoError(t, err)
		assert.Equal(t, "Boxed", column.Name)
		assert.Equal(t, "#00FF00", column.HexColor)
	})

	t.Run("propagates not found", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		columnRepo.On("FindByCode", ctx, owner, "ghost").Return(nil, shared.ErrNotFound)

		svc := newColumnService(columnRepo, new(MockCardRepository))
		err := svc.Update(ctx, owner, "ghost", UpdateColumnRequest{Name: "X", HexColor: "#000000"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestColumnServiceDelete(t *testing.T) {
	ctx := context.Background()
	owner := testOwner(t)

	t.Run("soft deletes user column", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		column, err := board.NewColumn(owner, "packed", "Packed", "", "#ff9900")
		require.NoError(t, err)
		columnRepo.On("FindByCode", ctx, owner, "packed").Return(column, nil)
		columnRepo.On("Save", ctx, column).Return(nil)

		svc := newColumnService(columnRepo, new(MockCardRepository))
		require.NoError(t, svc.Delete(ctx, owner, "packed"))
		assert.True(t, column.IsDeleted())
	})

	t.Run("refuses system column", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		system := board.NewSystemColumn(owner, 1)
		columnRepo.On("FindByCode", ctx, owner, board.SystemColumnCode).Return(system, nil)

		svc := newColumnService(columnRepo, new(MockCardRepository))
		err := svc.Delete(ctx, owner, board.SystemColumnCode)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		columnRepo.AssertNotCalled(t, "Save", ctx, system)
	})
}

func TestColumnServiceReorder(t *testing.T) {
	ctx := context.Background()
	owner := testOwner(t)

	t.Run("explicit codes first then the rest in stored order", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		system := board.NewSystemColumn(owner, 1)
		a := &board.Column{Code: "a", Position: 2}
		b := &board.Column{Code: "b", Position: 3}
		c := &board.Column{Code: "c", Position: 4}

		columnRepo.On("MaxSystemPosition", ctx, owner).Return(1, nil)
		columnRepo.On("FindAll", ctx, owner).Return([]board.Column{*system, *a, *b, *c}, nil)
		columnRepo.On("Save", ctx, mock.AnythingOfType("*board.Column")).Return(nil)

		svc := newColumnService(columnRepo, new(MockCardRepository))
		require.NoError(t, svc.Reorder(ctx, owner, []string{"c", "a"}))

		positions := map[string]int{}
		for _, call := range columnRepo.Calls {
			if call.Method != "Save" {
				continue
			}
			col := call.Arguments.Get(1).(*board.Column)
			positions[col.Code] = col.Position
		}
		// base 1, explicit c=2 a=3, remaining user column b=4
		assert.Equal(t, map[string]int{"c": 2, "a": 3, "b": 4}, positions)
	})

	t.Run("unknown codes are skipped", func(t *testing.T) {
		columnRepo := new(MockColumnRepository)
		a := &board.Column{Code: "a", Position: 2}
		columnRepo.On("MaxSystemPosition", ctx, owner).Return(1, nil)
		columnRepo.On("FindAll", ctx, owner).Return([]board.Column{*a}, nil)
		columnRepo.On("Save", ctx, mock.AnythingOfType("*board.Column")).Return(nil)

		svc := newColumnService(columnRepo, new(MockCardRepository))
		require.NoError(t, svc.Reorder(ctx, owner, []string{"ghost", "a"}))
	})

	t.Run("rejects empty code list", func(t *testing.T) {
		svc := newColumnService(new(MockColumnRepository), new(MockCardRepository))
		err := svc.Reorder(ctx, owner, nil)
		assert.Error(t, err)
	})
}
