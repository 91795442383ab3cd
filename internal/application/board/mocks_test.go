package board

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/orderboard/backend/internal/domain/board"
)

// MockColumnRepository is a mock implementation of board.ColumnRepository
type MockColumnRepository struct {
	mock.Mock
}

func (m *MockColumnRepository) FindByCode(ctx context.Context, owner board.OwnerRef, code string) (*board.Column, error) {
	args := m.Called(ctx, owner, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.Column), args.Error(1)
}

func (m *MockColumnRepository) FindAll(ctx context.Context, owner board.OwnerRef) ([]board.Column, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]board.Column), args.Error(1)
}

func (m *MockColumnRepository) FindSystem(ctx context.Context, owner board.OwnerRef) (*board.Column, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.Column), args.Error(1)
}

func (m *MockColumnRepository) ExistsByCode(ctx context.Context, owner board.OwnerRef, code string) (bool, error) {
	args := m.Called(ctx, owner, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockColumnRepository) MaxPosition(ctx context.Context, owner board.OwnerRef) (int, error) {
	args := m.Called(ctx, owner)
	return args.Int(0), args.Error(1)
}

func (m *MockColumnRepository) MaxSystemPosition(ctx context.Context, owner board.OwnerRef) (int, error) {
	args := m.Called(ctx, owner)
	return args.Int(0), args.Error(1)
}

func (m *MockColumnRepository) Save(ctx context.Context, column *board.Column) error {
	args := m.Called(ctx, column)
	return args.Error(0)
}

// MockCardRepository is a mock implementation of board.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) FindByOrderID(ctx context.Context, owner board.OwnerRef, shopOrderID string) (*board.Card, error) {
	args := m.Called(ctx, owner, shopOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*board.Card), args.Error(1)
}

func (m *MockCardRepository) FindAll(ctx context.Context, owner board.OwnerRef) ([]board.Card, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]board.Card), args.Error(1)
}

func (m *MockCardRepository) NextPositionInColumn(ctx context.Context, owner board.OwnerRef, columnCode string) (int, error) {
	args := m.Called(ctx, owner, columnCode)
	return args.Int(0), args.Error(1)
}

func (m *MockCardRepository) Upsert(ctx context.Context, card *board.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) UpdatePlacement(ctx context.Context, owner board.OwnerRef, shopOrderID, columnCode string, position int) error {
	args := m.Called(ctx, owner, shopOrderID, columnCode, position)
	return args.Error(0)
}

func (m *MockCardRepository) UpdateOrderNumber(ctx context.Context, owner board.OwnerRef, shopOrderID, number string) error {
	args := m.Called(ctx, owner, shopOrderID, number)
	return args.Error(0)
}

func (m *MockCardRepository) UpdateNote(ctx context.Context, owner board.OwnerRef, shopOrderID, note string) error {
	args := m.Called(ctx, owner, shopOrderID, note)
	return args.Error(0)
}

// MockOrderFeed is a mock implementation of OrderFeed
type MockOrderFeed struct {
	mock.Mock
}

func (m *MockOrderFeed) FetchOrders(ctx context.Context, owner board.OwnerRef) ([]ExternalOrder, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ExternalOrder), args.Error(1)
}

var _ board.ColumnRepository = (*MockColumnRepository)(nil)
var _ board.CardRepository = (*MockCardRepository)(nil)
var _ OrderFeed = (*MockOrderFeed)(nil)
