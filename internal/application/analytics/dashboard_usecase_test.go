package analytics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/application/analytics"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

type mockAnalyticsRepo struct {
	mock.Mock
}

func (m *mockAnalyticsRepo) GetStockTotals(ctx context.Context, warehouseID *int64) (repository.StockTotals, error) {
	args := m.Called(ctx, warehouseID)
	return args.Get(0).(repository.StockTotals), args.Error(1)
}

func (m *mockAnalyticsRepo) CountLowStock(ctx context.Context, warehouseID *int64) (int64, error) {
	args := m.Called(ctx, warehouseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAnalyticsRepo) GetStockValue(ctx context.Context, warehouseID *int64) (decimal.Decimal, error) {
	args := m.Called(ctx, warehouseID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockAnalyticsRepo) ListLowStock(ctx context.Context, warehouseID *int64, limit int) ([]repository.LowStockItem, error) {
	args := m.Called(ctx, warehouseID, limit)
	items, _ := args.Get(0).([]repository.LowStockItem)
	return items, args.Error(1)
}

func TestGetStockSummary(t *testing.T) {
	repo := new(mockAnalyticsRepo)
	wh := int64(1)
	repo.On("GetStockTotals", mock.Anything, &wh).Return(repository.StockTotals{Records: 3, OnHand: 80, Reserved: 20}, nil)
	repo.On("CountLowStock", mock.Anything, &wh).Return(int64(1), nil)
	repo.On("GetStockValue", mock.Anything, &wh).Return(decimal.RequireFromString("1250000.456"), nil)
	repo.On("ListLowStock", mock.Anything, &wh, 5).Return([]repository.LowStockItem{
		{VariantID: 7, WarehouseID: 1, SKU: "TS-M", ProductName: "Áo thun - M", OnHand: 2, ReorderLevel: 10},
	}, nil)

	uc := analytics.NewDashboardUseCase(repo)
	out, err := uc.GetStockSummary(context.Background(), &wh)
	require.NoError(t, err)

	assert.Equal(t, int64(80), out.TotalOnHand)
	assert.Equal(t, int64(20), out.TotalReserved)
	assert.Equal(t, int64(60), out.TotalAvailable)
	assert.Equal(t, int64(1), out.LowStockCount)
	assert.Equal(t, "1250000.46", out.StockValue.String())
	require.Len(t, out.LowStockTop, 1)
	assert.Equal(t, "TS-M", out.LowStockTop[0].SKU)
	repo.AssertExpectations(t)
}

func TestGetStockSummary_PropagaError(t *testing.T) {
	repo := new(mockAnalyticsRepo)
	boom := errors.New("conexión perdida")
	repo.On("GetStockTotals", mock.Anything, mock.Anything).Return(repository.StockTotals{}, nil)
	repo.On("CountLowStock", mock.Anything, mock.Anything).Return(int64(0), boom)
	repo.On("GetStockValue", mock.Anything, mock.Anything).Return(decimal.Zero, nil)
	repo.On("ListLowStock", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	uc := analytics.NewDashboardUseCase(repo)
	_, err := uc.GetStockSummary(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}
