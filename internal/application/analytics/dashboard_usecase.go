// Package analytics contiene los casos de uso de reportes de stock para el dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

const dashboardLowStockTop = 5 // filas en el widget de stock bajo

// DashboardUseCase genera el resumen de stock.
//
// Fuente de datos: AnalyticsRepository (consultas read-only sobre stock_records).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetStockSummary construye el StockSummaryDTO (warehouseID nil = todas las bodegas).
//
// Cuatro consultas en paralelo:
//  1. GetStockTotals  -> registros, on_hand, reserved
//  2. CountLowStock   -> filas con on_hand <= reorder_level
//  3. GetStockValue   -> on_hand * costo promedio
//  4. ListLowStock    -> top 5 por déficit
func (uc *DashboardUseCase) GetStockSummary(ctx context.Context, warehouseID *int64) (*dto.StockSummaryDTO, error) {
	var (
		totals   repository.StockTotals
		lowCount int64
		value    decimal.Decimal
		lowTop   []repository.LowStockItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if totals, err = uc.analyticsRepo.GetStockTotals(gctx, warehouseID); err != nil {
			return fmt.Errorf("dashboard: totales: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if lowCount, err = uc.analyticsRepo.CountLowStock(gctx, warehouseID); err != nil {
			return fmt.Errorf("dashboard: conteo stock bajo: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if value, err = uc.analyticsRepo.GetStockValue(gctx, warehouseID); err != nil {
			return fmt.Errorf("dashboard: valor de inventario: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if lowTop, err = uc.analyticsRepo.ListLowStock(gctx, warehouseID, dashboardLowStockTop); err != nil {
			return fmt.Errorf("dashboard: top stock bajo: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	top := make([]dto.LowStockDTO, 0, len(lowTop))
	for _, it := range lowTop {
		top = append(top, dto.LowStockDTO{
			VariantID:     it.VariantID,
			WarehouseID:   it.WarehouseID,
			SKU:           it.SKU,
			ProductName:   it.ProductName,
			WarehouseName: it.WarehouseName,
			OnHand:        it.OnHand,
			Reserved:      it.Reserved,
			ReorderLevel:  it.ReorderLevel,
		})
	}

	return &dto.StockSummaryDTO{
		WarehouseID:    warehouseID,
		Records:        totals.Records,
		TotalOnHand:    totals.OnHand,
		TotalReserved:  totals.Reserved,
		TotalAvailable: totals.OnHand - totals.Reserved,
		LowStockCount:  lowCount,
		StockValue:     value.Round(2),
		LowStockTop:    top,
		GeneratedAt:    uc.now(),
	}, nil
}
