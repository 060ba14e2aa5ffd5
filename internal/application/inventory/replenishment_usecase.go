package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

const (
	replenishmentMaxItems = 200
	idealStockFactor      = 1.5
)

// ReplenishmentUseCase genera la lista de reposición a partir de los pares en o bajo su umbral.
type ReplenishmentUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(analyticsRepo repository.AnalyticsRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{analyticsRepo: analyticsRepo}
}

// GenerateReplenishmentList devuelve una sugerencia por par bajo umbral, con la cantidad a pedir
// para llegar a 1.5 veces el umbral en disponible. warehouseID nil = todas las bodegas.
// Prioridad: mayor déficit relativo primero; a igual déficit, mayor costo estimado.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, warehouseID *int64) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, err := uc.analyticsRepo.ListLowStock(ctx, warehouseID, replenishmentMaxItems)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	type ranked struct {
		dto.ReplenishmentSuggestionDTO
		deficit decimal.Decimal
	}
	rows := make([]ranked, 0, len(items))
	for _, it := range items {
		ideal := decimal.NewFromInt(it.ReorderLevel).Mul(decimal.NewFromFloat(idealStockFactor)).Ceil().IntPart()
		suggested := ideal - (it.OnHand - it.Reserved)
		if suggested < 0 {
			suggested = 0
		}
		deficit := decimal.NewFromInt(1)
		if it.ReorderLevel > 0 {
			deficit = decimal.NewFromInt(it.ReorderLevel - it.OnHand).Div(decimal.NewFromInt(it.ReorderLevel))
		}
		rows = append(rows, ranked{
			ReplenishmentSuggestionDTO: dto.ReplenishmentSuggestionDTO{
				VariantID:          it.VariantID,
				WarehouseID:        it.WarehouseID,
				SKU:                it.SKU,
				ProductName:        it.ProductName,
				WarehouseName:      it.WarehouseName,
				OnHand:             it.OnHand,
				Reserved:           it.Reserved,
				ReorderLevel:       it.ReorderLevel,
				IdealStock:         ideal,
				SuggestedOrderQty:  suggested,
				UnitCost:           it.AverageCost,
				EstimatedOrderCost: decimal.NewFromInt(suggested).Mul(it.AverageCost).Round(2),
			},
			deficit: deficit,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].deficit.Cmp(rows[j].deficit); c != 0 {
			return c > 0
		}
		return rows[i].EstimatedOrderCost.GreaterThan(rows[j].EstimatedOrderCost)
	})

	out := make([]dto.ReplenishmentSuggestionDTO, len(rows))
	for i, r := range rows {
		r.Priority = i + 1
		out[i] = r.ReplenishmentSuggestionDTO
	}
	return out, nil
}
