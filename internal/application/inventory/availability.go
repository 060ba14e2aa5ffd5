package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// AvailableQuantity suma on_hand - reserved de la variante (todas las bodegas si warehouseID es nil).
// Lectura sin bloqueo: quien necesite garantía debe volver a verificar dentro de su transacción.
// Una variante sin registros devuelve 0.
func (uc *StockLedgerUseCase) AvailableQuantity(ctx context.Context, variantID int64, warehouseID *int64) (int64, error) {
	if qty, ok, err := uc.cache.Get(ctx, variantID, warehouseID); err != nil {
		uc.log.Warn().Err(err).Int64("variant_id", variantID).Msg("caché de disponibilidad: lectura fallida")
	} else if ok {
		uc.metrics.CacheResult(true)
		return qty, nil
	}
	uc.metrics.CacheResult(false)

	// La generación se lee antes de la BD: si un commit invalida en medio, Set no escribe.
	gen, genErr := uc.cache.Generation(ctx, variantID)
	if genErr != nil {
		uc.log.Warn().Err(genErr).Int64("variant_id", variantID).Msg("caché de disponibilidad: generación no disponible")
	}

	qty, err := uc.stock.SumAvailable(ctx, variantID, warehouseID)
	if err != nil {
		return 0, err
	}
	if genErr != nil {
		return qty, nil
	}
	if err := uc.cache.Set(ctx, variantID, warehouseID, gen, qty); err != nil {
		uc.log.Warn().Err(err).Int64("variant_id", variantID).Msg("caché de disponibilidad: escritura fallida")
	}
	return qty, nil
}

// IsAvailable availableQuantity >= quantity.
func (uc *StockLedgerUseCase) IsAvailable(ctx context.Context, variantID, quantity int64, warehouseID *int64) (bool, error) {
	if quantity < 0 {
		return false, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	qty, err := uc.AvailableQuantity(ctx, variantID, warehouseID)
	if err != nil {
		return false, err
	}
	return qty >= quantity, nil
}

// StockByVariant saldos de la variante en cada bodega donde tiene registro.
func (uc *StockLedgerUseCase) StockByVariant(ctx context.Context, variantID int64) ([]*entity.StockRecord, error) {
	v, err := uc.variants.GetByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: variante %d", domain.ErrNotFound, variantID)
	}
	return uc.stock.ListByVariant(ctx, variantID)
}

// History entradas del libro según el filtro, más recientes primero.
func (uc *StockLedgerUseCase) History(ctx context.Context, filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	if filter.Type != "" && !entity.IsValidLedgerType(filter.Type) {
		return nil, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, filter.Type)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	filter.Limit, filter.Offset = HistoryPage(filter.Limit, filter.Offset)
	return uc.ledger.List(ctx, filter)
}

// HistoryPage normaliza la paginación del historial: 50 por defecto, máximo 500.
func HistoryPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// checkRefs verifica que variantes y bodegas existan antes de tocar cualquier saldo.
// Devuelve las variantes encontradas para nombrar líneas en los mensajes.
func (uc *StockLedgerUseCase) checkRefs(ctx context.Context, keys []pairKey) (map[int64]*entity.ProductVariant, error) {
	variantIDs := make([]int64, 0, len(keys))
	warehouseIDs := make([]int64, 0, len(keys))
	seenV := make(map[int64]bool, len(keys))
	seenW := make(map[int64]bool, len(keys))
	for _, k := range keys {
		if !seenV[k.variantID] {
			seenV[k.variantID] = true
			variantIDs = append(variantIDs, k.variantID)
		}
		if !seenW[k.warehouseID] {
			seenW[k.warehouseID] = true
			warehouseIDs = append(warehouseIDs, k.warehouseID)
		}
	}

	variants, err := uc.variants.GetByIDs(ctx, variantIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range variantIDs {
		if variants[id] == nil {
			return nil, fmt.Errorf("%w: variante %d", domain.ErrNotFound, id)
		}
	}
	for _, id := range warehouseIDs {
		w, err := uc.warehouses.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if w == nil {
			return nil, fmt.Errorf("%w: bodega %d", domain.ErrNotFound, id)
		}
	}
	return variants, nil
}

func (uc *StockLedgerUseCase) invalidate(ctx context.Context, variantID, warehouseID int64) {
	if err := uc.cache.Invalidate(ctx, variantID, warehouseID); err != nil {
		uc.log.Warn().Err(err).
			Int64("variant_id", variantID).
			Int64("warehouse_id", warehouseID).
			Msg("caché de disponibilidad: invalidación fallida")
	}
}
