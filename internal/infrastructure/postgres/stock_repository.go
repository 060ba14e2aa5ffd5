package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

const stockColumns = `variant_id, warehouse_id, quantity_on_hand, quantity_reserved,
		reorder_level, average_cost, created_at, updated_at`

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := row.Scan(
		&s.VariantID, &s.WarehouseID, &s.OnHand, &s.Reserved,
		&s.ReorderLevel, &s.AverageCost, &s.CreatedAt, &s.UpdatedAt,
	)
	return &s, err
}

// Get obtiene el saldo o nil si el par nunca se ha tocado.
func (r *StockRecordRepo) Get(ctx context.Context, variantID, warehouseID int64) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_records WHERE variant_id = $1 AND warehouse_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, variantID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return s, nil
}

// GetForUpdate crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE).
// El INSERT ... ON CONFLICT DO NOTHING evita la carrera entre dos creadores del mismo par.
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, variantID, warehouseID int64) (*entity.StockRecord, error) {
	insert := `
		INSERT INTO stock_records (variant_id, warehouse_id)
		VALUES ($1, $2)
		ON CONFLICT (variant_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, variantID, warehouseID); err != nil {
		return nil, wrapLock(fmt.Errorf("create stock record: %w", err), err)
	}

	query := `SELECT ` + stockColumns + `
		FROM stock_records WHERE variant_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, variantID, warehouseID))
	if err != nil {
		return nil, wrapLock(fmt.Errorf("get stock record for update: %w", err), err)
	}
	return s, nil
}

// Save actualiza saldos, umbral y costo. La fila ya existe (GetForUpdate la crea).
func (r *StockRecordRepo) Save(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		UPDATE stock_records
		SET quantity_on_hand = $3, quantity_reserved = $4, reorder_level = $5,
		    average_cost = $6, updated_at = $7
		WHERE variant_id = $1 AND warehouse_id = $2`
	cmd, err := r.q.Exec(ctx, query,
		rec.VariantID, rec.WarehouseID, rec.OnHand, rec.Reserved,
		rec.ReorderLevel, rec.AverageCost, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save stock record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("save stock record (%d,%d): fila inexistente", rec.VariantID, rec.WarehouseID)
	}
	return nil
}

// ListByVariant saldos de la variante ordenados por bodega.
func (r *StockRecordRepo) ListByVariant(ctx context.Context, variantID int64) ([]*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_records WHERE variant_id = $1 ORDER BY warehouse_id`
	rows, err := r.q.Query(ctx, query, variantID)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	defer rows.Close()

	list := []*entity.StockRecord{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// SumAvailable suma on_hand - reserved (0 si no hay filas).
func (r *StockRecordRepo) SumAvailable(ctx context.Context, variantID int64, warehouseID *int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity_on_hand - quantity_reserved), 0)
		FROM stock_records
		WHERE variant_id = $1 AND ($2::BIGINT IS NULL OR warehouse_id = $2)`
	var total int64
	if err := r.q.QueryRow(ctx, query, variantID, warehouseID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum available: %w", err)
	}
	return total, nil
}

func wrapLock(wrapped, cause error) error {
	if isLockTimeout(cause) {
		return fmt.Errorf("%w: %w", domain.ErrLockTimeout, wrapped)
	}
	return wrapped
}
