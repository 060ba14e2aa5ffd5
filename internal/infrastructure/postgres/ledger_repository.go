package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de stock sobre PostgreSQL. Solo INSERT y SELECT.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta las entradas en el orden recibido.
func (r *LedgerRepo) Append(ctx context.Context, entries ...*entity.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `
		INSERT INTO stock_ledger_entries (
			id, transaction_id, variant_id, warehouse_id, type,
			quantity_change, quantity_after, reserved_after, available_after,
			reason, notes, reference_number, actor, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	for _, e := range entries {
		_, err := r.q.Exec(ctx, query,
			e.ID, e.TransactionID, e.VariantID, e.WarehouseID, e.Type,
			e.QuantityChange, e.QuantityAfter, e.ReservedAfter, e.AvailableAfter,
			e.Reason, e.Notes, e.ReferenceNumber, e.Actor, e.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("append ledger entry %s: id duplicado: %w", e.ID, err)
			}
			return fmt.Errorf("append ledger entry: %w", err)
		}
	}
	return nil
}

// List entradas filtradas, más recientes primero.
func (r *LedgerRepo) List(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.VariantID != nil {
		add("variant_id = $%d", *f.VariantID)
	}
	if f.WarehouseID != nil {
		add("warehouse_id = $%d", *f.WarehouseID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.TransactionID != nil {
		add("transaction_id = $%d", *f.TransactionID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT id, transaction_id, variant_id, warehouse_id, type,
		       quantity_change, quantity_after, reserved_after, available_after,
		       reason, notes, reference_number, actor, created_at
		FROM stock_ledger_entries`)
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, id")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	list := []*entity.LedgerEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	err := row.Scan(
		&e.ID, &e.TransactionID, &e.VariantID, &e.WarehouseID, &e.Type,
		&e.QuantityChange, &e.QuantityAfter, &e.ReservedAfter, &e.AvailableAfter,
		&e.Reason, &e.Notes, &e.ReferenceNumber, &e.Actor, &e.CreatedAt,
	)
	return &e, err
}
