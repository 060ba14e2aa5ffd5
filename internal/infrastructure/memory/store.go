// Package memory implementa los puertos de persistencia en memoria.
// Se usa en pruebas y en modo demo (sin DATABASE_URL). Respeta la misma semántica
// transaccional que PostgreSQL: bloqueo exclusivo por fila, escrituras diferidas hasta el Commit
// y descarte completo en Rollback.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

type key struct {
	variantID   int64
	warehouseID int64
}

// Store estado confirmado más la tabla de bloqueos por fila.
type Store struct {
	mu          sync.RWMutex
	variants    map[int64]*entity.ProductVariant
	warehouses  map[int64]*entity.Warehouse
	stock       map[key]*entity.StockRecord
	ledger      []*entity.LedgerEntry
	locks       sync.Map // key -> chan struct{} (semáforo de capacidad 1)
	lockTimeout time.Duration
	now         func() time.Time
}

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout limita la espera por el bloqueo de una fila (0 = esperar hasta cancelar el ctx).
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// WithClock reemplaza el reloj usado para created_at de registros nuevos.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore crea un almacén vacío.
func NewStore(opts ...Option) *Store {
	s := &Store{
		variants:   make(map[int64]*entity.ProductVariant),
		warehouses: make(map[int64]*entity.Warehouse),
		stock:      make(map[key]*entity.StockRecord),
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddVariant registra (o reemplaza) una variante del catálogo.
func (s *Store) AddVariant(v entity.ProductVariant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variants[v.ID] = &v
}

// AddWarehouse registra (o reemplaza) una bodega.
func (s *Store) AddWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[w.ID] = &w
}

// PutStock fija un saldo confirmado sin pasar por el libro. Solo para datos de arranque y pruebas.
func (s *Store) PutStock(rec entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[key{rec.VariantID, rec.WarehouseID}] = rec.Clone()
}

// Stock repositorio de lectura sobre el estado confirmado.
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

// Ledger repositorio del libro sobre el estado confirmado.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{s: s} }

// Variants repositorio del catálogo.
func (s *Store) Variants() *VariantRepo { return &VariantRepo{s: s} }

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s} }

// Analytics consultas de reporte.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s: s} }

func (s *Store) sem(k key) chan struct{} {
	ch, _ := s.locks.LoadOrStore(k, make(chan struct{}, 1))
	return ch.(chan struct{})
}

// acquire bloquea la fila k hasta obtenerla, cancelar ctx o agotar lockTimeout.
func (s *Store) acquire(ctx context.Context, k key) error {
	sem := s.sem(k)
	var timeout <-chan time.Time
	if s.lockTimeout > 0 {
		t := time.NewTimer(s.lockTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("bloqueo de fila (%d,%d): %w", k.variantID, k.warehouseID, ctx.Err())
	case <-timeout:
		return fmt.Errorf("bloqueo de fila (%d,%d): %w", k.variantID, k.warehouseID, domain.ErrLockTimeout)
	}
}

func (s *Store) release(k key) {
	<-s.sem(k)
}

func (s *Store) committedStock(k key) *entity.StockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.stock[k]; ok {
		return rec.Clone()
	}
	return nil
}

func (s *Store) apply(stock map[key]*entity.StockRecord, entries []*entity.LedgerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, rec := range stock {
		s.stock[k] = rec.Clone()
	}
	for _, e := range entries {
		c := *e
		s.ledger = append(s.ledger, &c)
	}
}

func sortRecords(recs []*entity.StockRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].VariantID != recs[j].VariantID {
			return recs[i].VariantID < recs[j].VariantID
		}
		return recs[i].WarehouseID < recs[j].WarehouseID
	})
}
