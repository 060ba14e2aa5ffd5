package inventory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store *memory.Store
	cache *spyCache
	uc    *inventory.StockLedgerUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(memory.WithLockTimeout(2 * time.Second))
	store.AddVariant(entity.ProductVariant{ID: 7, ProductID: 1, SKU: "AT-M", ProductName: "Áo thun", Name: "M", IsActive: true})
	store.AddVariant(entity.ProductVariant{ID: 8, ProductID: 1, SKU: "AT-L", ProductName: "Áo thun", Name: "L", IsActive: true})
	store.AddWarehouse(entity.Warehouse{ID: 1, Code: "HN", Name: "Kho Hà Nội", Region: "north", IsActive: true})
	store.AddWarehouse(entity.Warehouse{ID: 2, Code: "DN", Name: "Kho Đà Nẵng", Region: "central", IsActive: true})
	store.AddWarehouse(entity.Warehouse{ID: 3, Code: "HCM", Name: "Kho Hồ Chí Minh", Region: "south", IsActive: true})

	cache := newSpyCache()
	uc := inventory.NewStockLedgerUseCase(inventory.Deps{
		TxRunner:   memory.NewTxRunner(store),
		Stock:      store.Stock(),
		Ledger:     store.Ledger(),
		Variants:   store.Variants(),
		Warehouses: store.Warehouses(),
		Cache:      cache,
		Now:        func() time.Time { return fixedNow },
	})
	return &fixture{store: store, cache: cache, uc: uc}
}

func (f *fixture) inbound(t *testing.T, variantID, warehouseID, qty int64) {
	t.Helper()
	_, err := f.uc.Inbound(context.Background(), inventory.InboundInput{
		Items: []inventory.InboundItem{{VariantID: variantID, WarehouseID: warehouseID, Quantity: qty}},
	})
	require.NoError(t, err)
}

func (f *fixture) record(t *testing.T, variantID, warehouseID int64) (onHand, reserved int64) {
	t.Helper()
	rec, err := f.store.Stock().Get(context.Background(), variantID, warehouseID)
	require.NoError(t, err)
	if rec == nil {
		return 0, 0
	}
	return rec.OnHand, rec.Reserved
}

func (f *fixture) entries(t *testing.T) []*entity.LedgerEntry {
	t.Helper()
	out, err := f.store.Ledger().List(context.Background(), repository.LedgerFilter{})
	require.NoError(t, err)
	return out
}

func movement(variantID, warehouseID, qty int64) inventory.MovementInput {
	return inventory.MovementInput{VariantID: variantID, WarehouseID: warehouseID, Quantity: qty}
}

// spyCache caché en mapa que registra invalidaciones.
type spyCache struct {
	mu          sync.Mutex
	values      map[string]int64
	gens        map[int64]int64
	invalidated []int64
}

func newSpyCache() *spyCache {
	return &spyCache{values: make(map[string]int64), gens: make(map[int64]int64)}
}

func cacheKey(variantID int64, warehouseID *int64) string {
	if warehouseID == nil {
		return fmt.Sprintf("%d:all", variantID)
	}
	return fmt.Sprintf("%d:%d", variantID, *warehouseID)
}

func (c *spyCache) Get(_ context.Context, variantID int64, warehouseID *int64) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[cacheKey(variantID, warehouseID)]
	return v, ok, nil
}

func (c *spyCache) Generation(_ context.Context, variantID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[variantID], nil
}

func (c *spyCache) Set(_ context.Context, variantID int64, warehouseID *int64, gen, qty int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[variantID] != gen {
		return nil
	}
	c.values[cacheKey(variantID, warehouseID)] = qty
	return nil
}

func (c *spyCache) Invalidate(_ context.Context, variantID int64, warehouseIDs ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[variantID]++
	delete(c.values, cacheKey(variantID, nil))
	for _, w := range warehouseIDs {
		delete(c.values, cacheKey(variantID, &w))
	}
	c.invalidated = append(c.invalidated, variantID)
	return nil
}

func (c *spyCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.invalidated)
}
