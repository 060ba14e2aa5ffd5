package features

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/internal/domain/routing"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
)

type ledgerTestContext struct {
	store    *memory.Store
	uc       *inventory.StockLedgerUseCase
	table    *routing.Table
	ok       bool
	err      error
	resolved int64
}

func (c *ledgerTestContext) reset() {
	c.store = memory.NewStore(memory.WithLockTimeout(time.Second))
	c.uc = inventory.NewStockLedgerUseCase(inventory.Deps{
		TxRunner:   memory.NewTxRunner(c.store),
		Stock:      c.store.Stock(),
		Ledger:     c.store.Ledger(),
		Variants:   c.store.Variants(),
		Warehouses: c.store.Warehouses(),
	})
	c.table = routing.Default()
	c.ok, c.err, c.resolved = false, nil, 0
}

func (c *ledgerTestContext) aCatalogWithVariantAndWarehouses(variantID, w1, w2, w3 int64) error {
	c.store.AddVariant(entity.ProductVariant{ID: variantID, SKU: fmt.Sprintf("SKU-%d", variantID), ProductName: "Áo thun", IsActive: true})
	for _, id := range []int64{w1, w2, w3} {
		c.store.AddWarehouse(entity.Warehouse{ID: id, Name: fmt.Sprintf("Kho %d", id), IsActive: true})
	}
	return nil
}

func (c *ledgerTestContext) variantHasUnitsOnHand(variantID, qty, warehouseID int64) error {
	return c.iReceiveUnits(qty, variantID, warehouseID)
}

func (c *ledgerTestContext) iReceiveUnits(qty, variantID, warehouseID int64) error {
	_, err := c.uc.Inbound(context.Background(), inventory.InboundInput{
		Items: []inventory.InboundItem{{VariantID: variantID, WarehouseID: warehouseID, Quantity: qty}},
	})
	return err
}

func (c *ledgerTestContext) move(fn func(context.Context, inventory.MovementInput) (bool, error)) func(qty, variantID, warehouseID int64) error {
	return func(qty, variantID, warehouseID int64) error {
		c.ok, c.err = fn(context.Background(), inventory.MovementInput{VariantID: variantID, WarehouseID: warehouseID, Quantity: qty})
		return c.err
	}
}

func (c *ledgerTestContext) iSetUnits(variantID, warehouseID, qty int64, reason string) error {
	return c.adjust("set", variantID, warehouseID, qty, reason)
}

func (c *ledgerTestContext) iSubtractUnits(qty, variantID, warehouseID int64, reason string) error {
	return c.adjust("subtraction", variantID, warehouseID, qty, reason)
}

func (c *ledgerTestContext) adjust(typ string, variantID, warehouseID, qty int64, reason string) error {
	_, err := c.uc.Adjust(context.Background(), inventory.AdjustInput{
		VariantID: variantID, WarehouseID: warehouseID, Type: typ, Quantity: qty, Reason: reason,
	})
	return err
}

func (c *ledgerTestContext) iResolveTheWarehouseFor(region string) error {
	c.resolved = c.table.Resolve(region)
	return nil
}

func (c *ledgerTestContext) theOperationSucceeds() error {
	if !c.ok {
		return fmt.Errorf("expected success, got rejection")
	}
	return nil
}

func (c *ledgerTestContext) theOperationIsRejected() error {
	if c.ok {
		return fmt.Errorf("expected rejection, got success")
	}
	return nil
}

func (c *ledgerTestContext) theBalanceIs(variantID, warehouseID, onHand, reserved int64) error {
	rec, err := c.store.Stock().Get(context.Background(), variantID, warehouseID)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = entity.NewStockRecord(variantID, warehouseID)
	}
	if rec.OnHand != onHand || rec.Reserved != reserved {
		return fmt.Errorf("expected (%d, %d), got (%d, %d)", onHand, reserved, rec.OnHand, rec.Reserved)
	}
	return nil
}

func (c *ledgerTestContext) theLastLedgerEntryIs(typ string, change int64) error {
	entries, err := c.store.Ledger().List(context.Background(), repository.LedgerFilter{Limit: 1})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("ledger is empty")
	}
	e := entries[0]
	if e.Type != typ || e.QuantityChange != change {
		return fmt.Errorf("expected %s %+d, got %s %+d", typ, change, e.Type, e.QuantityChange)
	}
	return nil
}

func (c *ledgerTestContext) theAvailableQuantityIs(variantID, expected int64) error {
	qty, err := c.uc.AvailableQuantity(context.Background(), variantID, nil)
	if err != nil {
		return err
	}
	if qty != expected {
		return fmt.Errorf("expected available %d, got %d", expected, qty)
	}
	return nil
}

func (c *ledgerTestContext) theResolvedWarehouseIs(expected int64) error {
	if c.resolved != expected {
		return fmt.Errorf("expected warehouse %d, got %d", expected, c.resolved)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &ledgerTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given
	ctx.Step(`^a catalog with variant (\d+) and warehouses (\d+), (\d+) and (\d+)$`, tc.aCatalogWithVariantAndWarehouses)
	ctx.Step(`^variant (\d+) has (\d+) units on hand in warehouse (\d+)$`, tc.variantHasUnitsOnHand)

	// When
	ctx.Step(`^I receive (\d+) units of variant (\d+) into warehouse (\d+)$`, tc.iReceiveUnits)
	ctx.Step(`^I reserve (\d+) units of variant (\d+) in warehouse (\d+)$`, tc.move(func(ctx context.Context, in inventory.MovementInput) (bool, error) {
		return tc.uc.Reserve(ctx, in)
	}))
	ctx.Step(`^I release (\d+) units of variant (\d+) in warehouse (\d+)$`, tc.move(func(ctx context.Context, in inventory.MovementInput) (bool, error) {
		return tc.uc.Release(ctx, in)
	}))
	ctx.Step(`^I fulfill (\d+) units of variant (\d+) in warehouse (\d+)$`, tc.move(func(ctx context.Context, in inventory.MovementInput) (bool, error) {
		return tc.uc.Fulfill(ctx, in)
	}))
	ctx.Step(`^I set variant (\d+) in warehouse (\d+) to (\d+) units because "([^"]*)"$`, tc.iSetUnits)
	ctx.Step(`^I subtract (\d+) units of variant (\d+) in warehouse (\d+) because "([^"]*)"$`, tc.iSubtractUnits)
	ctx.Step(`^I resolve the warehouse for "([^"]*)"$`, tc.iResolveTheWarehouseFor)

	// Then
	ctx.Step(`^the operation succeeds$`, tc.theOperationSucceeds)
	ctx.Step(`^the operation is rejected$`, tc.theOperationIsRejected)
	ctx.Step(`^the balance of variant (\d+) in warehouse (\d+) is (\d+) on hand and (\d+) reserved$`, tc.theBalanceIs)
	ctx.Step(`^the last ledger entry is "([^"]*)" with change (-?\d+)$`, tc.theLastLedgerEntryIs)
	ctx.Step(`^the available quantity of variant (\d+) is (\d+)$`, tc.theAvailableQuantityIs)
	ctx.Step(`^the resolved warehouse is (\d+)$`, tc.theResolvedWarehouseIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"stock_ledger.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
