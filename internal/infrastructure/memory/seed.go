package memory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/routing"
)

// SeedDemo carga las tres bodegas regionales y un catálogo pequeño con stock inicial.
// Las bodegas coinciden con las que siembra la migración 00001.
func SeedDemo(s *Store) {
	s.AddWarehouse(entity.Warehouse{ID: routing.WarehouseNorth, Code: "HN", Name: "Kho Hà Nội", Region: "north", Address: "Hà Nội", IsActive: true})
	s.AddWarehouse(entity.Warehouse{ID: routing.WarehouseCentral, Code: "DN", Name: "Kho Đà Nẵng", Region: "central", Address: "Đà Nẵng", IsActive: true})
	s.AddWarehouse(entity.Warehouse{ID: routing.WarehouseSouth, Code: "HCM", Name: "Kho Hồ Chí Minh", Region: "south", Address: "Hồ Chí Minh", IsActive: true})

	variants := []entity.ProductVariant{
		{ID: 1, ProductID: 1, SKU: "AT-TRANG-S", ProductName: "Áo thun trắng", Name: "S", IsActive: true},
		{ID: 2, ProductID: 1, SKU: "AT-TRANG-M", ProductName: "Áo thun trắng", Name: "M", IsActive: true},
		{ID: 3, ProductID: 1, SKU: "AT-TRANG-L", ProductName: "Áo thun trắng", Name: "L", IsActive: true},
		{ID: 4, ProductID: 2, SKU: "QJ-XANH-30", ProductName: "Quần jean xanh", Name: "30", IsActive: true},
		{ID: 5, ProductID: 2, SKU: "QJ-XANH-32", ProductName: "Quần jean xanh", Name: "32", IsActive: true},
	}
	for _, v := range variants {
		s.AddVariant(v)
	}

	// on_hand por bodega (HN, DN, HCM); costo en VND
	stock := map[int64][3]int64{
		1: {40, 10, 60},
		2: {25, 5, 80},
		3: {8, 0, 30},
		4: {12, 6, 20},
		5: {3, 2, 15},
	}
	costs := map[int64]decimal.Decimal{
		1: decimal.NewFromInt(85000),
		2: decimal.NewFromInt(85000),
		3: decimal.NewFromInt(90000),
		4: decimal.NewFromInt(210000),
		5: decimal.NewFromInt(210000),
	}
	warehouses := [3]int64{routing.WarehouseNorth, routing.WarehouseCentral, routing.WarehouseSouth}
	for variantID, qtys := range stock {
		for i, qty := range qtys {
			s.PutStock(entity.StockRecord{
				VariantID:    variantID,
				WarehouseID:  warehouses[i],
				OnHand:       qty,
				ReorderLevel: 10,
				AverageCost:  costs[variantID],
			})
		}
	}
}
