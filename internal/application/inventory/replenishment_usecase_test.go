package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
)

func TestGenerateReplenishmentList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.inbound(t, 7, 1, 2)
	f.inbound(t, 8, 1, 5)
	f.inbound(t, 7, 3, 20)
	for _, p := range [][2]int64{{7, 1}, {8, 1}, {7, 3}} {
		_, err := f.uc.SetReorderLevel(ctx, p[0], p[1], 10)
		require.NoError(t, err)
	}

	uc := inventory.NewReplenishmentUseCase(f.store.Analytics())
	list, err := uc.GenerateReplenishmentList(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 2, "7@3 está sobre el umbral")

	assert.Equal(t, int64(7), list[0].VariantID)
	assert.Equal(t, 1, list[0].Priority)
	assert.Equal(t, int64(15), list[0].IdealStock)
	assert.Equal(t, int64(13), list[0].SuggestedOrderQty)
	assert.Equal(t, "AT-M", list[0].SKU)
	assert.Equal(t, "Kho Hà Nội", list[0].WarehouseName)

	assert.Equal(t, int64(8), list[1].VariantID)
	assert.Equal(t, int64(10), list[1].SuggestedOrderQty)
	assert.Equal(t, 2, list[1].Priority)

	wh := int64(3)
	list, err = uc.GenerateReplenishmentList(ctx, &wh)
	require.NoError(t, err)
	assert.Empty(t, list)
}
