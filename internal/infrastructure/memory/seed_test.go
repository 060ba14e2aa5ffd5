package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
)

func TestSeedDemo_BodegasYSaldos(t *testing.T) {
	s := memory.NewStore()
	memory.SeedDemo(s)
	ctx := context.Background()

	ws, err := s.Warehouses().List(ctx, true)
	require.NoError(t, err)
	require.Len(t, ws, 3)
	assert.Equal(t, "HN", ws[0].Code)
	assert.Equal(t, "HCM", ws[2].Code)

	recs, err := s.Stock().ListByVariant(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, r := range recs {
		assert.Zero(t, r.Reserved)
		assert.LessOrEqual(t, r.Reserved, r.OnHand)
	}

	total, err := s.Stock().SumAvailable(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(110), total)

	// variante 5 en Đà Nẵng (2 <= 10) entre otras
	low, err := s.Analytics().CountLowStock(ctx, nil)
	require.NoError(t, err)
	assert.Positive(t, low)
}
