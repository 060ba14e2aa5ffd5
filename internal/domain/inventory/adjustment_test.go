package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/inventory"
)

func TestApplyAdjustment(t *testing.T) {
	cases := []struct {
		name   string
		onHand int64
		typ    inventory.AdjustmentType
		qty    int64
		want   int64
	}{
		{"suma", 10, inventory.AdjustmentAddition, 5, 15},
		{"resta", 10, inventory.AdjustmentSubtraction, 4, 6},
		{"resta mayor al saldo queda en cero", 10, inventory.AdjustmentSubtraction, 25, 0},
		{"resta exacta", 10, inventory.AdjustmentSubtraction, 10, 0},
		{"set", 30, inventory.AdjustmentSet, 5, 5},
		{"set a cero", 30, inventory.AdjustmentSet, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := inventory.ApplyAdjustment(tc.onHand, tc.typ, tc.qty)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApplyAdjustment_TipoInvalido(t *testing.T) {
	_, err := inventory.ApplyAdjustment(10, inventory.AdjustmentType("multiply"), 2)
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustmentType)
}

func TestApplyAdjustment_CantidadNegativa(t *testing.T) {
	_, err := inventory.ApplyAdjustment(10, inventory.AdjustmentAddition, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseAdjustmentType(t *testing.T) {
	typ, err := inventory.ParseAdjustmentType("set")
	require.NoError(t, err)
	assert.Equal(t, inventory.AdjustmentSet, typ)

	_, err = inventory.ParseAdjustmentType("SET ")
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustmentType)
}
