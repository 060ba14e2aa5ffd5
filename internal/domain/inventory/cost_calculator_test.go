package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/warehouse-ledger/internal/domain/inventory"
)

func TestWeightedAverageCost(t *testing.T) {
	cases := []struct {
		name        string
		onHand      int64
		current     string
		inbound     int64
		inboundCost string
		want        string
	}{
		{"sin stock previo toma el costo de la entrada", 0, "0", 10, "25000", "25000"},
		{"promedia por cantidad", 10, "10000", 30, "20000", "17500"},
		{"saldo negativo se trata como cero", -5, "99999", 4, "1000", "1000"},
		{"entrada cero conserva costo", 8, "1234.5", 0, "9999", "1234.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.WeightedAverageCost(tc.onHand, decimal.RequireFromString(tc.current),
				tc.inbound, decimal.RequireFromString(tc.inboundCost))
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

func TestWeightedAverageCost_SinUnidades(t *testing.T) {
	got := inventory.WeightedAverageCost(0, decimal.NewFromInt(500), 0, decimal.NewFromInt(700))
	assert.True(t, got.IsZero())
}
