package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost recalcula el costo unitario tras una entrada (servicio de dominio).
// nuevo = ((onHand * costoActual) + (entrada * costoEntrada)) / (onHand + entrada)
// Si el saldo previo es negativo o cero cuenta solo la entrada.
func WeightedAverageCost(onHand int64, currentCost decimal.Decimal, inbound int64, inboundCost decimal.Decimal) decimal.Decimal {
	if onHand < 0 {
		onHand = 0
	}
	total := onHand + inbound
	if total <= 0 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(onHand).Mul(currentCost).
		Add(decimal.NewFromInt(inbound).Mul(inboundCost))
	return num.Div(decimal.NewFromInt(total)).Round(4)
}
