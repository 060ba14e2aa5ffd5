package inventory

import (
	"fmt"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
)

// AdjustmentType modo de corrección manual del saldo físico.
type AdjustmentType string

const (
	AdjustmentAddition    AdjustmentType = "addition"
	AdjustmentSubtraction AdjustmentType = "subtraction"
	AdjustmentSet         AdjustmentType = "set"
)

// ParseAdjustmentType valida el valor recibido del cliente.
func ParseAdjustmentType(s string) (AdjustmentType, error) {
	switch t := AdjustmentType(s); t {
	case AdjustmentAddition, AdjustmentSubtraction, AdjustmentSet:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidAdjustmentType, s)
}

// ApplyAdjustment calcula el nuevo on_hand. La resta se trunca en cero.
func ApplyAdjustment(onHand int64, t AdjustmentType, quantity int64) (int64, error) {
	if quantity < 0 {
		return onHand, domain.ErrInvalidInput
	}
	switch t {
	case AdjustmentAddition:
		return onHand + quantity, nil
	case AdjustmentSubtraction:
		if quantity > onHand {
			return 0, nil
		}
		return onHand - quantity, nil
	case AdjustmentSet:
		return quantity, nil
	}
	return onHand, fmt.Errorf("%w: %q", domain.ErrInvalidAdjustmentType, string(t))
}
