package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/domain"
)

// AmountScale decimales de los importes.
const AmountScale = 2

var hundred = decimal.NewFromInt(100)

// LineTotal importe neto de una línea: qty * precio * (1 - descuento/100), a 2 decimales.
func LineTotal(qty, unitPrice, discountRate decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountRate.Div(hundred))
	return qty.Mul(unitPrice).Mul(factor).Round(AmountScale)
}

// ProportionalLineTotal reparte el total original de forma proporcional a la cantidad restante.
// Asume economía uniforme por unidad; no recalcula descuento ni impuestos.
func ProportionalLineTotal(total, originalQty, remainingQty decimal.Decimal) decimal.Decimal {
	if originalQty.IsZero() {
		return decimal.Zero
	}
	return total.Mul(remainingQty).Div(originalQty).Round(AmountScale)
}

// CancelledLine resultado de anular parte de una línea.
type CancelledLine struct {
	RemainingQuantity  decimal.Decimal
	RemainingLineTotal decimal.Decimal
	CancelledLineTotal decimal.Decimal
}

// CancelLine anula q unidades de una línea con cantidad originalQty y total originalTotal.
// El total anulado es la diferencia, así restante + anulado = original al céntimo.
func CancelLine(originalQty, originalTotal, q decimal.Decimal) (CancelledLine, error) {
	return CancelFromLine(originalQty, originalTotal, decimal.Zero, q)
}

// CancelFromLine como CancelLine cuando ya se anularon alreadyCancelled unidades de la línea.
// Los totales siempre se derivan de la línea original, así la suma de anulaciones sucesivas
// más el restante sigue cuadrando con originalTotal.
func CancelFromLine(originalQty, originalTotal, alreadyCancelled, q decimal.Decimal) (CancelledLine, error) {
	available := originalQty.Sub(alreadyCancelled)
	if !q.IsPositive() {
		return CancelledLine{}, domain.NewValidation("cancelledQuantity", "la quantité doit être positive")
	}
	if q.GreaterThan(available) {
		return CancelledLine{}, domain.NewValidation("cancelledQuantity",
			"la quantité annulée ("+domain.FormatQuantity(q)+") dépasse la quantité restante ("+domain.FormatQuantity(available)+")")
	}
	remaining := available.Sub(q)
	before := ProportionalLineTotal(originalTotal, originalQty, available)
	after := ProportionalLineTotal(originalTotal, originalQty, remaining)
	return CancelledLine{
		RemainingQuantity:  remaining,
		RemainingLineTotal: after,
		CancelledLineTotal: before.Sub(after),
	}, nil
}

// SumTotals suma importes.
func SumTotals(values ...decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, values...)
}
