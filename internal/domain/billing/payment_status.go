package billing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// DefaultTolerance margen de redondeo al comparar lo pagado con el total.
var DefaultTolerance = decimal.RequireFromString("0.01")

// PaymentStatus deriva el estado de pago de una factura.
// paid >= total - tol → paid; paid <= tol → unpaid; en otro caso partial.
func PaymentStatus(total, paid, tol decimal.Decimal) string {
	if paid.GreaterThanOrEqual(total.Sub(tol)) {
		return entity.PaymentStatusPaid
	}
	if paid.LessThanOrEqual(tol) {
		return entity.PaymentStatusUnpaid
	}
	return entity.PaymentStatusPartial
}

// Outstanding saldo pendiente, nunca negativo.
func Outstanding(total, paid decimal.Decimal) decimal.Decimal {
	rest := total.Sub(paid)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}
