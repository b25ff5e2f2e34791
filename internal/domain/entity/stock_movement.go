package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento.
const (
	MovementTypeIn  = "in"  // entrada
	MovementTypeOut = "out" // salida
)

// Origen del movimiento.
const (
	MovementSourceSaleLocal  = "sale_local"
	MovementSourceSaleExport = "sale_export"
	MovementSourcePurchase   = "purchase"
)

// Tipos de documento que generan movimientos.
const (
	ReferencePurchaseOrder            = "purchase_order"
	ReferenceDeliveryNote             = "delivery_note"
	ReferenceDeliveryNoteCancellation = "delivery_note_cancellation"
)

// StockMovement fila del libro de movimientos. Quantity siempre es positiva; el signo lo da MovementType.
// QuantityBefore, AverageCostBefore y AverageCostAfter guardan la foto del stock sobre la que se aplicó,
// necesaria para revertir el movimiento de forma exacta.
type StockMovement struct {
	ID                string          `db:"id"`
	Seq               int64           `db:"seq"` // orden de inserción
	ProductID         string          `db:"product_id"`
	MovementType      string          `db:"movement_type"`
	MovementSource    string          `db:"movement_source"`
	ReferenceType     string          `db:"reference_type"`
	ReferenceID       string          `db:"reference_id"`
	Quantity          decimal.Decimal `db:"quantity"`
	UnitCost          decimal.Decimal `db:"unit_cost"`
	QuantityBefore    decimal.Decimal `db:"quantity_before"`
	AverageCostBefore decimal.Decimal `db:"average_cost_before"`
	AverageCostAfter  decimal.Decimal `db:"average_cost_after"`
	MovementDate      time.Time       `db:"movement_date"`
	Note              string          `db:"note"`
	CreatedBy         string          `db:"created_by"`
	CreatedAt         time.Time       `db:"created_at"`
}

// Signed devuelve la cantidad con signo: positiva para entradas, negativa para salidas.
func (m *StockMovement) Signed() decimal.Decimal {
	if m.MovementType == MovementTypeOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// MovementFilter filtros del listado de movimientos.
type MovementFilter struct {
	ProductID     string
	ReferenceType string
	ReferenceID   string
	MovementType  string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}
