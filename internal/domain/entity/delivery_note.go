package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de venta.
const (
	SaleTypeLocal  = "local"
	SaleTypeExport = "export"
)

// Estados de la nota de entrega.
const (
	DeliveryNoteActive    = "active"
	DeliveryNoteCancelled = "cancelled"
)

// DeliveryNote nota de entrega: cada línea descuenta stock mientras la nota esté activa.
type DeliveryNote struct {
	ID           string          `db:"id"`
	Number       string          `db:"number"`
	CustomerName string          `db:"customer_name"`
	SaleType     string          `db:"sale_type"`
	DeliveryDate time.Time       `db:"delivery_date"`
	Status       string          `db:"status"`
	Notes        string          `db:"notes"`
	TotalAmount  decimal.Decimal `db:"total_amount"`
	CreatedBy    string          `db:"created_by"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`

	Items []DeliveryNoteItem `db:"-"`
}

// MovementSource origen de los movimientos de salida según el tipo de venta.
func (n *DeliveryNote) MovementSource() string {
	if n.SaleType == SaleTypeExport {
		return MovementSourceSaleExport
	}
	return MovementSourceSaleLocal
}

// DeliveryNoteItem línea de la nota de entrega. DiscountRate en porcentaje.
type DeliveryNoteItem struct {
	ID             string          `db:"id"`
	DeliveryNoteID string          `db:"delivery_note_id"`
	ProductID      string          `db:"product_id"`
	Quantity       decimal.Decimal `db:"quantity"`
	UnitPrice      decimal.Decimal `db:"unit_price"`
	DiscountRate   decimal.Decimal `db:"discount_rate"`
	LineTotal      decimal.Decimal `db:"line_total"`
}

// DeliveryNoteFilter filtros del listado.
type DeliveryNoteFilter struct {
	Status string
	Limit  int
	Offset int
}
