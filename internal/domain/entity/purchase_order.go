package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la orden de compra.
const (
	PurchaseOrderPending   = "pending"
	PurchaseOrderReceived  = "received"
	PurchaseOrderCancelled = "cancelled"
)

// PurchaseOrder orden de compra a proveedor. Solo las recibidas tienen efecto en stock.
type PurchaseOrder struct {
	ID           string          `db:"id"`
	Number       string          `db:"number"`
	SupplierName string          `db:"supplier_name"`
	OrderDate    time.Time       `db:"order_date"`
	Status       string          `db:"status"`
	ReceivedAt   *time.Time      `db:"received_at"`
	Notes        string          `db:"notes"`
	TotalAmount  decimal.Decimal `db:"total_amount"`
	CreatedBy    string          `db:"created_by"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`

	Items []PurchaseOrderItem `db:"-"`
}

// PurchaseOrderItem línea de la orden.
type PurchaseOrderItem struct {
	ID              string          `db:"id"`
	PurchaseOrderID string          `db:"purchase_order_id"`
	ProductID       string          `db:"product_id"`
	Quantity        decimal.Decimal `db:"quantity"`
	UnitCost        decimal.Decimal `db:"unit_cost"`
	LineTotal       decimal.Decimal `db:"line_total"`
}

// PurchaseOrderFilter filtros del listado.
type PurchaseOrderFilter struct {
	Status string
	Limit  int
	Offset int
}
