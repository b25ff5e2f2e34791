package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de la factura.
const (
	PaymentStatusUnpaid  = "unpaid"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Invoice cabecera de factura. DeliveryNoteID es opcional.
type Invoice struct {
	ID             string          `db:"id"`
	Number         string          `db:"number"`
	DeliveryNoteID *string         `db:"delivery_note_id"`
	CustomerName   string          `db:"customer_name"`
	InvoiceDate    time.Time       `db:"invoice_date"`
	DueDate        *time.Time      `db:"due_date"`
	Subtotal       decimal.Decimal `db:"subtotal"`
	TaxAmount      decimal.Decimal `db:"tax_amount"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	PaidAmount     decimal.Decimal `db:"paid_amount"`
	PaymentStatus  string          `db:"payment_status"`
	CreatedBy      string          `db:"created_by"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`

	Lines    []InvoiceLine `db:"-"`
	Payments []Payment     `db:"-"`
}

// InvoiceLine línea de factura.
type InvoiceLine struct {
	ID           string          `db:"id"`
	InvoiceID    string          `db:"invoice_id"`
	ProductID    string          `db:"product_id"`
	Description  string          `db:"description"`
	Quantity     decimal.Decimal `db:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
	DiscountRate decimal.Decimal `db:"discount_rate"`
	TaxRate      decimal.Decimal `db:"tax_rate"`
	LineTotal    decimal.Decimal `db:"line_total"` // sin impuestos
	TaxAmount    decimal.Decimal `db:"tax_amount"`
}

// Payment pago registrado contra una factura.
type Payment struct {
	ID          string          `db:"id"`
	InvoiceID   string          `db:"invoice_id"`
	Amount      decimal.Decimal `db:"amount"`
	PaymentDate time.Time       `db:"payment_date"`
	Method      string          `db:"method"`
	Reference   string          `db:"reference"`
	CreatedBy   string          `db:"created_by"`
	CreatedAt   time.Time       `db:"created_at"`
}

// InvoiceFilter filtros del listado.
type InvoiceFilter struct {
	PaymentStatus string
	Limit         int
	Offset        int
}
