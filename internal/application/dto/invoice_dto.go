package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLineRequest línea de factura. UnitPrice nil = precio de venta local del producto.
type InvoiceLineRequest struct {
	ProductID    string           `json:"product_id" validate:"required"`
	Description  string           `json:"description"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal  `json:"discount_rate"`
}

// CreateInvoiceRequest body de POST /api/invoices.
// Con DeliveryNoteID y sin líneas, las líneas se toman de lo restante de la nota de entrega.
type CreateInvoiceRequest struct {
	Number         string               `json:"number" validate:"max=50"`
	DeliveryNoteID *string              `json:"delivery_note_id"`
	CustomerName   string               `json:"customer_name" validate:"max=200"`
	InvoiceDate    string               `json:"invoice_date" validate:"required,date"`
	DueDate        string               `json:"due_date" validate:"omitempty,date"`
	Lines          []InvoiceLineRequest `json:"lines" validate:"omitempty,dive"`
}

// CreatePaymentRequest body de POST /api/invoices/:id/payments.
type CreatePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date" validate:"required,date"`
	Method      string          `json:"method" validate:"required,oneof=cash transfer check card other"`
	Reference   string          `json:"reference" validate:"max=100"`
}

// InvoiceLineResponse línea de factura.
type InvoiceLineResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	LineTotal    decimal.Decimal `json:"line_total"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
}

// PaymentResponse pago registrado.
type PaymentResponse struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference"`
	CreatedAt   time.Time       `json:"created_at"`
}

// InvoiceResponse factura con líneas y pagos.
type InvoiceResponse struct {
	ID             string                `json:"id"`
	Number         string                `json:"number"`
	DeliveryNoteID *string               `json:"delivery_note_id"`
	CustomerName   string                `json:"customer_name"`
	InvoiceDate    string                `json:"invoice_date"`
	DueDate        string                `json:"due_date,omitempty"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	PaidAmount     decimal.Decimal       `json:"paid_amount"`
	Outstanding    decimal.Decimal       `json:"outstanding"`
	PaymentStatus  string                `json:"payment_status"`
	Lines          []InvoiceLineResponse `json:"lines"`
	Payments       []PaymentResponse     `json:"payments"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// InvoiceListResponse lista paginada.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
