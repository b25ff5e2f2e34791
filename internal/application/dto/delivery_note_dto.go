package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryNoteItemRequest línea de la nota de entrega. UnitPrice nil = precio de venta del producto.
type DeliveryNoteItemRequest struct {
	ProductID    string           `json:"product_id" validate:"required"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal  `json:"discount_rate"`
}

// CreateDeliveryNoteRequest body de POST /api/delivery-notes.
type CreateDeliveryNoteRequest struct {
	Number       string                    `json:"number" validate:"max=50"`
	CustomerName string                    `json:"customer_name" validate:"required,max=200"`
	SaleType     string                    `json:"sale_type" validate:"required,oneof=local export"`
	DeliveryDate string                    `json:"delivery_date" validate:"required,date"`
	Notes        string                    `json:"notes"`
	Items        []DeliveryNoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateDeliveryNoteRequest reemplaza cabecera y líneas.
type UpdateDeliveryNoteRequest struct {
	CustomerName string                    `json:"customer_name" validate:"required,max=200"`
	SaleType     string                    `json:"sale_type" validate:"required,oneof=local export"`
	DeliveryDate string                    `json:"delivery_date" validate:"required,date"`
	Notes        string                    `json:"notes"`
	Items        []DeliveryNoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

// DeliveryNoteItemResponse línea con lo ya anulado y lo restante.
type DeliveryNoteItemResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountRate       decimal.Decimal `json:"discount_rate"`
	LineTotal          decimal.Decimal `json:"line_total"`
	CancelledQuantity  decimal.Decimal `json:"cancelled_quantity"`
	RemainingQuantity  decimal.Decimal `json:"remaining_quantity"`
	RemainingLineTotal decimal.Decimal `json:"remaining_line_total"`
}

// DeliveryNoteResponse nota de entrega.
type DeliveryNoteResponse struct {
	ID             string                     `json:"id"`
	Number         string                     `json:"number"`
	CustomerName   string                     `json:"customer_name"`
	SaleType       string                     `json:"sale_type"`
	DeliveryDate   string                     `json:"delivery_date"`
	Status         string                     `json:"status"`
	Notes          string                     `json:"notes"`
	TotalAmount    decimal.Decimal            `json:"total_amount"`
	RemainingTotal decimal.Decimal            `json:"remaining_total"`
	Items          []DeliveryNoteItemResponse `json:"items"`
	CreatedBy      string                     `json:"created_by"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// DeliveryNoteListResponse lista paginada.
type DeliveryNoteListResponse struct {
	Items []DeliveryNoteResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}
