package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderItemRequest línea de orden de compra.
type PurchaseOrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest body de POST /api/purchase-orders. Number vacío = numeración automática.
type CreatePurchaseOrderRequest struct {
	Number       string                     `json:"number" validate:"max=50"`
	SupplierName string                     `json:"supplier_name" validate:"required,max=200"`
	OrderDate    string                     `json:"order_date" validate:"required,date"`
	Status       string                     `json:"status" validate:"omitempty,oneof=pending received"`
	Notes        string                     `json:"notes"`
	Items        []PurchaseOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdatePurchaseOrderRequest reemplaza cabecera y líneas.
type UpdatePurchaseOrderRequest struct {
	SupplierName string                     `json:"supplier_name" validate:"required,max=200"`
	OrderDate    string                     `json:"order_date" validate:"required,date"`
	Notes        string                     `json:"notes"`
	Items        []PurchaseOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ChangeStatusRequest body de PATCH .../status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PurchaseOrderItemResponse línea de orden de compra.
type PurchaseOrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PurchaseOrderResponse orden de compra con sus líneas.
type PurchaseOrderResponse struct {
	ID           string                      `json:"id"`
	Number       string                      `json:"number"`
	SupplierName string                      `json:"supplier_name"`
	OrderDate    string                      `json:"order_date"`
	Status       string                      `json:"status"`
	ReceivedAt   *time.Time                  `json:"received_at"`
	Notes        string                      `json:"notes"`
	TotalAmount  decimal.Decimal             `json:"total_amount"`
	Items        []PurchaseOrderItemResponse `json:"items"`
	CreatedBy    string                      `json:"created_by"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// PurchaseOrderListResponse lista paginada.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
