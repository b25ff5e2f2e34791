package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CancellationItemRequest cantidad a anular de una línea de la nota de entrega.
type CancellationItemRequest struct {
	DeliveryNoteItemID string          `json:"delivery_note_item_id" validate:"required"`
	Quantity           decimal.Decimal `json:"quantity"`
}

// CreateCancellationRequest body de POST /api/cancellations.
type CreateCancellationRequest struct {
	Number           string                    `json:"number" validate:"max=50"`
	DeliveryNoteID   string                    `json:"delivery_note_id" validate:"required"`
	CancellationDate string                    `json:"cancellation_date" validate:"required,date"`
	Reason           string                    `json:"reason" validate:"max=500"`
	Items            []CancellationItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateCancellationRequest reemplaza fecha, motivo y líneas.
type UpdateCancellationRequest struct {
	CancellationDate string                    `json:"cancellation_date" validate:"required,date"`
	Reason           string                    `json:"reason" validate:"max=500"`
	Items            []CancellationItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CancellationItemResponse línea anulada.
type CancellationItemResponse struct {
	ID                 string          `json:"id"`
	DeliveryNoteItemID string          `json:"delivery_note_item_id"`
	ProductID          string          `json:"product_id"`
	OriginalQuantity   decimal.Decimal `json:"original_quantity"`
	OriginalLineTotal  decimal.Decimal `json:"original_line_total"`
	CancelledQuantity  decimal.Decimal `json:"cancelled_quantity"`
	RemainingQuantity  decimal.Decimal `json:"remaining_quantity"`
	RemainingLineTotal decimal.Decimal `json:"remaining_line_total"`
	CancelledLineTotal decimal.Decimal `json:"cancelled_line_total"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
}

// CancellationResponse anulación con sus líneas.
type CancellationResponse struct {
	ID               string                     `json:"id"`
	Number           string                     `json:"number"`
	DeliveryNoteID   string                     `json:"delivery_note_id"`
	CancellationDate string                     `json:"cancellation_date"`
	Reason           string                     `json:"reason"`
	Kind             string                     `json:"kind"`
	TotalAmount      decimal.Decimal            `json:"total_amount"`
	Items            []CancellationItemResponse `json:"items"`
	CreatedBy        string                     `json:"created_by"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}
