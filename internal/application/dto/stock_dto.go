package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockResponse stock actual de un producto.
type StockResponse struct {
	ProductID         string          `json:"product_id"`
	Reference         string          `json:"reference,omitempty"`
	Name              string          `json:"name,omitempty"`
	Unit              string          `json:"unit,omitempty"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	TotalValue        decimal.Decimal `json:"total_value"`
	LastMovementDate  string          `json:"last_movement_date"`
	LastUpdated       time.Time       `json:"last_updated"`
}

// StockListResponse foto del stock, paginada.
type StockListResponse struct {
	Items []StockResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// MovementQuery filtros de GET /stock/movements.
type MovementQuery struct {
	ProductID     string `query:"product_id"`
	ReferenceType string `query:"reference_type" validate:"omitempty,oneof=purchase_order delivery_note delivery_note_cancellation"`
	ReferenceID   string `query:"reference_id"`
	MovementType  string `query:"movement_type" validate:"omitempty,oneof=in out"`
	From          string `query:"from" validate:"omitempty,date"`
	To            string `query:"to" validate:"omitempty,date"`
	PageRequest
}

// MovementResponse fila del libro de movimientos.
type MovementResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	MovementType   string          `json:"movement_type"`
	MovementSource string          `json:"movement_source"`
	ReferenceType  string          `json:"reference_type"`
	ReferenceID    string          `json:"reference_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	MovementDate   string          `json:"movement_date"`
	Note           string          `json:"note,omitempty"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
