package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de anulación. Full se deriva del paso active→cancelled de la nota y no mueve stock.
const (
	CancellationPartial = "partial"
	CancellationFull    = "full"
)

// DeliveryNoteCancellation anulación (parcial o total) de una nota de entrega.
type DeliveryNoteCancellation struct {
	ID               string          `db:"id"`
	Number           string          `db:"number"`
	DeliveryNoteID   string          `db:"delivery_note_id"`
	CancellationDate time.Time       `db:"cancellation_date"`
	Reason           string          `db:"reason"`
	Kind             string          `db:"kind"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	CreatedBy        string          `db:"created_by"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`

	Items []CancellationItem `db:"-"`
}

// CancellationItem línea anulada. Original* es la foto de la línea de la nota en el momento de la anulación.
type CancellationItem struct {
	ID                 string          `db:"id"`
	CancellationID     string          `db:"cancellation_id"`
	DeliveryNoteItemID string          `db:"delivery_note_item_id"`
	ProductID          string          `db:"product_id"`
	OriginalQuantity   decimal.Decimal `db:"original_quantity"`
	OriginalLineTotal  decimal.Decimal `db:"original_line_total"`
	CancelledQuantity  decimal.Decimal `db:"cancelled_quantity"`
	RemainingQuantity  decimal.Decimal `db:"remaining_quantity"`
	RemainingLineTotal decimal.Decimal `db:"remaining_line_total"`
	CancelledLineTotal decimal.Decimal `db:"cancelled_line_total"`
	UnitCost           decimal.Decimal `db:"unit_cost"`
}
