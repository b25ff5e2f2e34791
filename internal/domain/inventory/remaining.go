package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// RemainingLine lo que queda de una línea de nota de entrega tras sus anulaciones parciales.
type RemainingLine struct {
	Item      entity.DeliveryNoteItem
	Cancelled decimal.Decimal
	Quantity  decimal.Decimal
	LineTotal decimal.Decimal
}

// Remaining calcula, por línea de la nota, la cantidad anulada y lo restante.
// Las anulaciones full no cuentan: la nota anulada se trata por su estado.
// skipID excluye una anulación (la que se está editando).
func Remaining(note *entity.DeliveryNote, cancellations []*entity.DeliveryNoteCancellation, skipID string) []RemainingLine {
	cancelled := make(map[string]decimal.Decimal, len(note.Items))
	for _, c := range cancellations {
		if c.Kind != entity.CancellationPartial || c.ID == skipID {
			continue
		}
		for _, it := range c.Items {
			cancelled[it.DeliveryNoteItemID] = cancelled[it.DeliveryNoteItemID].Add(it.CancelledQuantity)
		}
	}
	out := make([]RemainingLine, 0, len(note.Items))
	for _, it := range note.Items {
		c := cancelled[it.ID]
		rest := it.Quantity.Sub(c)
		out = append(out, RemainingLine{
			Item:      it,
			Cancelled: c,
			Quantity:  rest,
			LineTotal: ProportionalLineTotal(it.LineTotal, it.Quantity, rest),
		})
	}
	return out
}

// Outstanding lo pendiente de la nota tal como se informa: una nota anulada no deja nada pendiente
// y cada línea figura anulada por completo. Si no, equivale a Remaining sin exclusiones.
func Outstanding(note *entity.DeliveryNote, cancellations []*entity.DeliveryNoteCancellation) []RemainingLine {
	if note.Status != entity.DeliveryNoteCancelled {
		return Remaining(note, cancellations, "")
	}
	out := make([]RemainingLine, 0, len(note.Items))
	for _, it := range note.Items {
		out = append(out, RemainingLine{
			Item:      it,
			Cancelled: it.Quantity,
			Quantity:  decimal.Zero,
			LineTotal: decimal.Zero,
		})
	}
	return out
}
