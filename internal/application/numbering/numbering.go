// Package numbering genera los números legibles de los documentos (PREFIJO-AÑO-00001).
package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// Tipos de documento numerados.
const (
	PurchaseOrder = "purchase_order"
	DeliveryNote  = "delivery_note"
	Cancellation  = "delivery_note_cancellation"
	Invoice       = "invoice"
)

var prefixes = map[string]string{
	PurchaseOrder: "BC",
	DeliveryNote:  "BL",
	Cancellation:  "AV",
	Invoice:       "FA",
}

// Prefix prefijo del tipo de documento.
func Prefix(documentType string) (string, error) {
	p, ok := prefixes[documentType]
	if !ok {
		return "", fmt.Errorf("numbering: unknown document type %q", documentType)
	}
	return p, nil
}

// Format arma el número: BC-2026-00042.
func Format(prefix string, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, n)
}

// ExistsFunc indica si un número ya está usado por un documento.
type ExistsFunc func(ctx context.Context, number string) (bool, error)

// Next reserva el siguiente número libre del año de date, dentro de la transacción de seq.
// Los números ya usados (p. ej. introducidos a mano) se saltan; exists puede ser nil.
func Next(ctx context.Context, seq repository.SequenceRepository, exists ExistsFunc, documentType string, date time.Time) (string, error) {
	prefix, err := Prefix(documentType)
	if err != nil {
		return "", err
	}
	for {
		n, err := seq.Next(ctx, documentType, date.Year())
		if err != nil {
			return "", fmt.Errorf("next %s number: %w", documentType, err)
		}
		number := Format(prefix, date.Year(), n)
		if exists == nil {
			return number, nil
		}
		taken, err := exists(ctx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
}

// Resolve devuelve el número indicado por el usuario si no existe aún, o uno nuevo si viene vacío.
func Resolve(ctx context.Context, seq repository.SequenceRepository, exists ExistsFunc,
	documentType, entityName, requested string, date time.Time) (string, error) {
	if requested == "" {
		return Next(ctx, seq, exists, documentType, date)
	}
	taken, err := exists(ctx, requested)
	if err != nil {
		return "", err
	}
	if taken {
		return "", domain.NewAlreadyExists(entityName, requested)
	}
	return requested, nil
}
