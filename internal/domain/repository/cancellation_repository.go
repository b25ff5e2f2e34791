package repository

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// CancellationRepository persiste anulaciones de notas de entrega.
type CancellationRepository interface {
	Create(ctx context.Context, c *entity.DeliveryNoteCancellation) error
	GetByID(ctx context.Context, id string) (*entity.DeliveryNoteCancellation, error)
	ExistsNumber(ctx context.Context, number string) (bool, error)
	Update(ctx context.Context, c *entity.DeliveryNoteCancellation) error
	Delete(ctx context.Context, id string) error
	ListByDeliveryNote(ctx context.Context, deliveryNoteID string) ([]*entity.DeliveryNoteCancellation, error)
}
