package repository

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// DeliveryNoteRepository persiste notas de entrega con sus líneas.
type DeliveryNoteRepository interface {
	Create(ctx context.Context, note *entity.DeliveryNote) error
	GetByID(ctx context.Context, id string) (*entity.DeliveryNote, error)
	GetForUpdate(ctx context.Context, id string) (*entity.DeliveryNote, error)
	ExistsNumber(ctx context.Context, number string) (bool, error)
	Update(ctx context.Context, note *entity.DeliveryNote) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entity.DeliveryNoteFilter) ([]*entity.DeliveryNote, int, error)
}
