package repository

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// StockMovementRepository puerto del libro de movimientos.
// ListByReference devuelve los movimientos en orden de inserción (el más antiguo primero).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.StockMovement, int, error)
}
