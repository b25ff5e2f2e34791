package repository

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// StockRepository puerto del stock actual por producto.
// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
// Get y GetForUpdate devuelven (nil, nil) si el producto aún no tiene stock.
type StockRepository interface {
	Get(ctx context.Context, productID string) (*entity.StockCurrent, error)
	GetForUpdate(ctx context.Context, productID string) (*entity.StockCurrent, error)
	Create(ctx context.Context, stock *entity.StockCurrent) error
	Update(ctx context.Context, stock *entity.StockCurrent) error
	List(ctx context.Context, limit, offset int) ([]*entity.StockValuation, int, error)
}
