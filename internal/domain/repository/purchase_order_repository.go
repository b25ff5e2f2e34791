package repository

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// PurchaseOrderRepository persiste órdenes de compra con sus líneas.
// Update reemplaza las líneas completas.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	ExistsNumber(ctx context.Context, number string) (bool, error)
	Update(ctx context.Context, order *entity.PurchaseOrder) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entity.PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error)
}
