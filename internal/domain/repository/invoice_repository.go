package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// InvoiceRepository persiste facturas, sus líneas y sus pagos.
// GetByID carga líneas y pagos.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	ExistsNumber(ctx context.Context, number string) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id string, paid decimal.Decimal, status string) error
	List(ctx context.Context, filter entity.InvoiceFilter) ([]*entity.Invoice, int, error)

	CreatePayment(ctx context.Context, payment *entity.Payment) error
	GetPayment(ctx context.Context, id string) (*entity.Payment, error)
	DeletePayment(ctx context.Context, id string) error
}
