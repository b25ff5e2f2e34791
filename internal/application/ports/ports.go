package ports

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, con repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error
}

// Cache caché por etiquetas: cada etiqueta tiene un contador de versión que se incrementa al invalidar.
// Las claves de lectura incluyen la versión, así una invalidación deja obsoletas las entradas anteriores.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	TagVersion(ctx context.Context, tag string) (int64, error)
	Invalidate(ctx context.Context, tags ...string) error
}

// DocumentLocker serializa las mutaciones de un mismo documento entre instancias.
// Si el bloqueo no se obtiene devuelve un ConflictError.
type DocumentLocker interface {
	Lock(ctx context.Context, key string) (unlock func(context.Context), err error)
}

// Etiquetas de caché que se señalan tras un commit.
const (
	TagStock          = "stock"
	TagStockMovements = "stockMovements"
	TagProducts       = "products"
	TagPurchaseOrders = "purchaseOrders"
	TagDeliveryNotes  = "deliveryNotes"
	TagCancellations  = "cancellations"
	TagInvoices       = "invoices"
	TagPayments       = "payments"
)

// LockKey clave de bloqueo de un documento.
func LockKey(documentType, id string) string {
	return "lock:" + documentType + ":" + id
}
