package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `id, number, supplier_name, order_date, status, received_at, notes, total_amount, created_by, created_at, updated_at`

var purchaseOrderItemColumns = []string{"id", "purchase_order_id", "product_id", "quantity", "unit_cost", "line_total", "position"}

// PurchaseOrderRepo órdenes de compra y sus líneas sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create inserta cabecera y líneas. Número duplicado → AlreadyExists.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (` + purchaseOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.Number, o.SupplierName, o.OrderDate, o.Status, o.ReceivedAt, o.Notes, o.TotalAmount,
		o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewAlreadyExists(domain.EntityPurchaseOrder, o.Number)
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return r.insertItems(ctx, o)
}

func (r *PurchaseOrderRepo) insertItems(ctx context.Context, o *entity.PurchaseOrder) error {
	if len(o.Items) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(o.Items))
	for i, it := range o.Items {
		rows = append(rows, []any{it.ID, o.ID, it.ProductID, it.Quantity, it.UnitCost, it.LineTotal, i})
	}
	if _, err := r.q.CopyFrom(ctx, pgx.Identifier{"purchase_order_items"}, purchaseOrderItemColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("insert purchase order items: %w", err)
	}
	return nil
}

// GetByID carga la orden con sus líneas.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, id)
}

// GetForUpdate como GetByID pero bloquea la cabecera hasta el fin de la transacción.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, query, id string) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	if err := pgxscan.Get(ctx, r.q, &o, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *PurchaseOrderRepo) items(ctx context.Context, orderID string) ([]entity.PurchaseOrderItem, error) {
	query := `SELECT id, purchase_order_id, product_id, quantity, unit_cost, line_total
		FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY position`
	var items []entity.PurchaseOrderItem
	if err := pgxscan.Select(ctx, r.q, &items, query, orderID); err != nil {
		return nil, fmt.Errorf("list purchase order items: %w", err)
	}
	return items, nil
}

// ExistsNumber indica si el número ya está tomado.
func (r *PurchaseOrderRepo) ExistsNumber(ctx context.Context, number string) (bool, error) {
	exists, err := existsBy(ctx, r.q, "purchase_orders", "number", number)
	if err != nil {
		return false, fmt.Errorf("exists purchase order number: %w", err)
	}
	return exists, nil
}

// Update reescribe la cabecera y reemplaza todas las líneas.
func (r *PurchaseOrderRepo) Update(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders SET number = $2, supplier_name = $3, order_date = $4, status = $5,
			received_at = $6, notes = $7, total_amount = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		o.ID, o.Number, o.SupplierName, o.OrderDate, o.Status, o.ReceivedAt, o.Notes, o.TotalAmount, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewAlreadyExists(domain.EntityPurchaseOrder, o.Number)
		}
		return fmt.Errorf("update purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntityPurchaseOrder, o.ID)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_order_items WHERE purchase_order_id = $1`, o.ID); err != nil {
		return fmt.Errorf("delete purchase order items: %w", err)
	}
	return r.insertItems(ctx, o)
}

// Delete elimina la orden; las líneas caen por cascada.
func (r *PurchaseOrderRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete purchase order: %w", err)
	}
	return nil
}

// List órdenes (sin líneas), la más reciente primero.
func (r *PurchaseOrderRepo) List(ctx context.Context, f entity.PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error) {
	count := psql.Select("COUNT(*)").From("purchase_orders")
	b := psql.Select(purchaseOrderColumns).From("purchase_orders").OrderBy("order_date DESC", "number DESC")
	if f.Status != "" {
		count = count.Where("status = ?", f.Status)
		b = b.Where("status = ?", f.Status)
	}

	var list []*entity.PurchaseOrder
	total, err := selectPage(ctx, r.q, &list, count, pageQuery(b, f.Limit, f.Offset))
	if err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}
	return list, total, nil
}
