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

var _ repository.DeliveryNoteRepository = (*DeliveryNoteRepo)(nil)

const deliveryNoteColumns = `id, number, customer_name, sale_type, delivery_date, status, notes, total_amount, created_by, created_at, updated_at`

var deliveryNoteItemColumns = []string{"id", "delivery_note_id", "product_id", "quantity", "unit_price", "discount_rate", "line_total", "position"}

// DeliveryNoteRepo notas de entrega y sus líneas sobre PostgreSQL.
type DeliveryNoteRepo struct {
	q Querier
}

// NewDeliveryNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryNoteRepository(q Querier) *DeliveryNoteRepo {
	return &DeliveryNoteRepo{q: q}
}

func (r *DeliveryNoteRepo) Create(ctx context.Context, n *entity.DeliveryNote) error {
	query := `
		INSERT INTO delivery_notes (` + deliveryNoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		n.ID, n.Number, n.CustomerName, n.SaleType, n.DeliveryDate, n.Status, n.Notes, n.TotalAmount,
		n.CreatedBy, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewAlreadyExists(domain.EntityDeliveryNote, n.Number)
		}
		return fmt.Errorf("insert delivery note: %w", err)
	}
	return r.insertItems(ctx, n)
}

func (r *DeliveryNoteRepo) insertItems(ctx context.Context, n *entity.DeliveryNote) error {
	if len(n.Items) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(n.Items))
	for i, it := range n.Items {
		rows = append(rows, []any{it.ID, n.ID, it.ProductID, it.Quantity, it.UnitPrice, it.DiscountRate, it.LineTotal, i})
	}
	if _, err := r.q.CopyFrom(ctx, pgx.Identifier{"delivery_note_items"}, deliveryNoteItemColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("insert delivery note items: %w", err)
	}
	return nil
}

func (r *DeliveryNoteRepo) GetByID(ctx context.Context, id string) (*entity.DeliveryNote, error) {
	return r.get(ctx, `SELECT `+deliveryNoteColumns+` FROM delivery_notes WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera: las anulaciones de la nota se serializan sobre esta fila.
func (r *DeliveryNoteRepo) GetForUpdate(ctx context.Context, id string) (*entity.DeliveryNote, error) {
	return r.get(ctx, `SELECT `+deliveryNoteColumns+` FROM delivery_notes WHERE id = $1 FOR UPDATE`, id)
}

func (r *DeliveryNoteRepo) get(ctx context.Context, query, id string) (*entity.DeliveryNote, error) {
	var n entity.DeliveryNote
	if err := pgxscan.Get(ctx, r.q, &n, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery note: %w", err)
	}
	itemsQuery := `SELECT id, delivery_note_id, product_id, quantity, unit_price, discount_rate, line_total
		FROM delivery_note_items WHERE delivery_note_id = $1 ORDER BY position`
	if err := pgxscan.Select(ctx, r.q, &n.Items, itemsQuery, id); err != nil {
		return nil, fmt.Errorf("list delivery note items: %w", err)
	}
	return &n, nil
}

func (r *DeliveryNoteRepo) ExistsNumber(ctx context.Context, number string) (bool, error) {
	exists, err := existsBy(ctx, r.q, "delivery_notes", "number", number)
	if err != nil {
		return false, fmt.Errorf("exists delivery note number: %w", err)
	}
	return exists, nil
}

// Update reescribe la cabecera y reemplaza todas las líneas.
func (r *DeliveryNoteRepo) Update(ctx context.Context, n *entity.DeliveryNote) error {
	query := `
		UPDATE delivery_notes SET number = $2, customer_name = $3, sale_type = $4, delivery_date = $5,
			status = $6, notes = $7, total_amount = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		n.ID, n.Number, n.CustomerName, n.SaleType, n.DeliveryDate, n.Status, n.Notes, n.TotalAmount, n.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewAlreadyExists(domain.EntityDeliveryNote, n.Number)
		}
		return fmt.Errorf("update delivery note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntityDeliveryNote, n.ID)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM delivery_note_items WHERE delivery_note_id = $1`, n.ID); err != nil {
		return fmt.Errorf("delete delivery note items: %w", err)
	}
	return r.insertItems(ctx, n)
}

func (r *DeliveryNoteRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM delivery_notes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete delivery note: %w", err)
	}
	return nil
}

// List notas (sin líneas), la más reciente primero.
func (r *DeliveryNoteRepo) List(ctx context.Context, f entity.DeliveryNoteFilter) ([]*entity.DeliveryNote, int, error) {
	count := psql.Select("COUNT(*)").From("delivery_notes")
	b := psql.Select(deliveryNoteColumns).From("delivery_notes").OrderBy("delivery_date DESC", "number DESC")
	if f.Status != "" {
		count = count.Where("status = ?", f.Status)
		b = b.Where("status = ?", f.Status)
	}

	var list []*entity.DeliveryNote
	total, err := selectPage(ctx, r.q, &list, count, pageQuery(b, f.Limit, f.Offset))
	if err != nil {
		return nil, 0, fmt.Errorf("list delivery notes: %w", err)
	}
	return list, total, nil
}
