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

var _ repository.CancellationRepository = (*CancellationRepo)(nil)

const cancellationColumns = `id, number, delivery_note_id, cancellation_date, reason, kind, total_amount, created_by, created_at, updated_at`

const cancellationItemSelect = `id, cancellation_id, delivery_note_item_id, product_id, original_quantity, original_line_total,
	cancelled_quantity, remaining_quantity, remaining_line_total, cancelled_line_total, unit_cost`

var cancellationItemColumns = []string{
	"id", "cancellation_id", "delivery_note_item_id", "product_id", "original_quantity", "original_line_total",
	"cancelled_quantity", "remaining_quantity", "remaining_line_total", "cancelled_line_total", "unit_cost", "position",
}

// CancellationRepo anulaciones de notas de entrega sobre PostgreSQL.
type CancellationRepo struct {
	q Querier
}

// NewCancellationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCancellationRepository(q Querier) *CancellationRepo {
	return &CancellationRepo{q: q}
}

func (r *CancellationRepo) Create(ctx context.Context, c *entity.DeliveryNoteCancellation) error {
	query := `
		INSERT INTO delivery_note_cancellations (` + cancellationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Number, c.DeliveryNoteID, c.CancellationDate, c.Reason, c.Kind, c.TotalAmount,
		c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewAlreadyExists(domain.EntityCancellation, c.Number)
		}
		return fmt.Errorf("insert cancellation: %w", err)
	}
	return r.insertItems(ctx, c)
}

func (r *CancellationRepo) insertItems(ctx context.Context, c *entity.DeliveryNoteCancellation) error {
	if len(c.Items) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(c.Items))
	for i, it := range c.Items {
		rows = append(rows, []any{
			it.ID, c.ID, it.DeliveryNoteItemID, it.ProductID, it.OriginalQuantity, it.OriginalLineTotal,
			it.CancelledQuantity, it.RemainingQuantity, it.RemainingLineTotal, it.CancelledLineTotal, it.UnitCost, i,
		})
	}
	if _, err := r.q.CopyFrom(ctx, pgx.Identifier{"delivery_note_cancellation_items"}, cancellationItemColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("insert cancellation items: %w", err)
	}
	return nil
}

func (r *CancellationRepo) GetByID(ctx context.Context, id string) (*entity.DeliveryNoteCancellation, error) {
	var c entity.DeliveryNoteCancellation
	query := `SELECT ` + cancellationColumns + ` FROM delivery_note_cancellations WHERE id = $1`
	if err := pgxscan.Get(ctx, r.q, &c, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cancellation: %w", err)
	}
	items, err := r.itemsOf(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	c.Items = items[id]
	return &c, nil
}

// itemsOf líneas de varias anulaciones, agrupadas por anulación.
func (r *CancellationRepo) itemsOf(ctx context.Context, ids []string) (map[string][]entity.CancellationItem, error) {
	query := `SELECT ` + cancellationItemSelect + ` FROM delivery_note_cancellation_items
		WHERE cancellation_id = ANY($1) ORDER BY cancellation_id, position`
	var items []entity.CancellationItem
	if err := pgxscan.Select(ctx, r.q, &items, query, ids); err != nil {
		return nil, fmt.Errorf("list cancellation items: %w", err)
	}
	out := make(map[string][]entity.CancellationItem, len(ids))
	for _, it := range items {
		out[it.CancellationID] = append(out[it.CancellationID], it)
	}
	return out, nil
}

func (r *CancellationRepo) ExistsNumber(ctx context.Context, number string) (bool, error) {
	exists, err := existsBy(ctx, r.q, "delivery_note_cancellations", "number", number)
	if err != nil {
		return false, fmt.Errorf("exists cancellation number: %w", err)
	}
	return exists, nil
}

// Update reescribe la cabecera y reemplaza todas las líneas.
func (r *CancellationRepo) Update(ctx context.Context, c *entity.DeliveryNoteCancellation) error {
	query := `
		UPDATE delivery_note_cancellations SET number = $2, cancellation_date = $3, reason = $4, kind = $5,
			total_amount = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, c.ID, c.Number, c.CancellationDate, c.Reason, c.Kind, c.TotalAmount, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewAlreadyExists(domain.EntityCancellation, c.Number)
		}
		return fmt.Errorf("update cancellation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntityCancellation, c.ID)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM delivery_note_cancellation_items WHERE cancellation_id = $1`, c.ID); err != nil {
		return fmt.Errorf("delete cancellation items: %w", err)
	}
	return r.insertItems(ctx, c)
}

func (r *CancellationRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM delivery_note_cancellations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete cancellation: %w", err)
	}
	return nil
}

// ListByDeliveryNote anulaciones de la nota con sus líneas, en orden de creación.
func (r *CancellationRepo) ListByDeliveryNote(ctx context.Context, deliveryNoteID string) ([]*entity.DeliveryNoteCancellation, error) {
	query := `SELECT ` + cancellationColumns + ` FROM delivery_note_cancellations
		WHERE delivery_note_id = $1 ORDER BY created_at, number`
	var list []*entity.DeliveryNoteCancellation
	if err := pgxscan.Select(ctx, r.q, &list, query, deliveryNoteID); err != nil {
		return nil, fmt.Errorf("list cancellations: %w", err)
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	items, err := r.itemsOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		c.Items = items[c.ID]
	}
	return list, nil
}
