package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, seq, product_id, movement_type, movement_source, reference_type, reference_id,
	quantity, unit_cost, quantity_before, average_cost_before, average_cost_after,
	movement_date, note, created_by, created_at`

// StockMovementRepo libro de movimientos sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta el movimiento y rellena Seq con el valor asignado por la base.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, movement_type, movement_source, reference_type, reference_id,
			quantity, unit_cost, quantity_before, average_cost_before, average_cost_after,
			movement_date, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ProductID, m.MovementType, m.MovementSource, m.ReferenceType, m.ReferenceID,
		m.Quantity, m.UnitCost, m.QuantityBefore, m.AverageCostBefore, m.AverageCostAfter,
		m.MovementDate, m.Note, m.CreatedBy, m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByReference movimientos de un documento en orden de inserción.
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE reference_type = $1 AND reference_id = $2 ORDER BY seq`
	var list []*entity.StockMovement
	if err := pgxscan.Select(ctx, r.q, &list, query, referenceType, referenceID); err != nil {
		return nil, fmt.Errorf("list movements by reference: %w", err)
	}
	return list, nil
}

// Delete elimina un movimiento del libro.
func (r *StockMovementRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_movements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete stock movement: %w", err)
	}
	return nil
}

// List movimientos filtrados, el más reciente primero.
func (r *StockMovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.StockMovement, int, error) {
	where := squirrel.And{}
	if f.ProductID != "" {
		where = append(where, squirrel.Eq{"product_id": f.ProductID})
	}
	if f.ReferenceType != "" {
		where = append(where, squirrel.Eq{"reference_type": f.ReferenceType})
	}
	if f.ReferenceID != "" {
		where = append(where, squirrel.Eq{"reference_id": f.ReferenceID})
	}
	if f.MovementType != "" {
		where = append(where, squirrel.Eq{"movement_type": f.MovementType})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"movement_date": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.LtOrEq{"movement_date": *f.To})
	}

	count := psql.Select("COUNT(*)").From("stock_movements").Where(where)
	b := psql.Select(movementColumns).From("stock_movements").Where(where).OrderBy("seq DESC")

	var list []*entity.StockMovement
	total, err := selectPage(ctx, r.q, &list, count, pageQuery(b, f.Limit, f.Offset))
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	return list, total, nil
}
