package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `product_id, quantity_available, average_cost, last_movement_date, last_updated`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto; (nil, nil) si no tiene fila.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.StockCurrent, error) {
	return r.get(ctx, `SELECT `+stockColumns+` FROM stock_current WHERE product_id = $1`, productID)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockCurrent, error) {
	return r.get(ctx, `SELECT `+stockColumns+` FROM stock_current WHERE product_id = $1 FOR UPDATE`, productID)
}

func (r *StockRepo) get(ctx context.Context, query, productID string) (*entity.StockCurrent, error) {
	var s entity.StockCurrent
	if err := pgxscan.Get(ctx, r.q, &s, query, productID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Create inserta la fila de stock de la primera entrada del producto.
// Si otra transacción la creó entre la lectura y el insert, devuelve Conflict: el llamador debe reintentar.
func (r *StockRepo) Create(ctx context.Context, s *entity.StockCurrent) error {
	query := `
		INSERT INTO stock_current (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id) DO NOTHING`
	tag, err := r.q.Exec(ctx, query, s.ProductID, s.QuantityAvailable, s.AverageCost, s.LastMovementDate, s.LastUpdated)
	if err != nil {
		return fmt.Errorf("insert stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewConflict("Le stock du produit a été modifié simultanément, réessayez")
	}
	return nil
}

// Update reemplaza cantidad y costo promedio.
func (r *StockRepo) Update(ctx context.Context, s *entity.StockCurrent) error {
	query := `
		UPDATE stock_current SET quantity_available = $2, average_cost = $3, last_movement_date = $4, last_updated = $5
		WHERE product_id = $1`
	tag, err := r.q.Exec(ctx, query, s.ProductID, s.QuantityAvailable, s.AverageCost, s.LastMovementDate, s.LastUpdated)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock: no row for product %s", s.ProductID)
	}
	return nil
}

// List stock valorizado con datos del producto, ordenado por referencia.
func (r *StockRepo) List(ctx context.Context, limit, offset int) ([]*entity.StockValuation, int, error) {
	b := psql.Select(
		"s.product_id", "s.quantity_available", "s.average_cost", "s.last_movement_date", "s.last_updated",
		"p.reference", "p.name", "p.unit",
	).From("stock_current s").
		Join("products p ON p.id = s.product_id").
		OrderBy("p.reference")
	var list []*entity.StockValuation
	total, err := selectPage(ctx, r.q, &list, psql.Select("COUNT(*)").From("stock_current"), pageQuery(b, limit, offset))
	if err != nil {
		return nil, 0, fmt.Errorf("list stock: %w", err)
	}
	return list, total, nil
}
