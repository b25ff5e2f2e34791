package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// Querier lo que comparten *pgxpool.Pool y pgx.Tx. Los repositorios funcionan con ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// psql constructor de consultas con placeholders $1, $2...
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// NewRepos arma el conjunto de repositorios sobre q (pool o tx).
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Products:       NewProductRepository(q),
		Stock:          NewStockRepository(q),
		Movements:      NewStockMovementRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		DeliveryNotes:  NewDeliveryNoteRepository(q),
		Cancellations:  NewCancellationRepository(q),
		Invoices:       NewInvoiceRepository(q),
		Sequences:      NewSequenceRepository(q),
	}
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation verifica si un error es una violación de clave foránea (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// existsBy devuelve true si hay al menos una fila en table con column = value.
func existsBy(ctx context.Context, q Querier, table, column, value string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE "+column+" = $1)", value).Scan(&exists)
	return exists, err
}

// pageQuery aplica limit/offset; limit <= 0 = sin límite.
func pageQuery(b squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	if offset > 0 {
		b = b.Offset(uint64(offset))
	}
	return b
}

// selectPage ejecuta la consulta de conteo y la de página, escaneando la segunda en dst.
func selectPage(ctx context.Context, q Querier, dst any, count, page squirrel.SelectBuilder) (int, error) {
	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}

	sql, args, err := page.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, q, dst, sql, args...); err != nil {
		return 0, err
	}
	return total, nil
}
