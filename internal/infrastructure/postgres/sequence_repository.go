package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contadores de numeración por tipo de documento y año.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar la tx para que el número quede ligado al documento.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa el contador (lo crea en 1) y devuelve el nuevo valor. La fila queda bloqueada hasta el commit.
func (r *SequenceRepo) Next(ctx context.Context, documentType string, year int) (int64, error) {
	query := `
		INSERT INTO sequences (document_type, year, last_value) VALUES ($1, $2, 1)
		ON CONFLICT (document_type, year) DO UPDATE SET last_value = sequences.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, documentType, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence %s/%d: %w", documentType, year, err)
	}
	return n, nil
}
