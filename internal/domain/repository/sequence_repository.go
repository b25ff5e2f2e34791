package repository

import "context"

// SequenceRepository contador por (tipo de documento, año).
// Next incrementa y devuelve el nuevo valor dentro de la transacción del llamador.
type SequenceRepository interface {
	Next(ctx context.Context, documentType string, year int) (int64, error)
}
