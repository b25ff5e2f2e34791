package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ h handle }

// Create rechaza una referencia repetida con AlreadyExists.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	st, done := r.h.write()
	defer done()
	for _, existing := range st.products {
		if existing.Reference == p.Reference {
			return domain.NewAlreadyExists(domain.EntityProduct, p.Reference)
		}
	}
	st.products[p.ID] = *p
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	st, done := r.h.read()
	defer done()
	p, ok := st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetByReference busca por código.
func (r *ProductRepo) GetByReference(_ context.Context, reference string) (*entity.Product, error) {
	st, done := r.h.read()
	defer done()
	for _, p := range st.products {
		if p.Reference == reference {
			return &p, nil
		}
	}
	return nil, nil
}

// Update reemplaza el producto completo.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	st, done := r.h.write()
	defer done()
	if _, ok := st.products[p.ID]; !ok {
		return domain.NewNotFound(domain.EntityProduct, p.ID)
	}
	st.products[p.ID] = *p
	return nil
}

// List ordenado por referencia.
func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, int, error) {
	st, done := r.h.read()
	defer done()
	all := make([]*entity.Product, 0, len(st.products))
	for _, p := range st.products {
		all = append(all, &p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Reference < all[j].Reference })
	from, to := page(len(all), limit, offset)
	return all[from:to], len(all), nil
}

// StockRepo stock actual en memoria. GetForUpdate equivale a Get: la transacción ya es exclusiva.
type StockRepo struct{ h handle }

// Get devuelve (nil, nil) si el producto no tiene fila de stock.
func (r *StockRepo) Get(_ context.Context, productID string) (*entity.StockCurrent, error) {
	st, done := r.h.read()
	defer done()
	s, ok := st.stock[productID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// GetForUpdate igual que Get.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockCurrent, error) {
	return r.Get(ctx, productID)
}

// Create no hace nada si la fila ya existe.
func (r *StockRepo) Create(_ context.Context, s *entity.StockCurrent) error {
	st, done := r.h.write()
	defer done()
	if _, ok := st.stock[s.ProductID]; ok {
		return nil
	}
	st.stock[s.ProductID] = *s
	return nil
}

// Update exige que la fila exista.
func (r *StockRepo) Update(_ context.Context, s *entity.StockCurrent) error {
	st, done := r.h.write()
	defer done()
	if _, ok := st.stock[s.ProductID]; !ok {
		return &domain.NoStockRecordError{ProductID: s.ProductID}
	}
	st.stock[s.ProductID] = *s
	return nil
}

// List con los datos del producto, por referencia.
func (r *StockRepo) List(_ context.Context, limit, offset int) ([]*entity.StockValuation, int, error) {
	st, done := r.h.read()
	defer done()
	all := make([]*entity.StockValuation, 0, len(st.stock))
	for id, s := range st.stock {
		p := st.products[id]
		all = append(all, &entity.StockValuation{StockCurrent: s, Reference: p.Reference, Name: p.Name, Unit: p.Unit})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Reference < all[j].Reference })
	from, to := page(len(all), limit, offset)
	return all[from:to], len(all), nil
}

// StockMovementRepo libro de movimientos en memoria.
type StockMovementRepo struct{ h handle }

// Create asigna Seq en orden de inserción.
func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	st, done := r.h.write()
	defer done()
	st.movementSeq++
	m.Seq = st.movementSeq
	st.movements[m.ID] = *m
	return nil
}

// ListByReference el más antiguo primero.
func (r *StockMovementRepo) ListByReference(_ context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	st, done := r.h.read()
	defer done()
	var out []*entity.StockMovement
	for _, m := range st.movements {
		if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// Delete borra una fila del libro.
func (r *StockMovementRepo) Delete(_ context.Context, id string) error {
	st, done := r.h.write()
	defer done()
	delete(st.movements, id)
	return nil
}

// List el más reciente primero.
func (r *StockMovementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.StockMovement, int, error) {
	st, done := r.h.read()
	defer done()
	var all []*entity.StockMovement
	for _, m := range st.movements {
		if !matchMovement(m, f) {
			continue
		}
		all = append(all, &m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Seq > all[j].Seq })
	from, to := page(len(all), f.Limit, f.Offset)
	return all[from:to], len(all), nil
}

func matchMovement(m entity.StockMovement, f entity.MovementFilter) bool {
	switch {
	case f.ProductID != "" && m.ProductID != f.ProductID:
		return false
	case f.ReferenceType != "" && m.ReferenceType != f.ReferenceType:
		return false
	case f.ReferenceID != "" && m.ReferenceID != f.ReferenceID:
		return false
	case f.MovementType != "" && m.MovementType != f.MovementType:
		return false
	case f.From != nil && m.MovementDate.Before(*f.From):
		return false
	case f.To != nil && m.MovementDate.After(*f.To):
		return false
	}
	return true
}
