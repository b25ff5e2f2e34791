package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var (
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
	_ repository.DeliveryNoteRepository  = (*DeliveryNoteRepo)(nil)
	_ repository.CancellationRepository  = (*CancellationRepo)(nil)
)

// PurchaseOrderRepo órdenes de compra en memoria.
type PurchaseOrderRepo struct{ h handle }

// Create rechaza un número repetido.
func (r *PurchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	st, done := r.h.write()
	defer done()
	for _, existing := range st.purchaseOrders {
		if existing.Number == o.Number {
			return domain.NewAlreadyExists(domain.EntityPurchaseOrder, o.Number)
		}
	}
	st.purchaseOrders[o.ID] = copyPurchaseOrder(*o)
	return nil
}

// GetByID devuelve una copia con sus líneas; (nil, nil) si no existe.
func (r *PurchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	st, done := r.h.read()
	defer done()
	o, ok := st.purchaseOrders[id]
	if !ok {
		return nil, nil
	}
	o = copyPurchaseOrder(o)
	return &o, nil
}

// GetForUpdate igual que GetByID.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

// ExistsNumber indica si el número ya está usado.
func (r *PurchaseOrderRepo) ExistsNumber(_ context.Context, number string) (bool, error) {
	st, done := r.h.read()
	defer done()
	for _, o := range st.purchaseOrders {
		if o.Number == number {
			return true, nil
		}
	}
	return false, nil
}

// Update reemplaza cabecera y líneas.
func (r *PurchaseOrderRepo) Update(_ context.Context, o *entity.PurchaseOrder) error {
	st, done := r.h.write()
	defer done()
	if _, ok := st.purchaseOrders[o.ID]; !ok {
		return domain.NewNotFound(domain.EntityPurchaseOrder, o.ID)
	}
	st.purchaseOrders[o.ID] = copyPurchaseOrder(*o)
	return nil
}

// Delete borra la orden con sus líneas.
func (r *PurchaseOrderRepo) Delete(_ context.Context, id string) error {
	st, done := r.h.write()
	defer done()
	delete(st.purchaseOrders, id)
	return nil
}

// List por número descendente.
func (r *PurchaseOrderRepo) List(_ context.Context, f entity.PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error) {
	st, done := r.h.read()
	defer done()
	var all []*entity.PurchaseOrder
	for _, o := range st.purchaseOrders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		o = copyPurchaseOrder(o)
		all = append(all, &o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Number > all[j].Number })
	from, to := page(len(all), f.Limit, f.Offset)
	return all[from:to], len(all), nil
}

// DeliveryNoteRepo notas de entrega en memoria.
type DeliveryNoteRepo struct{ h handle }

// Create rechaza un número repetido.
func (r *DeliveryNoteRepo) Create(_ context.Context, n *entity.DeliveryNote) error {
	st, done := r.h.write()
	defer done()
	for _, existing := range st.deliveryNotes {
		if existing.Number == n.Number {
			return domain.NewAlreadyExists(domain.EntityDeliveryNote, n.Number)
		}
	}
	st.deliveryNotes[n.ID] = copyDeliveryNote(*n)
	return nil
}

// GetByID devuelve una copia con sus líneas.
func (r *DeliveryNoteRepo) GetByID(_ context.Context, id string) (*entity.DeliveryNote, error) {
	st, done := r.h.read()
	defer done()
	n, ok := st.deliveryNotes[id]
	if !ok {
		return nil, nil
	}
	n = copyDeliveryNote(n)
	return &n, nil
}

// GetForUpdate igual que GetByID.
func (r *DeliveryNoteRepo) GetForUpdate(ctx context.Context, id string) (*entity.DeliveryNote, error) {
	return r.GetByID(ctx, id)
}

// ExistsNumber indica si el número ya está usado.
func (r *DeliveryNoteRepo) ExistsNumber(_ context.Context, number string) (bool, error) {
	st, done := r.h.read()
	defer done()
	for _, n := range st.deliveryNotes {
		if n.Number == number {
			return true, nil
		}
	}
	return false, nil
}

// Update reemplaza cabecera y líneas.
func (r *DeliveryNoteRepo) Update(_ context.Context, n *entity.DeliveryNote) error {
	st, done := r.h.write()
	defer done()
	if _, ok := st.deliveryNotes[n.ID]; !ok {
		return domain.NewNotFound(domain.EntityDeliveryNote, n.ID)
	}
	st.deliveryNotes[n.ID] = copyDeliveryNote(*n)
	return nil
}

// Delete borra la nota.
func (r *DeliveryNoteRepo) Delete(_ context.Context, id string) error {
	st, done := r.h.write()
	defer done()
	delete(st.deliveryNotes, id)
	return nil
}

// List por número descendente.
func (r *DeliveryNoteRepo) List(_ context.Context, f entity.DeliveryNoteFilter) ([]*entity.DeliveryNote, int, error) {
	st, done := r.h.read()
	defer done()
	var all []*entity.DeliveryNote
	for _, n := range st.deliveryNotes {
		if f.Status != "" && n.Status != f.Status {
			continue
		}
		n = copyDeliveryNote(n)
		all = append(all, &n)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Number > all[j].Number })
	from, to := page(len(all), f.Limit, f.Offset)
	return all[from:to], len(all), nil
}

// CancellationRepo anulaciones en memoria.
type CancellationRepo struct{ h handle }

// Create rechaza un número repetido.
func (r *CancellationRepo) Create(_ context.Context, c *entity.DeliveryNoteCancellation) error {
	st, done := r.h.write()
	defer done()
	for _, existing := range st.cancellations {
		if existing.Number == c.Number {
			return domain.NewAlreadyExists(domain.EntityCancellation, c.Number)
		}
	}
	st.cancellations[c.ID] = copyCancellation(*c)
	return nil
}

// GetByID devuelve una copia con sus líneas.
func (r *CancellationRepo) GetByID(_ context.Context, id string) (*entity.DeliveryNoteCancellation, error) {
	st, done := r.h.read()
	defer done()
	c, ok := st.cancellations[id]
	if !ok {
		return nil, nil
	}
	c = copyCancellation(c)
	return &c, nil
}

// ExistsNumber indica si el número ya está usado.
func (r *CancellationRepo) ExistsNumber(_ context.Context, number string) (bool, error) {
	st, done := r.h.read()
	defer done()
	for _, c := range st.cancellations {
		if c.Number == number {
			return true, nil
		}
	}
	return false, nil
}

// Update reemplaza la anulación y sus líneas.
func (r *CancellationRepo) Update(_ context.Context, c *entity.DeliveryNoteCancellation) error {
	st, done := r.h.write()
	defer done()
	if _, ok := st.cancellations[c.ID]; !ok {
		return domain.NewNotFound(domain.EntityCancellation, c.ID)
	}
	st.cancellations[c.ID] = copyCancellation(*c)
	return nil
}

// Delete borra la anulación.
func (r *CancellationRepo) Delete(_ context.Context, id string) error {
	st, done := r.h.write()
	defer done()
	delete(st.cancellations, id)
	return nil
}

// ListByDeliveryNote en orden de número.
func (r *CancellationRepo) ListByDeliveryNote(_ context.Context, deliveryNoteID string) ([]*entity.DeliveryNoteCancellation, error) {
	st, done := r.h.read()
	defer done()
	var out []*entity.DeliveryNoteCancellation
	for _, c := range st.cancellations {
		if c.DeliveryNoteID != deliveryNoteID {
			continue
		}
		c = copyCancellation(c)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}
