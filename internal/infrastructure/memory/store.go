// Package memory implementa los puertos de persistencia en memoria.
// Cada transacción trabaja sobre una copia del estado que sólo se publica en el commit.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

// Store base de datos en memoria. Las transacciones se serializan con mu.
type Store struct {
	mu   sync.RWMutex
	data *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Repos repositorios fuera de transacción (cada llamada es atómica por sí sola).
// No usar dentro de Run: Run mantiene el bloqueo de escritura.
func (s *Store) Repos() repository.Repos {
	return reposFor(handle{db: s})
}

// Run ejecuta fn sobre una copia del estado; si fn devuelve nil la copia reemplaza al estado actual.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, reposFor(handle{tx: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

func reposFor(h handle) repository.Repos {
	return repository.Repos{
		Products:       &ProductRepo{h: h},
		Stock:          &StockRepo{h: h},
		Movements:      &StockMovementRepo{h: h},
		PurchaseOrders: &PurchaseOrderRepo{h: h},
		DeliveryNotes:  &DeliveryNoteRepo{h: h},
		Cancellations:  &CancellationRepo{h: h},
		Invoices:       &InvoiceRepo{h: h},
		Sequences:      &SequenceRepo{h: h},
	}
}

// handle da acceso al estado: el de la transacción o el publicado (con bloqueo).
type handle struct {
	db *Store
	tx *state
}

func (h handle) read() (*state, func()) {
	if h.tx != nil {
		return h.tx, func() {}
	}
	h.db.mu.RLock()
	return h.db.data, h.db.mu.RUnlock
}

func (h handle) write() (*state, func()) {
	if h.tx != nil {
		return h.tx, func() {}
	}
	h.db.mu.Lock()
	return h.db.data, h.db.mu.Unlock
}

type state struct {
	products       map[string]entity.Product
	stock          map[string]entity.StockCurrent
	movements      map[string]entity.StockMovement
	movementSeq    int64
	purchaseOrders map[string]entity.PurchaseOrder
	deliveryNotes  map[string]entity.DeliveryNote
	cancellations  map[string]entity.DeliveryNoteCancellation
	invoices       map[string]entity.Invoice
	payments       map[string]entity.Payment
	sequences      map[string]int64
}

func newState() *state {
	return &state{
		products:       map[string]entity.Product{},
		stock:          map[string]entity.StockCurrent{},
		movements:      map[string]entity.StockMovement{},
		purchaseOrders: map[string]entity.PurchaseOrder{},
		deliveryNotes:  map[string]entity.DeliveryNote{},
		cancellations:  map[string]entity.DeliveryNoteCancellation{},
		invoices:       map[string]entity.Invoice{},
		payments:       map[string]entity.Payment{},
		sequences:      map[string]int64{},
	}
}

// clone copia profunda: las líneas de los documentos se duplican.
func (s *state) clone() *state {
	c := newState()
	c.movementSeq = s.movementSeq
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.movements {
		c.movements[k] = v
	}
	for k, v := range s.purchaseOrders {
		c.purchaseOrders[k] = copyPurchaseOrder(v)
	}
	for k, v := range s.deliveryNotes {
		c.deliveryNotes[k] = copyDeliveryNote(v)
	}
	for k, v := range s.cancellations {
		c.cancellations[k] = copyCancellation(v)
	}
	for k, v := range s.invoices {
		c.invoices[k] = copyInvoice(v)
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

func copyPurchaseOrder(o entity.PurchaseOrder) entity.PurchaseOrder {
	o.Items = append([]entity.PurchaseOrderItem(nil), o.Items...)
	return o
}

func copyDeliveryNote(n entity.DeliveryNote) entity.DeliveryNote {
	n.Items = append([]entity.DeliveryNoteItem(nil), n.Items...)
	return n
}

func copyCancellation(c entity.DeliveryNoteCancellation) entity.DeliveryNoteCancellation {
	c.Items = append([]entity.CancellationItem(nil), c.Items...)
	return c
}

func copyInvoice(i entity.Invoice) entity.Invoice {
	i.Lines = append([]entity.InvoiceLine(nil), i.Lines...)
	i.Payments = nil
	return i
}

// page recorta [offset, offset+limit) sobre n elementos; limit <= 0 = sin límite.
func page(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
