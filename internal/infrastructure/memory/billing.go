package memory

import (
	"context"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var (
	_ repository.InvoiceRepository  = (*InvoiceRepo)(nil)
	_ repository.SequenceRepository = (*SequenceRepo)(nil)
)

// InvoiceRepo facturas y pagos en memoria.
type InvoiceRepo struct{ h handle }

// Create guarda la factura con sus líneas.
func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	st, done := r.h.write()
	defer done()
	for _, existing := range st.invoices {
		if existing.Number == inv.Number {
			return domain.NewAlreadyExists(domain.EntityInvoice, inv.Number)
		}
	}
	st.invoices[inv.ID] = copyInvoice(*inv)
	return nil
}

// GetByID incluye líneas y pagos (por fecha de pago).
func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	st, done := r.h.read()
	defer done()
	inv, ok := st.invoices[id]
	if !ok {
		return nil, nil
	}
	inv = copyInvoice(inv)
	for _, p := range st.payments {
		if p.InvoiceID == id {
			inv.Payments = append(inv.Payments, p)
		}
	}
	sort.Slice(inv.Payments, func(i, j int) bool {
		if inv.Payments[i].PaymentDate.Equal(inv.Payments[j].PaymentDate) {
			return inv.Payments[i].CreatedAt.Before(inv.Payments[j].CreatedAt)
		}
		return inv.Payments[i].PaymentDate.Before(inv.Payments[j].PaymentDate)
	})
	return &inv, nil
}

// GetForUpdate igual que GetByID.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

// ExistsNumber indica si el número ya está usado.
func (r *InvoiceRepo) ExistsNumber(_ context.Context, number string) (bool, error) {
	st, done := r.h.read()
	defer done()
	for _, inv := range st.invoices {
		if inv.Number == number {
			return true, nil
		}
	}
	return false, nil
}

// UpdatePaymentStatus fija el importe pagado y el estado.
func (r *InvoiceRepo) UpdatePaymentStatus(_ context.Context, id string, paid decimal.Decimal, status string) error {
	st, done := r.h.write()
	defer done()
	inv, ok := st.invoices[id]
	if !ok {
		return domain.NewNotFound(domain.EntityInvoice, id)
	}
	inv.PaidAmount = paid
	inv.PaymentStatus = status
	st.invoices[id] = inv
	return nil
}

// List filtra por estado de pago.
func (r *InvoiceRepo) List(_ context.Context, f entity.InvoiceFilter) ([]*entity.Invoice, int, error) {
	st, done := r.h.read()
	defer done()
	var all []*entity.Invoice
	for _, inv := range st.invoices {
		if f.PaymentStatus != "" && inv.PaymentStatus != f.PaymentStatus {
			continue
		}
		inv = copyInvoice(inv)
		all = append(all, &inv)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Number > all[j].Number })
	from, to := page(len(all), f.Limit, f.Offset)
	return all[from:to], len(all), nil
}

// CreatePayment exige que la factura exista.
func (r *InvoiceRepo) CreatePayment(_ context.Context, p *entity.Payment) error {
	st, done := r.h.write()
	defer done()
	if _, ok := st.invoices[p.InvoiceID]; !ok {
		return domain.NewNotFound(domain.EntityInvoice, p.InvoiceID)
	}
	st.payments[p.ID] = *p
	return nil
}

// GetPayment devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetPayment(_ context.Context, id string) (*entity.Payment, error) {
	st, done := r.h.read()
	defer done()
	p, ok := st.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// DeletePayment borra el pago.
func (r *InvoiceRepo) DeletePayment(_ context.Context, id string) error {
	st, done := r.h.write()
	defer done()
	delete(st.payments, id)
	return nil
}

// SequenceRepo contadores de numeración en memoria.
type SequenceRepo struct{ h handle }

// Next incrementa el contador de (tipo, año).
func (r *SequenceRepo) Next(_ context.Context, documentType string, year int) (int64, error) {
	st, done := r.h.write()
	defer done()
	key := documentType + ":" + strconv.Itoa(year)
	st.sequences[key]++
	return st.sequences[key], nil
}
