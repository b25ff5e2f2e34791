package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/billing"
	"github.com/jhoicas/Gestion-api/internal/application/cancellation"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ledger"
	"github.com/jhoicas/Gestion-api/internal/application/sales"
	"github.com/jhoicas/Gestion-api/internal/domain"
	dombilling "github.com/jhoicas/Gestion-api/internal/domain/billing"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/cache"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	t            *testing.T
	uc           *billing.InvoiceUseCase
	sales        *sales.UseCase
	cancellation *cancellation.UseCase
}

// newFixture p1: precio local 10, IVA 20 %, 20 unidades en stock.
func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	log := logger.Nop()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{
		ID: "p1", Reference: "REF-1", Name: "Vis inox", Unit: "u",
		SalePriceLocal: d("10"), SalePriceExport: d("12"), TaxRate: d("20"), Active: true,
	}))
	require.NoError(t, repos.Stock.Create(ctx, &entity.StockCurrent{
		ProductID: "p1", QuantityAvailable: d("20"), AverageCost: d("4"),
		LastMovementDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}))
	rec := ledger.NewReconciler(log)
	return &fixture{
		t:            t,
		uc:           billing.NewInvoiceUseCase(store, repos, cache.Nop{}, cache.NopLocker{}, log, dombilling.DefaultTolerance),
		sales:        sales.NewUseCase(store, repos, rec, cache.Nop{}, cache.NopLocker{}, log),
		cancellation: cancellation.NewUseCase(store, repos, rec, cache.Nop{}, cache.NopLocker{}, log),
	}
}

// invoice24 factura de 2 × 10 + 20 % = 24.
func (f *fixture) invoice24() *dto.InvoiceResponse {
	out, err := f.uc.CreateInvoice(context.Background(), "user-1", dto.CreateInvoiceRequest{
		CustomerName: "Client SARL",
		InvoiceDate:  "2026-05-02",
		DueDate:      "2026-06-01",
		Lines:        []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: d("2")}},
	})
	require.NoError(f.t, err)
	return out
}

func (f *fixture) pay(invoiceID, amount string) (*dto.InvoiceResponse, error) {
	return f.uc.RecordPayment(context.Background(), "user-1", invoiceID, dto.CreatePaymentRequest{
		Amount: d(amount), PaymentDate: "2026-05-10", Method: "transfer",
	})
}

func TestCreateInvoice_ConLineas(t *testing.T) {
	f := newFixture(t)

	out := f.invoice24()

	assert.Equal(t, "FA-2026-00001", out.Number)
	assert.Equal(t, "2026-06-01", out.DueDate)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, "Vis inox", out.Lines[0].Description)
	assert.True(t, d("20").Equal(out.Subtotal))
	assert.True(t, d("4").Equal(out.TaxAmount))
	assert.True(t, d("24").Equal(out.TotalAmount))
	assert.True(t, d("24").Equal(out.Outstanding))
	assert.Equal(t, entity.PaymentStatusUnpaid, out.PaymentStatus)
}

func TestCreateInvoice_DesdeNotaDeEntrega(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	note, err := f.sales.Create(ctx, "user-1", dto.CreateDeliveryNoteRequest{
		CustomerName: "Client du bon",
		SaleType:     entity.SaleTypeLocal,
		DeliveryDate: "2026-04-15",
		Items:        []dto.DeliveryNoteItemRequest{{ProductID: "p1", Quantity: d("3"), DiscountRate: d("10")}},
	})
	require.NoError(t, err)
	_, err = f.cancellation.Create(ctx, "user-1", dto.CreateCancellationRequest{
		DeliveryNoteID:   note.ID,
		CancellationDate: "2026-04-20",
		Items:            []dto.CancellationItemRequest{{DeliveryNoteItemID: note.Items[0].ID, Quantity: d("1")}},
	})
	require.NoError(t, err)

	out, err := f.uc.CreateInvoice(ctx, "user-1", dto.CreateInvoiceRequest{
		DeliveryNoteID: &note.ID,
		InvoiceDate:    "2026-05-02",
	})
	require.NoError(t, err)

	assert.Equal(t, "Client du bon", out.CustomerName)
	require.NotNil(t, out.DeliveryNoteID)
	require.Len(t, out.Lines, 1)
	l := out.Lines[0]
	assert.True(t, d("2").Equal(l.Quantity))
	assert.True(t, d("18").Equal(l.LineTotal))
	assert.True(t, d("3.6").Equal(l.TaxAmount))
	assert.True(t, d("21.6").Equal(out.TotalAmount))
}

func TestCreateInvoice_NotaTotalmenteAnulada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	note, err := f.sales.Create(ctx, "user-1", dto.CreateDeliveryNoteRequest{
		CustomerName: "Client", SaleType: entity.SaleTypeLocal, DeliveryDate: "2026-04-15",
		Items: []dto.DeliveryNoteItemRequest{{ProductID: "p1", Quantity: d("2")}},
	})
	require.NoError(t, err)
	_, err = f.cancellation.Create(ctx, "user-1", dto.CreateCancellationRequest{
		DeliveryNoteID: note.ID, CancellationDate: "2026-04-20",
		Items: []dto.CancellationItemRequest{{DeliveryNoteItemID: note.Items[0].ID, Quantity: d("2")}},
	})
	require.NoError(t, err)

	_, err = f.uc.CreateInvoice(ctx, "user-1", dto.CreateInvoiceRequest{DeliveryNoteID: &note.ID, InvoiceDate: "2026-05-02"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "delivery_note_id", ve.Field)
}

func TestCreateInvoice_Validaciones(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name  string
		in    dto.CreateInvoiceRequest
		field string
	}{
		{"sin líneas ni bon", dto.CreateInvoiceRequest{CustomerName: "C", InvoiceDate: "2026-05-02"}, "lines"},
		{"sin cliente", dto.CreateInvoiceRequest{InvoiceDate: "2026-05-02",
			Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: d("1")}}}, "customer_name"},
		{"vencimiento anterior", dto.CreateInvoiceRequest{CustomerName: "C", InvoiceDate: "2026-05-02", DueDate: "2026-05-01",
			Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: d("1")}}}, "due_date"},
		{"fecha inválida", dto.CreateInvoiceRequest{CustomerName: "C", InvoiceDate: "02/05/2026",
			Lines: []dto.InvoiceLineRequest{{ProductID: "p1", Quantity: d("1")}}}, "invoice_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.CreateInvoice(context.Background(), "user-1", tt.in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestPagos_EstadoDePago(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice24()

	out, err := f.pay(inv.ID, "10")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPartial, out.PaymentStatus)
	assert.True(t, d("14").Equal(out.Outstanding))

	out, err = f.pay(inv.ID, "13.99")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, out.PaymentStatus, "dentro de la tolerancia")
	require.Len(t, out.Payments, 2)

	_, err = f.pay(inv.ID, "0.05")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)

	var second string
	for _, p := range out.Payments {
		if p.Amount.Equal(d("13.99")) {
			second = p.ID
		}
	}
	out, err = f.uc.DeletePayment(context.Background(), inv.ID, second)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPartial, out.PaymentStatus)
	assert.True(t, d("10").Equal(out.PaidAmount))
	require.Len(t, out.Payments, 1)
}

func TestPagos_Errores(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice24()

	_, err := f.pay(inv.ID, "0")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.pay("inconnue", "5")
	require.ErrorIs(t, err, domain.ErrNotFound)

	other := f.invoice24()
	out, err := f.pay(other.ID, "5")
	require.NoError(t, err)
	_, err = f.uc.DeletePayment(context.Background(), inv.ID, out.Payments[0].ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListInvoices_PorEstado(t *testing.T) {
	f := newFixture(t)
	a := f.invoice24()
	f.invoice24()
	_, err := f.pay(a.ID, "24")
	require.NoError(t, err)

	list, err := f.uc.ListInvoices(context.Background(), entity.PaymentStatusPaid, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, a.Number, list.Items[0].Number)

	got, err := f.uc.GetInvoice(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, got.Outstanding.IsZero())
}
