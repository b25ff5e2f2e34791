package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ledger"
	"github.com/jhoicas/Gestion-api/internal/application/sales"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/cache"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	t     *testing.T
	store *memory.Store
	uc    *sales.UseCase
}

// newFixture p1 con 20 unidades a costo 4; p2 sin fila de stock.
func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	store := memory.NewStore()
	log := logger.Nop()
	repos := store.Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{
		ID: "p1", Reference: "REF-1", Name: "Vis inox", Unit: "u",
		SalePriceLocal: d("10"), SalePriceExport: d("12"), TaxRate: d("20"), Active: true,
	}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{
		ID: "p2", Reference: "REF-2", Name: "Écrou", Unit: "u", SalePriceLocal: d("1"), Active: true,
	}))
	require.NoError(t, repos.Stock.Create(ctx, &entity.StockCurrent{
		ProductID: "p1", QuantityAvailable: d("20"), AverageCost: d("4"),
		LastMovementDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}))
	uc := sales.NewUseCase(store, repos, ledger.NewReconciler(log), cache.Nop{}, cache.NopLocker{}, log)
	return &fixture{t: t, store: store, uc: uc}
}

func (f *fixture) qty(productID string) string {
	s, err := f.store.Repos().Stock.Get(context.Background(), productID)
	require.NoError(f.t, err)
	require.NotNil(f.t, s)
	return s.QuantityAvailable.String()
}

func (f *fixture) cancellations(noteID string) []*entity.DeliveryNoteCancellation {
	list, err := f.store.Repos().Cancellations.ListByDeliveryNote(context.Background(), noteID)
	require.NoError(f.t, err)
	return list
}

func (f *fixture) create(saleType string, items ...dto.DeliveryNoteItemRequest) *dto.DeliveryNoteResponse {
	out, err := f.uc.Create(context.Background(), "user-1", noteRequest(saleType, items...))
	require.NoError(f.t, err)
	return out
}

func noteRequest(saleType string, items ...dto.DeliveryNoteItemRequest) dto.CreateDeliveryNoteRequest {
	return dto.CreateDeliveryNoteRequest{
		CustomerName: "Client SARL",
		SaleType:     saleType,
		DeliveryDate: "2026-04-15",
		Items:        items,
	}
}

func line(productID, qty, discount string) dto.DeliveryNoteItemRequest {
	return dto.DeliveryNoteItemRequest{ProductID: productID, Quantity: d(qty), DiscountRate: d(discount)}
}

// partial registra una anulación parcial sin pasar por su caso de uso.
func (f *fixture) partial(note *dto.DeliveryNoteResponse, qty string) {
	it := note.Items[0]
	require.NoError(f.t, f.store.Repos().Cancellations.Create(context.Background(), &entity.DeliveryNoteCancellation{
		ID: "av-1", Number: "AV-2026-00001", DeliveryNoteID: note.ID, Kind: entity.CancellationPartial,
		Items: []entity.CancellationItem{{
			ID: "avi-1", CancellationID: "av-1", DeliveryNoteItemID: it.ID, ProductID: it.ProductID,
			OriginalQuantity: it.Quantity, OriginalLineTotal: it.LineTotal, CancelledQuantity: d(qty),
		}},
	}))
}

func TestCreate_PrecioPorDefectoYSalida(t *testing.T) {
	f := newFixture(t)

	out := f.create(entity.SaleTypeLocal, line("p1", "3", "10"))

	assert.Equal(t, "BL-2026-00001", out.Number)
	assert.Equal(t, entity.DeliveryNoteActive, out.Status)
	require.Len(t, out.Items, 1)
	assert.True(t, d("10").Equal(out.Items[0].UnitPrice))
	assert.True(t, d("27").Equal(out.Items[0].LineTotal))
	assert.True(t, d("27").Equal(out.TotalAmount))
	assert.Equal(t, "17", f.qty("p1"))

	movs, err := f.store.Repos().Movements.ListByReference(context.Background(), entity.ReferenceDeliveryNote, out.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeOut, movs[0].MovementType)
	assert.Equal(t, entity.MovementSourceSaleLocal, movs[0].MovementSource)
	assert.True(t, d("4").Equal(movs[0].UnitCost))
}

func TestCreate_Exportacion(t *testing.T) {
	f := newFixture(t)
	price := d("11.5")
	custom := line("p1", "2", "0")
	custom.UnitPrice = &price

	out := f.create(entity.SaleTypeExport, line("p1", "1", "0"), custom)

	assert.True(t, d("12").Equal(out.Items[0].UnitPrice))
	assert.True(t, d("11.5").Equal(out.Items[1].UnitPrice))
	assert.True(t, d("35").Equal(out.TotalAmount))
	movs, err := f.store.Repos().Movements.ListByReference(context.Background(), entity.ReferenceDeliveryNote, out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementSourceSaleExport, movs[0].MovementSource)
}

func TestCreate_ErroresDeStock(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), "user-1", noteRequest(entity.SaleTypeLocal, line("p1", "21", "0")))
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, d("20").Equal(insufficient.Current))
	assert.True(t, d("21").Equal(insufficient.Requested))
	assert.Equal(t, "Vis inox", insufficient.ProductName)

	_, err = f.uc.Create(context.Background(), "user-1", noteRequest(entity.SaleTypeLocal, line("p1", "1", "0"), line("p2", "1", "0")))
	require.ErrorIs(t, err, domain.ErrNoStockRecord)

	assert.Equal(t, "20", f.qty("p1"))
	list, err := f.uc.List(context.Background(), "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, list.Page.Total)
}

func TestCreate_DescuentoFueraDeRango(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), "user-1", noteRequest(entity.SaleTypeLocal, line("p1", "1", "150")))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "discount_rate", ve.Field)
}

func TestCreate_NumeroManualNoBloqueaLaSecuencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manual := noteRequest(entity.SaleTypeLocal, line("p1", "1", "0"))
	manual.Number = "BL-2026-00001"
	_, err := f.uc.Create(ctx, "user-1", manual)
	require.NoError(t, err)

	for _, want := range []string{"BL-2026-00002", "BL-2026-00003", "BL-2026-00004"} {
		out := f.create(entity.SaleTypeLocal, line("p1", "1", "0"))
		assert.Equal(t, want, out.Number)
	}

	_, err = f.uc.Create(ctx, "user-1", manual)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, "16", f.qty("p1"))
}

func TestUpdate_Reconcilia(t *testing.T) {
	f := newFixture(t)
	note := f.create(entity.SaleTypeLocal, line("p1", "3", "0"))

	out, err := f.uc.Update(context.Background(), "user-1", note.ID, dto.UpdateDeliveryNoteRequest{
		CustomerName: "Client SARL",
		SaleType:     entity.SaleTypeLocal,
		DeliveryDate: "2026-04-16",
		Items:        []dto.DeliveryNoteItemRequest{line("p1", "5", "0")},
	})
	require.NoError(t, err)
	assert.True(t, d("50").Equal(out.TotalAmount))
	assert.Equal(t, "15", f.qty("p1"))
}

func TestUpdate_InsuficienteRevierteTodo(t *testing.T) {
	f := newFixture(t)
	note := f.create(entity.SaleTypeLocal, line("p1", "3", "0"))

	_, err := f.uc.Update(context.Background(), "user-1", note.ID, dto.UpdateDeliveryNoteRequest{
		CustomerName: "Client SARL",
		SaleType:     entity.SaleTypeLocal,
		DeliveryDate: "2026-04-16",
		Items:        []dto.DeliveryNoteItemRequest{line("p1", "25", "0")},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "17", f.qty("p1"))

	got, err := f.uc.Get(context.Background(), note.ID)
	require.NoError(t, err)
	assert.True(t, d("3").Equal(got.Items[0].Quantity))
}

func TestChangeStatus_AnularYReactivar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	note := f.create(entity.SaleTypeLocal, line("p1", "3", "0"))

	out, err := f.uc.ChangeStatus(ctx, "user-1", note.ID, entity.DeliveryNoteCancelled)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryNoteCancelled, out.Status)
	assert.Equal(t, "20", f.qty("p1"))

	list := f.cancellations(note.ID)
	require.Len(t, list, 1)
	full := list[0]
	assert.Equal(t, entity.CancellationFull, full.Kind)
	assert.Equal(t, "AV-", full.Number[:3])
	assert.True(t, d("30").Equal(full.TotalAmount))
	require.Len(t, full.Items, 1)
	assert.True(t, d("4").Equal(full.Items[0].UnitCost))
	assert.True(t, d("3").Equal(full.Items[0].CancelledQuantity))

	got, err := f.uc.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.True(t, got.RemainingTotal.IsZero())
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].RemainingQuantity.IsZero())
	assert.True(t, d("3").Equal(got.Items[0].CancelledQuantity))
	assert.True(t, out.RemainingTotal.IsZero())

	_, err = f.uc.ChangeStatus(ctx, "user-1", note.ID, entity.DeliveryNoteActive)
	require.NoError(t, err)
	assert.Equal(t, "17", f.qty("p1"))
	assert.Empty(t, f.cancellations(note.ID))
}

func TestChangeStatus_TransicionInvalida(t *testing.T) {
	f := newFixture(t)
	note := f.create(entity.SaleTypeLocal, line("p1", "3", "0"))

	_, err := f.uc.ChangeStatus(context.Background(), "user-1", note.ID, entity.DeliveryNoteActive)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnulacionesParcialesBloquean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	note := f.create(entity.SaleTypeLocal, line("p1", "3", "0"))
	f.partial(note, "1")

	_, err := f.uc.Update(ctx, "user-1", note.ID, dto.UpdateDeliveryNoteRequest{
		CustomerName: "X", SaleType: entity.SaleTypeLocal, DeliveryDate: "2026-04-16",
		Items: []dto.DeliveryNoteItemRequest{line("p1", "1", "0")},
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.ChangeStatus(ctx, "user-1", note.ID, entity.DeliveryNoteCancelled)
	require.ErrorIs(t, err, domain.ErrConflict)

	require.ErrorIs(t, f.uc.Delete(ctx, note.ID), domain.ErrConflict)
	assert.Equal(t, "17", f.qty("p1"))
}

func TestGet_CalculaRestante(t *testing.T) {
	f := newFixture(t)
	note := f.create(entity.SaleTypeLocal, line("p1", "3", "10"))
	f.partial(note, "1")

	got, err := f.uc.Get(context.Background(), note.ID)
	require.NoError(t, err)
	it := got.Items[0]
	assert.True(t, d("1").Equal(it.CancelledQuantity))
	assert.True(t, d("2").Equal(it.RemainingQuantity))
	assert.True(t, d("18").Equal(it.RemainingLineTotal))
	assert.True(t, d("18").Equal(got.RemainingTotal))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active := f.create(entity.SaleTypeLocal, line("p1", "3", "0"))
	require.NoError(t, f.uc.Delete(ctx, active.ID))
	assert.Equal(t, "20", f.qty("p1"))

	cancelled := f.create(entity.SaleTypeLocal, line("p1", "2", "0"))
	_, err := f.uc.ChangeStatus(ctx, "user-1", cancelled.ID, entity.DeliveryNoteCancelled)
	require.NoError(t, err)
	require.NoError(t, f.uc.Delete(ctx, cancelled.ID))
	assert.Equal(t, "20", f.qty("p1"))
	assert.Empty(t, f.cancellations(cancelled.ID))

	_, err = f.uc.Get(ctx, cancelled.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
