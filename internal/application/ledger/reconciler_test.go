package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/ledger"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

var movementDate = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	t     *testing.T
	store *memory.Store
	rec   *ledger.Reconciler
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, store: memory.NewStore(), rec: ledger.NewReconciler(logger.Nop())}
}

// product crea el producto y, si qty no es vacío, su fila de stock.
func (f *fixture) product(id, qty, avg string) {
	ctx := context.Background()
	repos := f.store.Repos()
	require.NoError(f.t, repos.Products.Create(ctx, &entity.Product{ID: id, Reference: "REF-" + id, Name: "Produit " + id}))
	if qty != "" {
		require.NoError(f.t, repos.Stock.Create(ctx, &entity.StockCurrent{
			ProductID: id, QuantityAvailable: d(qty), AverageCost: d(avg), LastMovementDate: movementDate,
		}))
	}
}

func (f *fixture) run(fn func(ctx context.Context, s ledger.Store) error) error {
	return f.store.Run(context.Background(), func(ctx context.Context, repos repository.Repos) error {
		return fn(ctx, ledger.StoreFrom(repos))
	})
}

func (f *fixture) stock(id string) *entity.StockCurrent {
	s, err := f.store.Repos().Stock.Get(context.Background(), id)
	require.NoError(f.t, err)
	return s
}

func (f *fixture) movements(refType, refID string) []*entity.StockMovement {
	movs, err := f.store.Repos().Movements.ListByReference(context.Background(), refType, refID)
	require.NoError(f.t, err)
	return movs
}

func batch(refID string, dir ledger.Direction, items ...ledger.Item) ledger.MovementBatch {
	return ledger.MovementBatch{
		Items:         items,
		MovementDate:  movementDate,
		ReferenceType: entity.ReferencePurchaseOrder,
		ReferenceID:   refID,
		Direction:     dir,
		Source:        entity.MovementSourcePurchase,
		Actor:         "user-1",
	}
}

func item(productID, qty, cost string) ledger.Item {
	return ledger.Item{ProductID: productID, Quantity: d(qty), UnitCost: d(cost)}
}

func TestApplyMovements_NetoCuadraConLineas(t *testing.T) {
	f := newFixture(t)
	f.product("p1", "", "")
	f.product("p2", "", "")

	lines := []ledger.Item{item("p1", "3", "10"), item("p2", "4.5", "2"), item("p1", "2", "12")}
	err := f.run(func(ctx context.Context, s ledger.Store) error {
		movs, err := f.rec.ApplyMovements(ctx, s, batch("po1", ledger.Increase, lines...))
		assert.Len(t, movs, 3, "un movimiento por línea")
		return err
	})
	require.NoError(t, err)

	net := ledger.NetQuantities(f.movements(entity.ReferencePurchaseOrder, "po1"))
	assert.True(t, net["p1"].Equal(d("5")), "p1 net %s", net["p1"])
	assert.True(t, net["p2"].Equal(d("4.5")), "p2 net %s", net["p2"])
	for _, m := range f.movements(entity.ReferencePurchaseOrder, "po1") {
		assert.True(t, m.Quantity.IsPositive())
		assert.Equal(t, entity.MovementTypeIn, m.MovementType)
	}
}

func TestApplyMovements_PromedioPonderado(t *testing.T) {
	f := newFixture(t)
	f.product("p1", "", "")

	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.ApplyMovements(ctx, s, batch("po1", ledger.Increase, item("p1", "4", "10")))
		return err
	}))
	st := f.stock("p1")
	assert.True(t, st.AverageCost.Equal(d("10")), "primera entrada fija el costo: %s", st.AverageCost)

	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.ApplyMovements(ctx, s, batch("po2", ledger.Increase, item("p1", "6", "15")))
		return err
	}))
	st = f.stock("p1")
	// (4*10 + 6*15) / 10 = 13
	assert.True(t, st.QuantityAvailable.Equal(d("10")))
	assert.Equal(t, "13.00", st.AverageCost.StringFixed(2))
}

func TestApplyMovements_SalidaConservaPromedio(t *testing.T) {
	f := newFixture(t)
	f.product("p1", "10", "7.25")

	var movs []*entity.StockMovement
	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) (err error) {
		movs, err = f.rec.ApplyMovements(ctx, s, batch("dn1", ledger.Decrease, item("p1", "4", "0")))
		return err
	}))
	st := f.stock("p1")
	assert.True(t, st.QuantityAvailable.Equal(d("6")))
	assert.True(t, st.AverageCost.Equal(d("7.25")))
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeOut, movs[0].MovementType)
	assert.True(t, movs[0].UnitCost.Equal(d("7.25")), "la salida registra el costo promedio vigente")
}

func TestApplyMovements_LimiteDeStockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.product("p1", "5", "20")

	err := f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.ApplyMovements(ctx, s, batch("dn1", ledger.Decrease, item("p1", "5.001", "0")))
		return err
	})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Current.Equal(d("5")))
	assert.True(t, insufficient.Requested.Equal(d("5.001")))
	assert.True(t, f.stock("p1").QuantityAvailable.Equal(d("5")), "estado sin cambios")
	assert.Empty(t, f.movements(entity.ReferencePurchaseOrder, "dn1"))

	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.ApplyMovements(ctx, s, batch("dn1", ledger.Decrease, item("p1", "5", "0")))
		return err
	}))
	assert.True(t, f.stock("p1").QuantityAvailable.IsZero())
}

func TestApplyMovements_Errores(t *testing.T) {
	f := newFixture(t)
	f.product("p1", "", "")

	tests := []struct {
		name   string
		batch  ledger.MovementBatch
		target error
	}{
		{"producto inexistente", batch("x", ledger.Increase, item("ghost", "1", "1")), domain.ErrProductNotFound},
		{"salida sin fila de stock", batch("x", ledger.Decrease, item("p1", "1", "0")), domain.ErrNoStockRecord},
		{"cantidad cero", batch("x", ledger.Increase, item("p1", "0", "1")), domain.ErrInvalidInput},
		{"cantidad negativa", batch("x", ledger.Increase, item("p1", "-2", "1")), domain.ErrInvalidInput},
		{"costo negativo", batch("x", ledger.Increase, item("p1", "1", "-1")), domain.ErrInvalidInput},
		{"sin referencia", batch("", ledger.Increase, item("p1", "1", "1")), domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.run(func(ctx context.Context, s ledger.Store) error {
				_, err := f.rec.ApplyMovements(ctx, s, tt.batch)
				return err
			})
			assert.ErrorIs(t, err, tt.target)
		})
	}
	assert.Nil(t, f.stock("p1"))
}

func TestReverseMovements_InversaExacta(t *testing.T) {
	f := newFixture(t)
	f.product("p1", "7", "13.3333")
	f.product("p2", "2", "0.4567")
	before1, before2 := *f.stock("p1"), *f.stock("p2")

	for _, dir := range []ledger.Direction{ledger.Increase, ledger.Decrease} {
		t.Run(string(dir), func(t *testing.T) {
			lines := []ledger.Item{item("p1", "3", "17.91"), item("p2", "1", "3"), item("p1", "1.5", "4.1")}
			require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
				_, err := f.rec.ApplyMovements(ctx, s, batch("doc", dir, lines...))
				return err
			}))
			require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
				reversed, err := f.rec.ReverseMovements(ctx, s, entity.ReferencePurchaseOrder, "doc")
				assert.Len(t, reversed, 3)
				return err
			}))

			after1, after2 := f.stock("p1"), f.stock("p2")
			assert.Equal(t, before1.QuantityAvailable.String(), after1.QuantityAvailable.String())
			assert.Equal(t, before1.AverageCost.String(), after1.AverageCost.String())
			assert.Equal(t, before2.QuantityAvailable.String(), after2.QuantityAvailable.String())
			assert.Equal(t, before2.AverageCost.String(), after2.AverageCost.String())
			assert.Empty(t, f.movements(entity.ReferencePurchaseOrder, "doc"))
		})
	}
}

func TestReverseMovements_RetiraCostoSiElStockCambio(t *testing.T) {
	f := newFixture(t)
	f.product("p1", "10", "20")

	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		if _, err := f.rec.ApplyMovements(ctx, s, batch("po1", ledger.Increase, item("p1", "5", "26"))); err != nil {
			return err
		}
		// otra entrada posterior: la foto de po1 ya no coincide
		_, err := f.rec.ApplyMovements(ctx, s, batch("po2", ledger.Increase, item("p1", "5", "22")))
		return err
	}))
	// (15*22 + 5*22) / 20 = 22
	assert.Equal(t, "22", f.stock("p1").AverageCost.String())

	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.ReverseMovements(ctx, s, entity.ReferencePurchaseOrder, "po1")
		return err
	}))
	st := f.stock("p1")
	// (20*22 - 5*26) / 15 = 20.6667
	assert.True(t, st.QuantityAvailable.Equal(d("15")))
	assert.Equal(t, "20.6667", st.AverageCost.StringFixed(4))
}

func TestReverseMovements_EntradaDejariaStockNegativo(t *testing.T) {
	f := newFixture(t)
	f.product("p1", "", "")

	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.ApplyMovements(ctx, s, batch("po1", ledger.Increase, item("p1", "5", "10")))
		return err
	}))
	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.ApplyMovements(ctx, s, batch("dn1", ledger.Decrease, item("p1", "4", "0")))
		return err
	}))

	err := f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.ReverseMovements(ctx, s, entity.ReferencePurchaseOrder, "po1")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Len(t, f.movements(entity.ReferencePurchaseOrder, "po1"), 1, "rollback conserva el movimiento")
	assert.True(t, f.stock("p1").QuantityAvailable.Equal(d("1")))
}

func TestReverseMovements_SinMovimientos(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		reversed, err := f.rec.ReverseMovements(ctx, s, entity.ReferencePurchaseOrder, "nothing")
		assert.Empty(t, reversed)
		return err
	}))
}

func TestReconcile_ReemplazaLineas(t *testing.T) {
	f := newFixture(t)
	f.product("p1", "20", "5")
	f.product("p2", "20", "5")

	old := []ledger.Item{item("p1", "4", "0")}
	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.ApplyMovements(ctx, s, batch("dn1", ledger.Decrease, old...))
		return err
	}))

	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.Reconcile(ctx, s, old, batch("dn1", ledger.Decrease, item("p1", "1", "0"), item("p2", "3", "0")))
		return err
	}))
	assert.True(t, f.stock("p1").QuantityAvailable.Equal(d("19")))
	assert.True(t, f.stock("p2").QuantityAvailable.Equal(d("17")))
	net := ledger.NetQuantities(f.movements(entity.ReferencePurchaseOrder, "dn1"))
	assert.True(t, net["p1"].Equal(d("-1")))
	assert.True(t, net["p2"].Equal(d("-3")))
}

func TestReconcile_FalloDeshaceLaReversion(t *testing.T) {
	f := newFixture(t)
	f.product("p1", "10", "5")

	old := []ledger.Item{item("p1", "4", "0")}
	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.ApplyMovements(ctx, s, batch("dn1", ledger.Decrease, old...))
		return err
	}))

	err := f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.Reconcile(ctx, s, old, batch("dn1", ledger.Decrease, item("p1", "11", "0")))
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.stock("p1").QuantityAvailable.Equal(d("6")), "la reversión también se deshace")
	assert.Len(t, f.movements(entity.ReferencePurchaseOrder, "dn1"), 1)
}

func TestEscenario_RecibirYAnularCompra(t *testing.T) {
	f := newFixture(t)
	f.product("P", "", "")

	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.ApplyMovements(ctx, s, batch("po1", ledger.Increase, item("P", "5", "100")))
		return err
	}))
	st := f.stock("P")
	assert.True(t, st.QuantityAvailable.Equal(d("5")))
	assert.Equal(t, "100.00", st.AverageCost.StringFixed(2))

	require.NoError(t, f.run(func(ctx context.Context, s ledger.Store) error {
		_, err := f.rec.ReverseMovements(ctx, s, entity.ReferencePurchaseOrder, "po1")
		return err
	}))
	st = f.stock("P")
	assert.True(t, st.QuantityAvailable.IsZero())
	assert.Equal(t, "100.00", st.AverageCost.StringFixed(2))
	assert.Empty(t, f.movements(entity.ReferencePurchaseOrder, "po1"))
}
