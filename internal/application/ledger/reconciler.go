package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/inventory"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

var tracer = otel.Tracer("gestion/ledger")

// Direction sentido del efecto en stock.
type Direction string

const (
	Increase Direction = "increase" // recepción de compra, anulación de venta
	Decrease Direction = "decrease" // nota de entrega
)

func (d Direction) movementType() string {
	if d == Decrease {
		return entity.MovementTypeOut
	}
	return entity.MovementTypeIn
}

// Item línea a aplicar. En salidas UnitCost se ignora: se registra el costo promedio vigente.
type Item struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// MovementBatch conjunto de líneas de un documento fuente.
type MovementBatch struct {
	Items         []Item
	MovementDate  time.Time
	ReferenceType string
	ReferenceID   string
	Direction     Direction
	Source        string
	Actor         string
	Note          string
}

// Store unidad de trabajo del reconciliador: repositorios atados a la transacción del llamador.
type Store struct {
	Products  repository.ProductRepository
	Stock     repository.StockRepository
	Movements repository.StockMovementRepository
}

// StoreFrom toma los repositorios que necesita el reconciliador.
func StoreFrom(repos repository.Repos) Store {
	return Store{Products: repos.Products, Stock: repos.Stock, Movements: repos.Movements}
}

// Reconciler aplica, revierte y reaplica el efecto en stock de los documentos.
// No abre transacciones: la atomicidad es responsabilidad del llamador.
type Reconciler struct {
	log *logger.Logger
	now func() time.Time
}

// NewReconciler construye el reconciliador.
func NewReconciler(log *logger.Logger) *Reconciler {
	return &Reconciler{log: log.Component("ledger"), now: time.Now}
}

// ApplyMovements inserta un movimiento por línea y actualiza StockCurrent.
// La fila de stock se lee con bloqueo (GetForUpdate).
func (r *Reconciler) ApplyMovements(ctx context.Context, store Store, batch MovementBatch) (_ []*entity.StockMovement, err error) {
	ctx, span := tracer.Start(ctx, "ledger.ApplyMovements", trace.WithAttributes(
		attribute.String("reference.type", batch.ReferenceType),
		attribute.String("reference.id", batch.ReferenceID),
		attribute.String("direction", string(batch.Direction)),
		attribute.Int("items", len(batch.Items)),
	))
	defer func() { endSpan(span, err) }()

	if err := validateBatch(batch); err != nil {
		return nil, err
	}
	now := r.now()
	out := make([]*entity.StockMovement, 0, len(batch.Items))
	for _, item := range batch.Items {
		product, err := store.Products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, &domain.ProductNotFoundError{ProductID: item.ProductID}
		}

		var mov *entity.StockMovement
		if batch.Direction == Decrease {
			mov, err = r.decrease(ctx, store, product, item, batch, now)
		} else {
			mov, err = r.increase(ctx, store, item, batch, now)
		}
		if err != nil {
			return nil, err
		}
		if err := store.Movements.Create(ctx, mov); err != nil {
			return nil, err
		}
		out = append(out, mov)
	}
	return out, nil
}

// decrease: la salida exige fila de stock y cantidad suficiente; el costo promedio no cambia.
func (r *Reconciler) decrease(ctx context.Context, store Store, product *entity.Product, item Item, batch MovementBatch, now time.Time) (*entity.StockMovement, error) {
	stock, err := store.Stock.GetForUpdate(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, &domain.NoStockRecordError{ProductID: product.ID, ProductName: product.Name}
	}
	newQty := stock.QuantityAvailable.Sub(item.Quantity)
	if newQty.IsNegative() {
		return nil, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Current:     stock.QuantityAvailable,
			Requested:   item.Quantity,
		}
	}
	mov := newMovement(batch, item, stock, now)
	mov.UnitCost = stock.AverageCost
	mov.AverageCostAfter = stock.AverageCost

	stock.QuantityAvailable = newQty
	stock.LastMovementDate = batch.MovementDate
	stock.LastUpdated = now
	if err := store.Stock.Update(ctx, stock); err != nil {
		return nil, err
	}
	return mov, nil
}

// increase: crea la fila de stock si no existe (costo = costo de entrada) y recalcula el promedio ponderado.
func (r *Reconciler) increase(ctx context.Context, store Store, item Item, batch MovementBatch, now time.Time) (*entity.StockMovement, error) {
	stock, err := store.Stock.GetForUpdate(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		if err := store.Stock.Create(ctx, &entity.StockCurrent{
			ProductID:         item.ProductID,
			QuantityAvailable: decimal.Zero,
			AverageCost:       item.UnitCost.Round(inventory.CostScale),
			LastMovementDate:  batch.MovementDate,
			LastUpdated:       now,
		}); err != nil {
			return nil, err
		}
		// otra transacción pudo crearla primero: se relee con bloqueo
		if stock, err = store.Stock.GetForUpdate(ctx, item.ProductID); err != nil {
			return nil, err
		}
		if stock == nil {
			return nil, &domain.NoStockRecordError{ProductID: item.ProductID}
		}
	}
	mov := newMovement(batch, item, stock, now)
	newCost := inventory.WeightedAverageCost(stock.QuantityAvailable, stock.AverageCost, item.Quantity, item.UnitCost)
	mov.AverageCostAfter = newCost

	stock.QuantityAvailable = stock.QuantityAvailable.Add(item.Quantity)
	stock.AverageCost = newCost
	stock.LastMovementDate = batch.MovementDate
	stock.LastUpdated = now
	if err := store.Stock.Update(ctx, stock); err != nil {
		return nil, err
	}
	return mov, nil
}

func newMovement(batch MovementBatch, item Item, stock *entity.StockCurrent, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:                uuid.New().String(),
		ProductID:         item.ProductID,
		MovementType:      batch.Direction.movementType(),
		MovementSource:    batch.Source,
		ReferenceType:     batch.ReferenceType,
		ReferenceID:       batch.ReferenceID,
		Quantity:          item.Quantity,
		UnitCost:          item.UnitCost,
		QuantityBefore:    stock.QuantityAvailable,
		AverageCostBefore: stock.AverageCost,
		MovementDate:      batch.MovementDate,
		Note:              batch.Note,
		CreatedBy:         batch.Actor,
		CreatedAt:         now,
	}
}

// ReverseMovements deshace los movimientos de un documento, del más reciente al más antiguo,
// y borra las filas del libro. Sin movimientos es un no-op.
func (r *Reconciler) ReverseMovements(ctx context.Context, store Store, referenceType, referenceID string) (_ []*entity.StockMovement, err error) {
	ctx, span := tracer.Start(ctx, "ledger.ReverseMovements", trace.WithAttributes(
		attribute.String("reference.type", referenceType),
		attribute.String("reference.id", referenceID),
	))
	defer func() { endSpan(span, err) }()

	movs, err := store.Movements.ListByReference(ctx, referenceType, referenceID)
	if err != nil {
		return nil, err
	}
	now := r.now()
	reversed := make([]*entity.StockMovement, 0, len(movs))
	for i := len(movs) - 1; i >= 0; i-- {
		mov := movs[i]
		if err := r.reverseOne(ctx, store, mov, now); err != nil {
			return nil, err
		}
		if err := store.Movements.Delete(ctx, mov.ID); err != nil {
			return nil, err
		}
		reversed = append(reversed, mov)
	}
	span.SetAttributes(attribute.Int("reversed", len(reversed)))
	return reversed, nil
}

func (r *Reconciler) reverseOne(ctx context.Context, store Store, mov *entity.StockMovement, now time.Time) error {
	stock, err := store.Stock.GetForUpdate(ctx, mov.ProductID)
	if err != nil {
		return err
	}
	if stock == nil {
		return &domain.NoStockRecordError{ProductID: mov.ProductID}
	}

	if mov.MovementType == entity.MovementTypeOut {
		stock.QuantityAvailable = stock.QuantityAvailable.Add(mov.Quantity)
		stock.LastUpdated = now
		return store.Stock.Update(ctx, stock)
	}

	newQty := stock.QuantityAvailable.Sub(mov.Quantity)
	if newQty.IsNegative() {
		name := ""
		if p, _ := store.Products.GetByID(ctx, mov.ProductID); p != nil {
			name = p.Name
		}
		return &domain.InsufficientStockError{
			ProductID:   mov.ProductID,
			ProductName: name,
			Current:     stock.QuantityAvailable,
			Requested:   mov.Quantity,
		}
	}
	switch {
	case stock.QuantityAvailable.Equal(mov.QuantityBefore.Add(mov.Quantity)) && stock.AverageCost.Equal(mov.AverageCostAfter):
		// nada se movió desde esta entrada: inversa exacta
		stock.AverageCost = mov.AverageCostBefore
	case newQty.IsZero():
		// sin stock restante el promedio se conserva
	default:
		stock.AverageCost = inventory.RemoveFromAverage(stock.QuantityAvailable, stock.AverageCost, mov.Quantity, mov.UnitCost)
	}
	stock.QuantityAvailable = newQty
	stock.LastUpdated = now
	return store.Stock.Update(ctx, stock)
}

// Reconcile revierte los movimientos vigentes del documento y aplica el nuevo conjunto de líneas.
// oldItems son las líneas que el llamador cree aplicadas; una diferencia con el libro sólo se registra.
func (r *Reconciler) Reconcile(ctx context.Context, store Store, oldItems []Item, batch MovementBatch) (_ []*entity.StockMovement, err error) {
	ctx, span := tracer.Start(ctx, "ledger.Reconcile", trace.WithAttributes(
		attribute.String("reference.type", batch.ReferenceType),
		attribute.String("reference.id", batch.ReferenceID),
	))
	defer func() { endSpan(span, err) }()

	reversed, err := r.ReverseMovements(ctx, store, batch.ReferenceType, batch.ReferenceID)
	if err != nil {
		return nil, err
	}
	if drift := ledgerDrift(reversed, oldItems, batch.Direction); len(drift) > 0 {
		r.log.Ctx(ctx).Warn().
			Str("reference_type", batch.ReferenceType).
			Str("reference_id", batch.ReferenceID).
			Strs("products", drift).
			Msg("ledger movements did not match document lines")
	}
	return r.ApplyMovements(ctx, store, batch)
}

// NetQuantities suma con signo las cantidades por producto.
func NetQuantities(movs []*entity.StockMovement) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal, len(movs))
	for _, m := range movs {
		net[m.ProductID] = net[m.ProductID].Add(m.Signed())
	}
	return net
}

func ledgerDrift(reversed []*entity.StockMovement, oldItems []Item, dir Direction) []string {
	got := NetQuantities(reversed)
	want := make(map[string]decimal.Decimal, len(oldItems))
	for _, it := range oldItems {
		q := it.Quantity
		if dir == Decrease {
			q = q.Neg()
		}
		want[it.ProductID] = want[it.ProductID].Add(q)
	}
	var drift []string
	for id, q := range want {
		if !got[id].Equal(q) {
			drift = append(drift, id)
		}
	}
	for id := range got {
		if _, ok := want[id]; !ok {
			drift = append(drift, id)
		}
	}
	return drift
}

func validateBatch(b MovementBatch) error {
	if b.ReferenceType == "" || b.ReferenceID == "" {
		return domain.NewValidation("reference", "référence du document obligatoire")
	}
	if b.Direction != Increase && b.Direction != Decrease {
		return domain.NewValidation("direction", "sens de mouvement inconnu")
	}
	if b.MovementDate.IsZero() {
		return domain.NewValidation("movementDate", "date de mouvement obligatoire")
	}
	for _, it := range b.Items {
		if it.ProductID == "" {
			return domain.NewValidation("productId", "produit obligatoire")
		}
		if !it.Quantity.IsPositive() {
			return domain.NewValidation("quantity", "la quantité doit être positive")
		}
		if it.UnitCost.IsNegative() {
			return domain.NewValidation("unitCost", "le coût unitaire ne peut pas être négatif")
		}
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
