package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ledger"
	"github.com/jhoicas/Gestion-api/internal/application/numbering"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/inventory"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

// UseCase órdenes de compra. Sólo las órdenes recibidas tienen movimientos en el libro.
type UseCase struct {
	tx     ports.TxRunner
	repos  repository.Repos
	ledger *ledger.Reconciler
	cache  ports.Cache
	locker ports.DocumentLocker
	log    *logger.Logger
	now    func() time.Time
}

// NewUseCase construye el caso de uso. repos se usa sólo para lecturas fuera de transacción.
func NewUseCase(
	tx ports.TxRunner,
	repos repository.Repos,
	rec *ledger.Reconciler,
	cache ports.Cache,
	locker ports.DocumentLocker,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		tx:     tx,
		repos:  repos,
		ledger: rec,
		cache:  cache,
		locker: locker,
		log:    log.Component("purchasing"),
		now:    time.Now,
	}
}

// Create crea la orden; si llega como received aplica las entradas de stock en la misma transacción.
func (uc *UseCase) Create(ctx context.Context, actor string, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	orderDate, err := dto.ParseDate("order_date", in.OrderDate)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = entity.PurchaseOrderPending
	}
	items, total, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	order := &entity.PurchaseOrder{
		ID:           uuid.New().String(),
		SupplierName: in.SupplierName,
		OrderDate:    orderDate,
		Status:       status,
		Notes:        in.Notes,
		TotalAmount:  total,
		CreatedBy:    actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i := range items {
		items[i].PurchaseOrderID = order.ID
	}
	order.Items = items
	if status == entity.PurchaseOrderReceived {
		order.ReceivedAt = &now
	}

	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		number, err := numbering.Resolve(ctx, repos.Sequences, repos.PurchaseOrders.ExistsNumber,
			numbering.PurchaseOrder, domain.EntityPurchaseOrder, in.Number, orderDate)
		if err != nil {
			return err
		}
		order.Number = number
		if err := ensureProducts(ctx, repos.Products, items); err != nil {
			return err
		}
		if err := repos.PurchaseOrders.Create(ctx, order); err != nil {
			return err
		}
		if status == entity.PurchaseOrderReceived {
			_, err = uc.ledger.ApplyMovements(ctx, ledger.StoreFrom(repos), receiptBatch(order, actor))
		}
		return err
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("supplier", in.SupplierName).Msg("purchase order creation rolled back")
		return nil, err
	}

	uc.signal(ctx, order.Status)
	uc.log.Ctx(ctx).Info().Str("purchase_order_id", order.ID).Str("number", order.Number).
		Str("status", order.Status).Int("items", len(order.Items)).Msg("purchase order created")
	return toResponse(order), nil
}

// Update reemplaza cabecera y líneas. Una orden recibida se reconcilia; una anulada no se edita.
func (uc *UseCase) Update(ctx context.Context, actor, id string, in dto.UpdatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	orderDate, err := dto.ParseDate("order_date", in.OrderDate)
	if err != nil {
		return nil, err
	}
	items, total, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}
	unlock, err := uc.locker.Lock(ctx, ports.LockKey(entity.ReferencePurchaseOrder, id))
	if err != nil {
		return nil, err
	}
	defer unlock(ctx)

	var order *entity.PurchaseOrder
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		order, err = loadForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}
		if order.Status == entity.PurchaseOrderCancelled {
			return domain.NewConflict("Un bon de commande annulé ne peut pas être modifié")
		}
		if err := ensureProducts(ctx, repos.Products, items); err != nil {
			return err
		}
		oldItems := ledgerItems(order.Items)
		for i := range items {
			items[i].PurchaseOrderID = order.ID
		}
		order.SupplierName = in.SupplierName
		order.OrderDate = orderDate
		order.Notes = in.Notes
		order.Items = items
		order.TotalAmount = total
		order.UpdatedAt = uc.now()
		if order.Status == entity.PurchaseOrderReceived {
			if _, err := uc.ledger.Reconcile(ctx, ledger.StoreFrom(repos), oldItems, receiptBatch(order, actor)); err != nil {
				return err
			}
		}
		return repos.PurchaseOrders.Update(ctx, order)
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("purchase_order_id", id).Msg("purchase order update rolled back")
		return nil, err
	}

	uc.signal(ctx, order.Status)
	uc.log.Ctx(ctx).Info().Str("purchase_order_id", order.ID).Str("number", order.Number).
		Int("items", len(order.Items)).Msg("purchase order updated")
	return toResponse(order), nil
}

// ChangeStatus transiciones permitidas: pending→received (aplica), received→cancelled (revierte),
// pending→cancelled (sólo estado).
func (uc *UseCase) ChangeStatus(ctx context.Context, actor, id, status string) (*dto.PurchaseOrderResponse, error) {
	unlock, err := uc.locker.Lock(ctx, ports.LockKey(entity.ReferencePurchaseOrder, id))
	if err != nil {
		return nil, err
	}
	defer unlock(ctx)

	var (
		order   *entity.PurchaseOrder
		touched bool
	)
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		order, err = loadForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}
		store := ledger.StoreFrom(repos)
		switch {
		case order.Status == entity.PurchaseOrderPending && status == entity.PurchaseOrderReceived:
			now := uc.now()
			order.ReceivedAt = &now
			if _, err := uc.ledger.ApplyMovements(ctx, store, receiptBatch(order, actor)); err != nil {
				return err
			}
			touched = true
		case order.Status == entity.PurchaseOrderReceived && status == entity.PurchaseOrderCancelled:
			if _, err := uc.ledger.ReverseMovements(ctx, store, entity.ReferencePurchaseOrder, order.ID); err != nil {
				return err
			}
			touched = true
		case order.Status == entity.PurchaseOrderPending && status == entity.PurchaseOrderCancelled:
		default:
			return domain.NewValidation("status", "transition "+order.Status+" → "+status+" non autorisée")
		}
		order.Status = status
		order.UpdatedAt = uc.now()
		return repos.PurchaseOrders.Update(ctx, order)
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("purchase_order_id", id).Str("status", status).Msg("purchase order status change rolled back")
		return nil, err
	}

	if touched {
		ports.Invalidate(ctx, uc.cache, uc.log, ports.LedgerTags(ports.TagPurchaseOrders)...)
	} else {
		ports.Invalidate(ctx, uc.cache, uc.log, ports.TagPurchaseOrders)
	}
	uc.log.Ctx(ctx).Info().Str("purchase_order_id", order.ID).Str("number", order.Number).
		Str("status", order.Status).Bool("ledger", touched).Msg("purchase order status changed")
	return toResponse(order), nil
}

// Delete borra la orden; si estaba recibida revierte antes sus entradas.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	unlock, err := uc.locker.Lock(ctx, ports.LockKey(entity.ReferencePurchaseOrder, id))
	if err != nil {
		return err
	}
	defer unlock(ctx)

	var order *entity.PurchaseOrder
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		order, err = loadForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}
		if order.Status == entity.PurchaseOrderReceived {
			if _, err := uc.ledger.ReverseMovements(ctx, ledger.StoreFrom(repos), entity.ReferencePurchaseOrder, order.ID); err != nil {
				return err
			}
		}
		return repos.PurchaseOrders.Delete(ctx, order.ID)
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("purchase_order_id", id).Msg("purchase order deletion rolled back")
		return err
	}

	uc.signal(ctx, order.Status)
	uc.log.Ctx(ctx).Info().Str("purchase_order_id", order.ID).Str("number", order.Number).Msg("purchase order deleted")
	return nil
}

// Get obtiene una orden con sus líneas.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.PurchaseOrderResponse, error) {
	order, err := uc.repos.PurchaseOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFound(domain.EntityPurchaseOrder, id)
	}
	return toResponse(order), nil
}

// List lista órdenes, opcionalmente filtradas por estado.
func (uc *UseCase) List(ctx context.Context, status string, page dto.PageRequest) (*dto.PurchaseOrderListResponse, error) {
	page.DefaultPage()
	orders, total, err := uc.repos.PurchaseOrders.List(ctx, entity.PurchaseOrderFilter{Status: status, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseOrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, *toResponse(o))
	}
	return &dto.PurchaseOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

func (uc *UseCase) signal(ctx context.Context, status string) {
	if status == entity.PurchaseOrderReceived {
		ports.Invalidate(ctx, uc.cache, uc.log, ports.LedgerTags(ports.TagPurchaseOrders)...)
		return
	}
	ports.Invalidate(ctx, uc.cache, uc.log, ports.TagPurchaseOrders)
}

func loadForUpdate(ctx context.Context, repos repository.Repos, id string) (*entity.PurchaseOrder, error) {
	order, err := repos.PurchaseOrders.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFound(domain.EntityPurchaseOrder, id)
	}
	return order, nil
}

func buildItems(in []dto.PurchaseOrderItemRequest) ([]entity.PurchaseOrderItem, decimal.Decimal, error) {
	items := make([]entity.PurchaseOrderItem, 0, len(in))
	total := decimal.Zero
	for _, it := range in {
		if !it.Quantity.IsPositive() {
			return nil, decimal.Zero, domain.NewValidation("quantity", "la quantité doit être positive")
		}
		if it.UnitCost.IsNegative() {
			return nil, decimal.Zero, domain.NewValidation("unit_cost", "le coût unitaire ne peut pas être négatif")
		}
		line := inventory.LineTotal(it.Quantity, it.UnitCost, decimal.Zero)
		items = append(items, entity.PurchaseOrderItem{
			ID:        uuid.New().String(),
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			LineTotal: line,
		})
		total = total.Add(line)
	}
	return items, total, nil
}

func ensureProducts(ctx context.Context, products repository.ProductRepository, items []entity.PurchaseOrderItem) error {
	for _, it := range items {
		p, err := products.GetByID(ctx, it.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.ProductNotFoundError{ProductID: it.ProductID}
		}
	}
	return nil
}

func ledgerItems(items []entity.PurchaseOrderItem) []ledger.Item {
	out := make([]ledger.Item, 0, len(items))
	for _, it := range items {
		out = append(out, ledger.Item{ProductID: it.ProductID, Quantity: it.Quantity, UnitCost: it.UnitCost})
	}
	return out
}

// receiptBatch entradas de la orden con la fecha de la orden como fecha de movimiento.
func receiptBatch(order *entity.PurchaseOrder, actor string) ledger.MovementBatch {
	return ledger.MovementBatch{
		Items:         ledgerItems(order.Items),
		MovementDate:  order.OrderDate,
		ReferenceType: entity.ReferencePurchaseOrder,
		ReferenceID:   order.ID,
		Direction:     ledger.Increase,
		Source:        entity.MovementSourcePurchase,
		Actor:         actor,
		Note:          "Réception " + order.Number,
	}
}

func toResponse(o *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	items := make([]dto.PurchaseOrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.PurchaseOrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			LineTotal: it.LineTotal,
		})
	}
	return &dto.PurchaseOrderResponse{
		ID:           o.ID,
		Number:       o.Number,
		SupplierName: o.SupplierName,
		OrderDate:    dto.FormatDate(o.OrderDate),
		Status:       o.Status,
		ReceivedAt:   o.ReceivedAt,
		Notes:        o.Notes,
		TotalAmount:  o.TotalAmount,
		Items:        items,
		CreatedBy:    o.CreatedBy,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
