package sales

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

var hundred = decimal.NewFromInt(100)

// UseCase notas de entrega. Una nota activa descuenta stock; anulada no tiene movimientos.
type UseCase struct {
	tx     ports.TxRunner
	repos  repository.Repos
	ledger *ledger.Reconciler
	cache  ports.Cache
	locker ports.DocumentLocker
	log    *logger.Logger
	now    func() time.Time
}

// NewUseCase construye el caso de uso de notas de entrega. repos se usa sólo para lecturas fuera de transacción.
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
		log:    log.Component("sales"),
		now:    time.Now,
	}
}

// Create crea la nota activa y registra las salidas de stock.
func (uc *UseCase) Create(ctx context.Context, actor string, in dto.CreateDeliveryNoteRequest) (*dto.DeliveryNoteResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	deliveryDate, err := dto.ParseDate("delivery_date", in.DeliveryDate)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	note := &entity.DeliveryNote{
		ID:           uuid.New().String(),
		CustomerName: in.CustomerName,
		SaleType:     in.SaleType,
		DeliveryDate: deliveryDate,
		Status:       entity.DeliveryNoteActive,
		Notes:        in.Notes,
		CreatedBy:    actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		items, total, err := buildItems(ctx, repos.Products, note.ID, in.SaleType, in.Items)
		if err != nil {
			return err
		}
		note.Items = items
		note.TotalAmount = total
		number, err := numbering.Resolve(ctx, repos.Sequences, repos.DeliveryNotes.ExistsNumber,
			numbering.DeliveryNote, domain.EntityDeliveryNote, in.Number, deliveryDate)
		if err != nil {
			return err
		}
		note.Number = number
		if err := repos.DeliveryNotes.Create(ctx, note); err != nil {
			return err
		}
		_, err = uc.ledger.ApplyMovements(ctx, ledger.StoreFrom(repos), issueBatch(note, actor))
		return err
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("customer", in.CustomerName).Msg("delivery note creation rolled back")
		return nil, err
	}

	ports.Invalidate(ctx, uc.cache, uc.log, ports.LedgerTags(ports.TagDeliveryNotes)...)
	uc.log.Ctx(ctx).Info().Str("delivery_note_id", note.ID).Str("number", note.Number).
		Int("items", len(note.Items)).Msg("delivery note created")
	return toResponse(note, nil), nil
}

// Update reemplaza cabecera y líneas de una nota activa sin anulaciones parciales.
func (uc *UseCase) Update(ctx context.Context, actor, id string, in dto.UpdateDeliveryNoteRequest) (*dto.DeliveryNoteResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	deliveryDate, err := dto.ParseDate("delivery_date", in.DeliveryDate)
	if err != nil {
		return nil, err
	}
	unlock, err := uc.locker.Lock(ctx, ports.LockKey(entity.ReferenceDeliveryNote, id))
	if err != nil {
		return nil, err
	}
	defer unlock(ctx)

	var note *entity.DeliveryNote
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		note, err = loadForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}
		if note.Status != entity.DeliveryNoteActive {
			return domain.NewConflict("Un bon de livraison annulé ne peut pas être modifié")
		}
		if err := refusePartials(ctx, repos, note.ID, "modifié"); err != nil {
			return err
		}
		items, total, err := buildItems(ctx, repos.Products, note.ID, in.SaleType, in.Items)
		if err != nil {
			return err
		}
		oldItems := ledgerItems(note.Items)
		note.CustomerName = in.CustomerName
		note.SaleType = in.SaleType
		note.DeliveryDate = deliveryDate
		note.Notes = in.Notes
		note.Items = items
		note.TotalAmount = total
		note.UpdatedAt = uc.now()
		if _, err := uc.ledger.Reconcile(ctx, ledger.StoreFrom(repos), oldItems, issueBatch(note, actor)); err != nil {
			return err
		}
		return repos.DeliveryNotes.Update(ctx, note)
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("delivery_note_id", id).Msg("delivery note update rolled back")
		return nil, err
	}

	ports.Invalidate(ctx, uc.cache, uc.log, ports.LedgerTags(ports.TagDeliveryNotes)...)
	uc.log.Ctx(ctx).Info().Str("delivery_note_id", note.ID).Str("number", note.Number).
		Int("items", len(note.Items)).Msg("delivery note updated")
	return toResponse(note, nil), nil
}

// ChangeStatus active→cancelled revierte las salidas y deja una anulación full documental;
// cancelled→active vuelve a aplicar las líneas y borra esa anulación.
func (uc *UseCase) ChangeStatus(ctx context.Context, actor, id, status string) (*dto.DeliveryNoteResponse, error) {
	unlock, err := uc.locker.Lock(ctx, ports.LockKey(entity.ReferenceDeliveryNote, id))
	if err != nil {
		return nil, err
	}
	defer unlock(ctx)

	var note *entity.DeliveryNote
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		note, err = loadForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}
		store := ledger.StoreFrom(repos)
		switch {
		case note.Status == entity.DeliveryNoteActive && status == entity.DeliveryNoteCancelled:
			if err := refusePartials(ctx, repos, note.ID, "annulé"); err != nil {
				return err
			}
			reversed, err := uc.ledger.ReverseMovements(ctx, store, entity.ReferenceDeliveryNote, note.ID)
			if err != nil {
				return err
			}
			if err := uc.createFull(ctx, repos, note, reversed, actor); err != nil {
				return err
			}
		case note.Status == entity.DeliveryNoteCancelled && status == entity.DeliveryNoteActive:
			if _, err := uc.ledger.ApplyMovements(ctx, store, issueBatch(note, actor)); err != nil {
				return err
			}
			if err := deleteFull(ctx, repos, note.ID); err != nil {
				return err
			}
		default:
			return domain.NewValidation("status", "transition "+note.Status+" → "+status+" non autorisée")
		}
		note.Status = status
		note.UpdatedAt = uc.now()
		return repos.DeliveryNotes.Update(ctx, note)
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("delivery_note_id", id).Str("status", status).Msg("delivery note status change rolled back")
		return nil, err
	}

	tags := append(ports.LedgerTags(ports.TagDeliveryNotes), ports.TagCancellations)
	ports.Invalidate(ctx, uc.cache, uc.log, tags...)
	uc.log.Ctx(ctx).Info().Str("delivery_note_id", note.ID).Str("number", note.Number).
		Str("status", note.Status).Msg("delivery note status changed")
	return toResponse(note, nil), nil
}

// Delete borra la nota. Con anulaciones parciales es un conflicto; la anulación full derivada se borra con ella.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	unlock, err := uc.locker.Lock(ctx, ports.LockKey(entity.ReferenceDeliveryNote, id))
	if err != nil {
		return err
	}
	defer unlock(ctx)

	var note *entity.DeliveryNote
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		note, err = loadForUpdate(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := refusePartials(ctx, repos, note.ID, "supprimé"); err != nil {
			return err
		}
		if note.Status == entity.DeliveryNoteActive {
			if _, err := uc.ledger.ReverseMovements(ctx, ledger.StoreFrom(repos), entity.ReferenceDeliveryNote, note.ID); err != nil {
				return err
			}
		}
		if err := deleteFull(ctx, repos, note.ID); err != nil {
			return err
		}
		return repos.DeliveryNotes.Delete(ctx, note.ID)
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("delivery_note_id", id).Msg("delivery note deletion rolled back")
		return err
	}

	tags := append(ports.LedgerTags(ports.TagDeliveryNotes), ports.TagCancellations)
	ports.Invalidate(ctx, uc.cache, uc.log, tags...)
	uc.log.Ctx(ctx).Info().Str("delivery_note_id", note.ID).Str("number", note.Number).Msg("delivery note deleted")
	return nil
}

// Get devuelve la nota con lo restante por línea tras sus anulaciones.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.DeliveryNoteResponse, error) {
	note, err := uc.repos.DeliveryNotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, domain.NewNotFound(domain.EntityDeliveryNote, id)
	}
	cancellations, err := uc.repos.Cancellations.ListByDeliveryNote(ctx, note.ID)
	if err != nil {
		return nil, err
	}
	return toResponse(note, cancellations), nil
}

// List no calcula lo restante: sólo cabeceras y líneas.
func (uc *UseCase) List(ctx context.Context, status string, page dto.PageRequest) (*dto.DeliveryNoteListResponse, error) {
	page.DefaultPage()
	notes, total, err := uc.repos.DeliveryNotes.List(ctx, entity.DeliveryNoteFilter{Status: status, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.DeliveryNoteResponse, 0, len(notes))
	for _, n := range notes {
		items = append(items, *toResponse(n, nil))
	}
	return &dto.DeliveryNoteListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// createFull registra la anulación total derivada. El costo unitario viene de las salidas revertidas.
func (uc *UseCase) createFull(ctx context.Context, repos repository.Repos, note *entity.DeliveryNote, reversed []*entity.StockMovement, actor string) error {
	costs := make(map[string]decimal.Decimal, len(reversed))
	for _, m := range reversed {
		costs[m.ProductID] = m.UnitCost
	}
	now := uc.now()
	number, err := numbering.Next(ctx, repos.Sequences, repos.Cancellations.ExistsNumber, numbering.Cancellation, now)
	if err != nil {
		return err
	}
	c := &entity.DeliveryNoteCancellation{
		ID:               uuid.New().String(),
		Number:           number,
		DeliveryNoteID:   note.ID,
		CancellationDate: now.UTC().Truncate(24 * time.Hour),
		Reason:           "Annulation du bon de livraison " + note.Number,
		Kind:             entity.CancellationFull,
		TotalAmount:      note.TotalAmount,
		CreatedBy:        actor,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, it := range note.Items {
		c.Items = append(c.Items, entity.CancellationItem{
			ID:                 uuid.New().String(),
			CancellationID:     c.ID,
			DeliveryNoteItemID: it.ID,
			ProductID:          it.ProductID,
			OriginalQuantity:   it.Quantity,
			OriginalLineTotal:  it.LineTotal,
			CancelledQuantity:  it.Quantity,
			RemainingQuantity:  decimal.Zero,
			RemainingLineTotal: decimal.Zero,
			CancelledLineTotal: it.LineTotal,
			UnitCost:           costs[it.ProductID],
		})
	}
	return repos.Cancellations.Create(ctx, c)
}

func deleteFull(ctx context.Context, repos repository.Repos, noteID string) error {
	list, err := repos.Cancellations.ListByDeliveryNote(ctx, noteID)
	if err != nil {
		return err
	}
	for _, c := range list {
		if c.Kind != entity.CancellationFull {
			continue
		}
		if err := repos.Cancellations.Delete(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

func refusePartials(ctx context.Context, repos repository.Repos, noteID, action string) error {
	list, err := repos.Cancellations.ListByDeliveryNote(ctx, noteID)
	if err != nil {
		return err
	}
	for _, c := range list {
		if c.Kind == entity.CancellationPartial {
			return domain.NewConflict("Le bon de livraison a des annulations partielles et ne peut pas être " + action)
		}
	}
	return nil
}

func loadForUpdate(ctx context.Context, repos repository.Repos, id string) (*entity.DeliveryNote, error) {
	note, err := repos.DeliveryNotes.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, domain.NewNotFound(domain.EntityDeliveryNote, id)
	}
	return note, nil
}

// buildItems resuelve precios por defecto y calcula los totales de línea.
func buildItems(ctx context.Context, products repository.ProductRepository, noteID, saleType string, in []dto.DeliveryNoteItemRequest) ([]entity.DeliveryNoteItem, decimal.Decimal, error) {
	items := make([]entity.DeliveryNoteItem, 0, len(in))
	for _, it := range in {
		if !it.Quantity.IsPositive() {
			return nil, decimal.Zero, domain.NewValidation("quantity", "la quantité doit être positive")
		}
		if it.DiscountRate.IsNegative() || it.DiscountRate.GreaterThan(hundred) {
			return nil, decimal.Zero, domain.NewValidation("discount_rate", "la remise doit être comprise entre 0 et 100")
		}
		p, err := products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if p == nil {
			return nil, decimal.Zero, &domain.ProductNotFoundError{ProductID: it.ProductID}
		}
		price := p.SalePrice(saleType)
		if it.UnitPrice != nil {
			if it.UnitPrice.IsNegative() {
				return nil, decimal.Zero, domain.NewValidation("unit_price", "le prix unitaire ne peut pas être négatif")
			}
			price = *it.UnitPrice
		}
		items = append(items, entity.DeliveryNoteItem{
			ID:             uuid.New().String(),
			DeliveryNoteID: noteID,
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPrice:      price,
			DiscountRate:   it.DiscountRate,
			LineTotal:      inventory.LineTotal(it.Quantity, price, it.DiscountRate),
		})
	}
	totals := make([]decimal.Decimal, 0, len(items))
	for _, it := range items {
		totals = append(totals, it.LineTotal)
	}
	return items, inventory.SumTotals(totals...), nil
}

func ledgerItems(items []entity.DeliveryNoteItem) []ledger.Item {
	out := make([]ledger.Item, 0, len(items))
	for _, it := range items {
		out = append(out, ledger.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func issueBatch(note *entity.DeliveryNote, actor string) ledger.MovementBatch {
	return ledger.MovementBatch{
		Items:         ledgerItems(note.Items),
		MovementDate:  note.DeliveryDate,
		ReferenceType: entity.ReferenceDeliveryNote,
		ReferenceID:   note.ID,
		Direction:     ledger.Decrease,
		Source:        note.MovementSource(),
		Actor:         actor,
		Note:          "Livraison " + note.Number,
	}
}

func toResponse(n *entity.DeliveryNote, cancellations []*entity.DeliveryNoteCancellation) *dto.DeliveryNoteResponse {
	remaining := inventory.Outstanding(n, cancellations)
	items := make([]dto.DeliveryNoteItemResponse, 0, len(remaining))
	rest := make([]decimal.Decimal, 0, len(remaining))
	for _, r := range remaining {
		items = append(items, dto.DeliveryNoteItemResponse{
			ID:                 r.Item.ID,
			ProductID:          r.Item.ProductID,
			Quantity:           r.Item.Quantity,
			UnitPrice:          r.Item.UnitPrice,
			DiscountRate:       r.Item.DiscountRate,
			LineTotal:          r.Item.LineTotal,
			CancelledQuantity:  r.Cancelled,
			RemainingQuantity:  r.Quantity,
			RemainingLineTotal: r.LineTotal,
		})
		rest = append(rest, r.LineTotal)
	}
	return &dto.DeliveryNoteResponse{
		ID:             n.ID,
		Number:         n.Number,
		CustomerName:   n.CustomerName,
		SaleType:       n.SaleType,
		DeliveryDate:   dto.FormatDate(n.DeliveryDate),
		Status:         n.Status,
		Notes:          n.Notes,
		TotalAmount:    n.TotalAmount,
		RemainingTotal: inventory.SumTotals(rest...),
		Items:          items,
		CreatedBy:      n.CreatedBy,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	}
}
