package cancellation

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

const entityCancellationItem = "Ligne d'annulation"

// UseCase anulaciones parciales de notas de entrega: cada línea anulada reingresa stock.
type UseCase struct {
	tx     ports.TxRunner
	repos  repository.Repos
	ledger *ledger.Reconciler
	cache  ports.Cache
	locker ports.DocumentLocker
	log    *logger.Logger
	now    func() time.Time
}

// NewUseCase construye el caso de uso de anulaciones.
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
		log:    log.Component("cancellation"),
		now:    time.Now,
	}
}

// Create anula parte de las líneas de una nota activa.
func (uc *UseCase) Create(ctx context.Context, actor string, in dto.CreateCancellationRequest) (*dto.CancellationResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	date, err := dto.ParseDate("cancellation_date", in.CancellationDate)
	if err != nil {
		return nil, err
	}
	unlock, err := uc.locker.Lock(ctx, ports.LockKey(entity.ReferenceDeliveryNote, in.DeliveryNoteID))
	if err != nil {
		return nil, err
	}
	defer unlock(ctx)

	now := uc.now()
	c := &entity.DeliveryNoteCancellation{
		ID:               uuid.New().String(),
		DeliveryNoteID:   in.DeliveryNoteID,
		CancellationDate: date,
		Reason:           in.Reason,
		Kind:             entity.CancellationPartial,
		CreatedBy:        actor,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		note, err := activeNote(ctx, repos, in.DeliveryNoteID)
		if err != nil {
			return err
		}
		if err := uc.fill(ctx, repos, note, c, in.Items); err != nil {
			return err
		}
		number, err := numbering.Resolve(ctx, repos.Sequences, repos.Cancellations.ExistsNumber,
			numbering.Cancellation, domain.EntityCancellation, in.Number, date)
		if err != nil {
			return err
		}
		c.Number = number
		if err := repos.Cancellations.Create(ctx, c); err != nil {
			return err
		}
		_, err = uc.ledger.ApplyMovements(ctx, ledger.StoreFrom(repos), returnBatch(note, c, actor))
		return err
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("delivery_note_id", in.DeliveryNoteID).Msg("cancellation creation rolled back")
		return nil, err
	}

	uc.signal(ctx)
	uc.log.Ctx(ctx).Info().Str("cancellation_id", c.ID).Str("number", c.Number).
		Str("delivery_note_id", c.DeliveryNoteID).Int("items", len(c.Items)).Msg("cancellation created")
	return toResponse(c), nil
}

// Update reemplaza fecha, motivo y líneas, y reconcilia las entradas de stock.
func (uc *UseCase) Update(ctx context.Context, actor, id string, in dto.UpdateCancellationRequest) (*dto.CancellationResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	date, err := dto.ParseDate("cancellation_date", in.CancellationDate)
	if err != nil {
		return nil, err
	}
	unlock, err := uc.locker.Lock(ctx, ports.LockKey(entity.ReferenceDeliveryNoteCancellation, id))
	if err != nil {
		return nil, err
	}
	defer unlock(ctx)

	var c *entity.DeliveryNoteCancellation
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		c, err = editable(ctx, repos, id)
		if err != nil {
			return err
		}
		note, err := activeNote(ctx, repos, c.DeliveryNoteID)
		if err != nil {
			return err
		}
		oldItems := ledgerItems(c.Items)
		c.CancellationDate = date
		c.Reason = in.Reason
		c.UpdatedAt = uc.now()
		if err := uc.fill(ctx, repos, note, c, in.Items); err != nil {
			return err
		}
		if _, err := uc.ledger.Reconcile(ctx, ledger.StoreFrom(repos), oldItems, returnBatch(note, c, actor)); err != nil {
			return err
		}
		return repos.Cancellations.Update(ctx, c)
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("cancellation_id", id).Msg("cancellation update rolled back")
		return nil, err
	}

	uc.signal(ctx)
	uc.log.Ctx(ctx).Info().Str("cancellation_id", c.ID).Str("number", c.Number).
		Int("items", len(c.Items)).Msg("cancellation updated")
	return toResponse(c), nil
}

// Delete revierte las entradas de la anulación y la borra.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	unlock, err := uc.locker.Lock(ctx, ports.LockKey(entity.ReferenceDeliveryNoteCancellation, id))
	if err != nil {
		return err
	}
	defer unlock(ctx)

	var c *entity.DeliveryNoteCancellation
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		c, err = editable(ctx, repos, id)
		if err != nil {
			return err
		}
		return uc.remove(ctx, repos, c)
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("cancellation_id", id).Msg("cancellation deletion rolled back")
		return err
	}

	uc.signal(ctx)
	uc.log.Ctx(ctx).Info().Str("cancellation_id", c.ID).Str("number", c.Number).Msg("cancellation deleted")
	return nil
}

// DeleteItem quita una línea y reconcilia con las restantes. Si no queda ninguna se borra
// la anulación y la respuesta es nil.
func (uc *UseCase) DeleteItem(ctx context.Context, actor, id, itemID string) (*dto.CancellationResponse, error) {
	unlock, err := uc.locker.Lock(ctx, ports.LockKey(entity.ReferenceDeliveryNoteCancellation, id))
	if err != nil {
		return nil, err
	}
	defer unlock(ctx)

	var (
		c       *entity.DeliveryNoteCancellation
		deleted bool
	)
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		c, err = editable(ctx, repos, id)
		if err != nil {
			return err
		}
		rest := make([]dto.CancellationItemRequest, 0, len(c.Items))
		found := false
		for _, it := range c.Items {
			if it.ID == itemID {
				found = true
				continue
			}
			rest = append(rest, dto.CancellationItemRequest{DeliveryNoteItemID: it.DeliveryNoteItemID, Quantity: it.CancelledQuantity})
		}
		if !found {
			return domain.NewNotFound(entityCancellationItem, itemID)
		}
		if len(rest) == 0 {
			deleted = true
			return uc.remove(ctx, repos, c)
		}
		note, err := activeNote(ctx, repos, c.DeliveryNoteID)
		if err != nil {
			return err
		}
		oldItems := ledgerItems(c.Items)
		c.UpdatedAt = uc.now()
		if err := uc.fill(ctx, repos, note, c, rest); err != nil {
			return err
		}
		if _, err := uc.ledger.Reconcile(ctx, ledger.StoreFrom(repos), oldItems, returnBatch(note, c, actor)); err != nil {
			return err
		}
		return repos.Cancellations.Update(ctx, c)
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("cancellation_id", id).Str("item_id", itemID).Msg("cancellation item deletion rolled back")
		return nil, err
	}

	uc.signal(ctx)
	uc.log.Ctx(ctx).Info().Str("cancellation_id", c.ID).Str("item_id", itemID).Bool("cancellation_deleted", deleted).
		Msg("cancellation item deleted")
	if deleted {
		return nil, nil
	}
	return toResponse(c), nil
}

// Get obtiene una anulación.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.CancellationResponse, error) {
	c, err := uc.repos.Cancellations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NewNotFound(domain.EntityCancellation, id)
	}
	return toResponse(c), nil
}

// ListByDeliveryNote anulaciones de una nota, parciales y full.
func (uc *UseCase) ListByDeliveryNote(ctx context.Context, deliveryNoteID string) ([]dto.CancellationResponse, error) {
	note, err := uc.repos.DeliveryNotes.GetByID(ctx, deliveryNoteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, domain.NewNotFound(domain.EntityDeliveryNote, deliveryNoteID)
	}
	list, err := uc.repos.Cancellations.ListByDeliveryNote(ctx, deliveryNoteID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CancellationResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toResponse(c))
	}
	return out, nil
}

func (uc *UseCase) signal(ctx context.Context) {
	tags := append(ports.LedgerTags(ports.TagCancellations), ports.TagDeliveryNotes)
	ports.Invalidate(ctx, uc.cache, uc.log, tags...)
}

func (uc *UseCase) remove(ctx context.Context, repos repository.Repos, c *entity.DeliveryNoteCancellation) error {
	if _, err := uc.ledger.ReverseMovements(ctx, ledger.StoreFrom(repos), entity.ReferenceDeliveryNoteCancellation, c.ID); err != nil {
		return err
	}
	return repos.Cancellations.Delete(ctx, c.ID)
}

// fill calcula las líneas de c a partir de la línea original de la nota y de lo ya anulado
// por las demás anulaciones parciales.
func (uc *UseCase) fill(ctx context.Context, repos repository.Repos, note *entity.DeliveryNote, c *entity.DeliveryNoteCancellation, in []dto.CancellationItemRequest) error {
	others, err := repos.Cancellations.ListByDeliveryNote(ctx, note.ID)
	if err != nil {
		return err
	}
	remaining := make(map[string]inventory.RemainingLine, len(note.Items))
	for _, r := range inventory.Remaining(note, others, c.ID) {
		remaining[r.Item.ID] = r
	}
	costs, err := issueCosts(ctx, repos, note)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(in))
	items := make([]entity.CancellationItem, 0, len(in))
	totals := make([]decimal.Decimal, 0, len(in))
	for _, req := range in {
		if seen[req.DeliveryNoteItemID] {
			return domain.NewValidation("delivery_note_item_id", "ligne "+req.DeliveryNoteItemID+" en double")
		}
		seen[req.DeliveryNoteItemID] = true
		r, ok := remaining[req.DeliveryNoteItemID]
		if !ok {
			return domain.NewValidation("delivery_note_item_id", "ligne "+req.DeliveryNoteItemID+" absente du bon de livraison")
		}
		line, err := inventory.CancelFromLine(r.Item.Quantity, r.Item.LineTotal, r.Cancelled, req.Quantity)
		if err != nil {
			return err
		}
		cost, ok := costs[r.Item.ProductID]
		if !ok {
			if cost, err = averageCost(ctx, repos, r.Item.ProductID); err != nil {
				return err
			}
		}
		items = append(items, entity.CancellationItem{
			ID:                 uuid.New().String(),
			CancellationID:     c.ID,
			DeliveryNoteItemID: r.Item.ID,
			ProductID:          r.Item.ProductID,
			OriginalQuantity:   r.Item.Quantity,
			OriginalLineTotal:  r.Item.LineTotal,
			CancelledQuantity:  req.Quantity,
			RemainingQuantity:  line.RemainingQuantity,
			RemainingLineTotal: line.RemainingLineTotal,
			CancelledLineTotal: line.CancelledLineTotal,
			UnitCost:           cost,
		})
		totals = append(totals, line.CancelledLineTotal)
	}
	c.Items = items
	c.TotalAmount = inventory.SumTotals(totals...)
	return nil
}

// issueCosts costo unitario registrado por las salidas de la nota, por producto.
func issueCosts(ctx context.Context, repos repository.Repos, note *entity.DeliveryNote) (map[string]decimal.Decimal, error) {
	movs, err := repos.Movements.ListByReference(ctx, entity.ReferenceDeliveryNote, note.ID)
	if err != nil {
		return nil, err
	}
	costs := make(map[string]decimal.Decimal, len(movs))
	for _, m := range movs {
		if m.MovementType == entity.MovementTypeOut {
			costs[m.ProductID] = m.UnitCost
		}
	}
	return costs, nil
}

func averageCost(ctx context.Context, repos repository.Repos, productID string) (decimal.Decimal, error) {
	s, err := repos.Stock.Get(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if s == nil {
		return decimal.Zero, nil
	}
	return s.AverageCost, nil
}

func activeNote(ctx context.Context, repos repository.Repos, id string) (*entity.DeliveryNote, error) {
	note, err := repos.DeliveryNotes.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, domain.NewNotFound(domain.EntityDeliveryNote, id)
	}
	if note.Status != entity.DeliveryNoteActive {
		return nil, domain.NewConflict("Le bon de livraison " + note.Number + " est annulé")
	}
	return note, nil
}

// editable carga una anulación parcial; las full se gestionan desde el estado de la nota.
func editable(ctx context.Context, repos repository.Repos, id string) (*entity.DeliveryNoteCancellation, error) {
	c, err := repos.Cancellations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NewNotFound(domain.EntityCancellation, id)
	}
	if c.Kind == entity.CancellationFull {
		return nil, domain.NewConflict("Une annulation totale se gère depuis le statut du bon de livraison")
	}
	return c, nil
}

func ledgerItems(items []entity.CancellationItem) []ledger.Item {
	out := make([]ledger.Item, 0, len(items))
	for _, it := range items {
		out = append(out, ledger.Item{ProductID: it.ProductID, Quantity: it.CancelledQuantity, UnitCost: it.UnitCost})
	}
	return out
}

func returnBatch(note *entity.DeliveryNote, c *entity.DeliveryNoteCancellation, actor string) ledger.MovementBatch {
	return ledger.MovementBatch{
		Items:         ledgerItems(c.Items),
		MovementDate:  c.CancellationDate,
		ReferenceType: entity.ReferenceDeliveryNoteCancellation,
		ReferenceID:   c.ID,
		Direction:     ledger.Increase,
		Source:        note.MovementSource(),
		Actor:         actor,
		Note:          "Annulation " + c.Number + " du bon " + note.Number,
	}
}

func toResponse(c *entity.DeliveryNoteCancellation) *dto.CancellationResponse {
	items := make([]dto.CancellationItemResponse, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, dto.CancellationItemResponse{
			ID:                 it.ID,
			DeliveryNoteItemID: it.DeliveryNoteItemID,
			ProductID:          it.ProductID,
			OriginalQuantity:   it.OriginalQuantity,
			OriginalLineTotal:  it.OriginalLineTotal,
			CancelledQuantity:  it.CancelledQuantity,
			RemainingQuantity:  it.RemainingQuantity,
			RemainingLineTotal: it.RemainingLineTotal,
			CancelledLineTotal: it.CancelledLineTotal,
			UnitCost:           it.UnitCost,
		})
	}
	return &dto.CancellationResponse{
		ID:               c.ID,
		Number:           c.Number,
		DeliveryNoteID:   c.DeliveryNoteID,
		CancellationDate: dto.FormatDate(c.CancellationDate),
		Reason:           c.Reason,
		Kind:             c.Kind,
		TotalAmount:      c.TotalAmount,
		Items:            items,
		CreatedBy:        c.CreatedBy,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
