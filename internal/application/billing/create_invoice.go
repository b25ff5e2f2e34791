package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/numbering"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	dombilling "github.com/jhoicas/Gestion-api/internal/domain/billing"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/inventory"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

var hundred = decimal.NewFromInt(100)

// InvoiceUseCase facturas y pagos. Facturar no mueve stock: el stock lo mueve el nota de entrega.
type InvoiceUseCase struct {
	tx        ports.TxRunner
	repos     repository.Repos
	cache     ports.Cache
	locker    ports.DocumentLocker
	log       *logger.Logger
	tolerance decimal.Decimal
	now       func() time.Time
}

// NewInvoiceUseCase construye el caso de uso. tolerance es el margen de redondeo de los pagos.
func NewInvoiceUseCase(
	tx ports.TxRunner,
	repos repository.Repos,
	cache ports.Cache,
	locker ports.DocumentLocker,
	log *logger.Logger,
	tolerance decimal.Decimal,
) *InvoiceUseCase {
	if tolerance.IsNegative() {
		tolerance = dombilling.DefaultTolerance
	}
	return &InvoiceUseCase{
		tx:        tx,
		repos:     repos,
		cache:     cache,
		locker:    locker,
		log:       log.Component("billing"),
		tolerance: tolerance,
		now:       time.Now,
	}
}

// CreateInvoice crea la factura con las líneas indicadas o, si vienen vacías, con lo restante de la nota de entrega.
// El impuesto de cada línea sale de la tasa del producto.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, actor string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	invoiceDate, err := dto.ParseDate("invoice_date", in.InvoiceDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := dto.ParseOptionalDate("due_date", in.DueDate)
	if err != nil {
		return nil, err
	}
	if dueDate != nil && dueDate.Before(invoiceDate) {
		return nil, domain.NewValidation("due_date", "l'échéance précède la date de facture")
	}
	if len(in.Lines) == 0 && (in.DeliveryNoteID == nil || *in.DeliveryNoteID == "") {
		return nil, domain.NewValidation("lines", "lignes ou bon de livraison obligatoires")
	}

	now := uc.now()
	inv := &entity.Invoice{
		ID:            uuid.New().String(),
		CustomerName:  in.CustomerName,
		InvoiceDate:   invoiceDate,
		DueDate:       dueDate,
		PaidAmount:    decimal.Zero,
		PaymentStatus: entity.PaymentStatusUnpaid,
		CreatedBy:     actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		lines := in.Lines
		saleType := entity.SaleTypeLocal
		if in.DeliveryNoteID != nil && *in.DeliveryNoteID != "" {
			note, remaining, err := noteRemaining(ctx, repos, *in.DeliveryNoteID)
			if err != nil {
				return err
			}
			inv.DeliveryNoteID = &note.ID
			saleType = note.SaleType
			if inv.CustomerName == "" {
				inv.CustomerName = note.CustomerName
			}
			if len(lines) == 0 {
				lines = linesFromRemaining(remaining)
				if len(lines) == 0 {
					return domain.NewValidation("delivery_note_id", "rien à facturer : le bon de livraison est entièrement annulé")
				}
			}
		}
		if inv.CustomerName == "" {
			return domain.NewValidation("customer_name", "champ obligatoire")
		}
		if err := fillLines(ctx, repos.Products, inv, saleType, lines); err != nil {
			return err
		}
		number, err := numbering.Resolve(ctx, repos.Sequences, repos.Invoices.ExistsNumber,
			numbering.Invoice, domain.EntityInvoice, in.Number, invoiceDate)
		if err != nil {
			return err
		}
		inv.Number = number
		return repos.Invoices.Create(ctx, inv)
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Msg("invoice creation rolled back")
		return nil, err
	}

	ports.Invalidate(ctx, uc.cache, uc.log, ports.TagInvoices)
	uc.log.Ctx(ctx).Info().Str("invoice_id", inv.ID).Str("number", inv.Number).
		Int("lines", len(inv.Lines)).Str("total", inv.TotalAmount.String()).Msg("invoice created")
	return uc.toResponse(inv), nil
}

// GetInvoice obtiene una factura con líneas y pagos.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.repos.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.NewNotFound(domain.EntityInvoice, id)
	}
	return uc.toResponse(inv), nil
}

// ListInvoices lista facturas, opcionalmente por estado de pago.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, paymentStatus string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repos.Invoices.List(ctx, entity.InvoiceFilter{PaymentStatus: paymentStatus, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *uc.toResponse(inv))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

func noteRemaining(ctx context.Context, repos repository.Repos, noteID string) (*entity.DeliveryNote, []inventory.RemainingLine, error) {
	note, err := repos.DeliveryNotes.GetByID(ctx, noteID)
	if err != nil {
		return nil, nil, err
	}
	if note == nil {
		return nil, nil, domain.NewNotFound(domain.EntityDeliveryNote, noteID)
	}
	if note.Status != entity.DeliveryNoteActive {
		return nil, nil, domain.NewConflict("Le bon de livraison " + note.Number + " est annulé et ne peut pas être facturé")
	}
	cancellations, err := repos.Cancellations.ListByDeliveryNote(ctx, note.ID)
	if err != nil {
		return nil, nil, err
	}
	return note, inventory.Remaining(note, cancellations, ""), nil
}

func linesFromRemaining(remaining []inventory.RemainingLine) []dto.InvoiceLineRequest {
	lines := make([]dto.InvoiceLineRequest, 0, len(remaining))
	for _, r := range remaining {
		if !r.Quantity.IsPositive() {
			continue
		}
		price := r.Item.UnitPrice
		lines = append(lines, dto.InvoiceLineRequest{
			ProductID:    r.Item.ProductID,
			Quantity:     r.Quantity,
			UnitPrice:    &price,
			DiscountRate: r.Item.DiscountRate,
		})
	}
	return lines
}

// fillLines calcula líneas, subtotal, impuesto y total de la factura.
func fillLines(ctx context.Context, products repository.ProductRepository, inv *entity.Invoice, saleType string, in []dto.InvoiceLineRequest) error {
	subtotal, tax := decimal.Zero, decimal.Zero
	lines := make([]entity.InvoiceLine, 0, len(in))
	for _, l := range in {
		if !l.Quantity.IsPositive() {
			return domain.NewValidation("quantity", "la quantité doit être positive")
		}
		if l.DiscountRate.IsNegative() || l.DiscountRate.GreaterThan(hundred) {
			return domain.NewValidation("discount_rate", "la remise doit être comprise entre 0 et 100")
		}
		p, err := products.GetByID(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.ProductNotFoundError{ProductID: l.ProductID}
		}
		price := p.SalePrice(saleType)
		if l.UnitPrice != nil {
			if l.UnitPrice.IsNegative() {
				return domain.NewValidation("unit_price", "le prix unitaire ne peut pas être négatif")
			}
			price = *l.UnitPrice
		}
		description := l.Description
		if description == "" {
			description = p.Name
		}
		total := inventory.LineTotal(l.Quantity, price, l.DiscountRate)
		lineTax := total.Mul(p.TaxRate).Div(hundred).Round(inventory.AmountScale)
		lines = append(lines, entity.InvoiceLine{
			ID:           uuid.New().String(),
			InvoiceID:    inv.ID,
			ProductID:    p.ID,
			Description:  description,
			Quantity:     l.Quantity,
			UnitPrice:    price,
			DiscountRate: l.DiscountRate,
			TaxRate:      p.TaxRate,
			LineTotal:    total,
			TaxAmount:    lineTax,
		})
		subtotal = subtotal.Add(total)
		tax = tax.Add(lineTax)
	}
	inv.Lines = lines
	inv.Subtotal = subtotal
	inv.TaxAmount = tax
	inv.TotalAmount = subtotal.Add(tax)
	return nil
}

func (uc *InvoiceUseCase) toResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		DeliveryNoteID: inv.DeliveryNoteID,
		CustomerName:   inv.CustomerName,
		InvoiceDate:    dto.FormatDate(inv.InvoiceDate),
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		TotalAmount:    inv.TotalAmount,
		PaidAmount:     inv.PaidAmount,
		Outstanding:    dombilling.Outstanding(inv.TotalAmount, inv.PaidAmount),
		PaymentStatus:  inv.PaymentStatus,
		Lines:          make([]dto.InvoiceLineResponse, 0, len(inv.Lines)),
		Payments:       make([]dto.PaymentResponse, 0, len(inv.Payments)),
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
	if inv.DueDate != nil {
		resp.DueDate = dto.FormatDate(*inv.DueDate)
	}
	for _, l := range inv.Lines {
		resp.Lines = append(resp.Lines, dto.InvoiceLineResponse{
			ID:           l.ID,
			ProductID:    l.ProductID,
			Description:  l.Description,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			DiscountRate: l.DiscountRate,
			TaxRate:      l.TaxRate,
			LineTotal:    l.LineTotal,
			TaxAmount:    l.TaxAmount,
		})
	}
	for _, p := range inv.Payments {
		resp.Payments = append(resp.Payments, paymentResponse(p))
	}
	return resp
}

func paymentResponse(p entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:          p.ID,
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		PaymentDate: dto.FormatDate(p.PaymentDate),
		Method:      p.Method,
		Reference:   p.Reference,
		CreatedAt:   p.CreatedAt,
	}
}
