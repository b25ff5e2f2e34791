package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	dombilling "github.com/jhoicas/Gestion-api/internal/domain/billing"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

const lockInvoice = "invoice"

// RecordPayment registra un pago y recalcula el estado de pago. Un pago que supera el saldo se rechaza.
func (uc *InvoiceUseCase) RecordPayment(ctx context.Context, actor, invoiceID string, in dto.CreatePaymentRequest) (*dto.InvoiceResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, domain.NewValidation("amount", "le montant doit être positif")
	}
	paymentDate, err := dto.ParseDate("payment_date", in.PaymentDate)
	if err != nil {
		return nil, err
	}
	unlock, err := uc.locker.Lock(ctx, ports.LockKey(lockInvoice, invoiceID))
	if err != nil {
		return nil, err
	}
	defer unlock(ctx)

	payment := &entity.Payment{
		ID:          uuid.New().String(),
		InvoiceID:   invoiceID,
		Amount:      in.Amount,
		PaymentDate: paymentDate,
		Method:      in.Method,
		Reference:   in.Reference,
		CreatedBy:   actor,
		CreatedAt:   uc.now(),
	}
	var inv *entity.Invoice
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		current, err := loadInvoice(ctx, repos, invoiceID)
		if err != nil {
			return err
		}
		paid := current.PaidAmount.Add(in.Amount)
		if paid.GreaterThan(current.TotalAmount.Add(uc.tolerance)) {
			return domain.NewValidation("amount", "le paiement dépasse le solde restant ("+
				domain.FormatAmount(dombilling.Outstanding(current.TotalAmount, current.PaidAmount))+")")
		}
		if err := repos.Invoices.CreatePayment(ctx, payment); err != nil {
			return err
		}
		status := dombilling.PaymentStatus(current.TotalAmount, paid, uc.tolerance)
		if err := repos.Invoices.UpdatePaymentStatus(ctx, current.ID, paid, status); err != nil {
			return err
		}
		inv, err = repos.Invoices.GetByID(ctx, current.ID)
		return err
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("invoice_id", invoiceID).Msg("payment rolled back")
		return nil, err
	}

	ports.Invalidate(ctx, uc.cache, uc.log, ports.TagInvoices, ports.TagPayments)
	uc.log.Ctx(ctx).Info().Str("invoice_id", inv.ID).Str("payment_id", payment.ID).
		Str("amount", payment.Amount.String()).Str("payment_status", inv.PaymentStatus).Msg("payment recorded")
	return uc.toResponse(inv), nil
}

// DeletePayment borra un pago de la factura y recalcula el estado.
func (uc *InvoiceUseCase) DeletePayment(ctx context.Context, invoiceID, paymentID string) (*dto.InvoiceResponse, error) {
	unlock, err := uc.locker.Lock(ctx, ports.LockKey(lockInvoice, invoiceID))
	if err != nil {
		return nil, err
	}
	defer unlock(ctx)

	var inv *entity.Invoice
	err = uc.tx.Run(ctx, func(ctx context.Context, repos repository.Repos) error {
		current, err := loadInvoice(ctx, repos, invoiceID)
		if err != nil {
			return err
		}
		payment, err := repos.Invoices.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment == nil || payment.InvoiceID != current.ID {
			return domain.NewNotFound(domain.EntityPayment, paymentID)
		}
		if err := repos.Invoices.DeletePayment(ctx, payment.ID); err != nil {
			return err
		}
		paid := current.PaidAmount.Sub(payment.Amount)
		if paid.IsNegative() {
			paid = decimal.Zero
		}
		status := dombilling.PaymentStatus(current.TotalAmount, paid, uc.tolerance)
		if err := repos.Invoices.UpdatePaymentStatus(ctx, current.ID, paid, status); err != nil {
			return err
		}
		inv, err = repos.Invoices.GetByID(ctx, current.ID)
		return err
	})
	if err != nil {
		uc.log.Ctx(ctx).Warn().Err(err).Str("invoice_id", invoiceID).Str("payment_id", paymentID).Msg("payment deletion rolled back")
		return nil, err
	}

	ports.Invalidate(ctx, uc.cache, uc.log, ports.TagInvoices, ports.TagPayments)
	uc.log.Ctx(ctx).Info().Str("invoice_id", inv.ID).Str("payment_id", paymentID).
		Str("payment_status", inv.PaymentStatus).Msg("payment deleted")
	return uc.toResponse(inv), nil
}

func loadInvoice(ctx context.Context, repos repository.Repos, id string) (*entity.Invoice, error) {
	inv, err := repos.Invoices.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.NewNotFound(domain.EntityInvoice, id)
	}
	return inv, nil
}
