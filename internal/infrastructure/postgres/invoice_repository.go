package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, number, delivery_note_id, customer_name, invoice_date, due_date, subtotal, tax_amount,
	total_amount, paid_amount, payment_status, created_by, created_at, updated_at`

const paymentColumns = `id, invoice_id, amount, payment_date, method, reference, created_by, created_at`

var invoiceLineColumns = []string{
	"id", "invoice_id", "product_id", "description", "quantity", "unit_price", "discount_rate",
	"tax_rate", "line_total", "tax_amount", "position",
}

// InvoiceRepo implementación de InvoiceRepository (facturas, líneas y pagos). Usable con pool o tx.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera y sus líneas.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.Number, inv.DeliveryNoteID, inv.CustomerName, inv.InvoiceDate, inv.DueDate,
		inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.PaidAmount, inv.PaymentStatus,
		inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewAlreadyExists(domain.EntityInvoice, inv.Number)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	if len(inv.Lines) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(inv.Lines))
	for i, l := range inv.Lines {
		rows = append(rows, []any{
			l.ID, inv.ID, l.ProductID, l.Description, l.Quantity, l.UnitPrice, l.DiscountRate,
			l.TaxRate, l.LineTotal, l.TaxAmount, i,
		})
	}
	if _, err := r.q.CopyFrom(ctx, pgx.Identifier{"invoice_lines"}, invoiceLineColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("insert invoice lines: %w", err)
	}
	return nil
}

// GetByID obtiene la factura con líneas y pagos (por fecha de pago).
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

// GetForUpdate como GetByID, bloqueando la cabecera.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

func (r *InvoiceRepo) get(ctx context.Context, query, id string) (*entity.Invoice, error) {
	var inv entity.Invoice
	if err := pgxscan.Get(ctx, r.q, &inv, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	linesQuery := `SELECT id, invoice_id, product_id, description, quantity, unit_price, discount_rate, tax_rate, line_total, tax_amount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position`
	if err := pgxscan.Select(ctx, r.q, &inv.Lines, linesQuery, id); err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	paymentsQuery := `SELECT ` + paymentColumns + ` FROM payments WHERE invoice_id = $1 ORDER BY payment_date, created_at`
	if err := pgxscan.Select(ctx, r.q, &inv.Payments, paymentsQuery, id); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return &inv, nil
}

// ExistsNumber indica si el número de factura ya existe.
func (r *InvoiceRepo) ExistsNumber(ctx context.Context, number string) (bool, error) {
	exists, err := existsBy(ctx, r.q, "invoices", "number", number)
	if err != nil {
		return false, fmt.Errorf("exists invoice number: %w", err)
	}
	return exists, nil
}

// UpdatePaymentStatus actualiza el monto pagado y el estado de pago.
func (r *InvoiceRepo) UpdatePaymentStatus(ctx context.Context, id string, paid decimal.Decimal, status string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE invoices SET paid_amount = $2, payment_status = $3, updated_at = now() WHERE id = $1`,
		id, paid, status,
	)
	if err != nil {
		return fmt.Errorf("update invoice payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntityInvoice, id)
	}
	return nil
}

// List facturas (sin líneas ni pagos), número descendente.
func (r *InvoiceRepo) List(ctx context.Context, f entity.InvoiceFilter) ([]*entity.Invoice, int, error) {
	count := psql.Select("COUNT(*)").From("invoices")
	b := psql.Select(invoiceColumns).From("invoices").OrderBy("number DESC")
	if f.PaymentStatus != "" {
		count = count.Where("payment_status = ?", f.PaymentStatus)
		b = b.Where("payment_status = ?", f.PaymentStatus)
	}

	var list []*entity.Invoice
	total, err := selectPage(ctx, r.q, &list, count, pageQuery(b, f.Limit, f.Offset))
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	return list, total, nil
}

// CreatePayment registra un pago. Factura inexistente → NotFound (violación de FK).
func (r *InvoiceRepo) CreatePayment(ctx context.Context, p *entity.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, p.ID, p.InvoiceID, p.Amount, p.PaymentDate, p.Method, p.Reference, p.CreatedBy, p.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewNotFound(domain.EntityInvoice, p.InvoiceID)
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetPayment obtiene un pago; (nil, nil) si no existe.
func (r *InvoiceRepo) GetPayment(ctx context.Context, id string) (*entity.Payment, error) {
	var p entity.Payment
	if err := pgxscan.Get(ctx, r.q, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// DeletePayment elimina un pago.
func (r *InvoiceRepo) DeletePayment(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}
