package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pharma-erp-api/internal/domain"
	"github.com/jhoicas/pharma-erp-api/internal/domain/entity"
	"github.com/jhoicas/pharma-erp-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura con los totales ya calculados.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, company_id, customer_id, draft_id, prefix, number, date, notes,
		                      discount_kind, discount_value, tax_rate, vat_rate,
		                      subtotal, discount_amount, tax_amount, vat_amount, grand_total,
		                      payment_status, amount_paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.CompanyID, invoice.CustomerID, nullIfEmpty(invoice.DraftID),
		invoice.Prefix, invoice.Number, invoice.Date, nullIfEmpty(invoice.Notes),
		invoice.DiscountKind, invoice.DiscountValue, invoice.TaxRate, invoice.VATRate,
		invoice.Subtotal, invoice.DiscountAmount, invoice.TaxAmount, invoice.VATAmount, invoice.GrandTotal,
		invoice.PaymentStatus, invoice.AmountPaid, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("invoice customer: %w", domain.ErrNotFound)
		}
		if isInvalidText(err) {
			return fmt.Errorf("invoice: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de detalle.
func (r *InvoiceRepo) CreateDetail(ctx context.Context, detail *entity.InvoiceDetail) error {
	if detail.ID == "" {
		detail.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_details (id, invoice_id, position, product_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		detail.ID, detail.InvoiceID, detail.Position, detail.ProductID,
		detail.Quantity, detail.UnitPrice, detail.LineTotal,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("invoice detail product: %w", domain.ErrNotFound)
		}
		if isInvalidText(err) {
			return fmt.Errorf("invoice detail: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert invoice detail: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una factura por ID (nil si no existe).
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `
		SELECT id, company_id, customer_id, draft_id, prefix, number, date, notes,
		       discount_kind, discount_value, tax_rate, vat_rate,
		       subtotal, discount_amount, tax_amount, vat_amount, grand_total,
		       payment_status, amount_paid, created_at, updated_at
		FROM invoices WHERE id = $1`
	var inv entity.Invoice
	var draftID, notes *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.CompanyID, &inv.CustomerID, &draftID, &inv.Prefix, &inv.Number, &inv.Date, &notes,
		&inv.DiscountKind, &inv.DiscountValue, &inv.TaxRate, &inv.VATRate,
		&inv.Subtotal, &inv.DiscountAmount, &inv.TaxAmount, &inv.VATAmount, &inv.GrandTotal,
		&inv.PaymentStatus, &inv.AmountPaid, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isInvalidText(err) {
			return nil, fmt.Errorf("invoice id %q: %w", id, domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.DraftID = emptyIfNull(draftID)
	inv.Notes = emptyIfNull(notes)
	return &inv, nil
}

// GetDetailsByInvoiceID obtiene las líneas de una factura en su orden original.
func (r *InvoiceRepo) GetDetailsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	query := `
		SELECT id, invoice_id, position, product_id, quantity, unit_price, line_total
		FROM invoice_details WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice details: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceDetail
	for rows.Next() {
		var d entity.InvoiceDetail
		if err := rows.Scan(&d.ID, &d.InvoiceID, &d.Position, &d.ProductID, &d.Quantity, &d.UnitPrice, &d.LineTotal); err != nil {
			return nil, fmt.Errorf("scan detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
