package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pharma-erp-api/internal/domain"
	"github.com/jhoicas/pharma-erp-api/internal/domain/entity"
	"github.com/jhoicas/pharma-erp-api/internal/domain/repository"
)

var _ repository.SourceDocumentRepository = (*SourceDocumentRepo)(nil)

// SourceDocumentRepo lectura de cotizaciones (quotations) y órdenes (sales_orders) con sus líneas.
type SourceDocumentRepo struct {
	q Querier
}

// NewSourceDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSourceDocumentRepository(q Querier) *SourceDocumentRepo {
	return &SourceDocumentRepo{q: q}
}

// Cada tipo de documento vive en su propia tabla; las líneas comparten forma.
var sourceTables = map[string]struct{ header, lines, fk string }{
	entity.SourceKindQuotation: {header: "quotations", lines: "quotation_items", fk: "quotation_id"},
	entity.SourceKindOrder:     {header: "sales_orders", lines: "sales_order_items", fk: "order_id"},
}

// GetByID devuelve el documento con sus líneas, o nil si no existe o el tipo es desconocido.
func (r *SourceDocumentRepo) GetByID(ctx context.Context, kind, id string) (*entity.SourceDocument, error) {
	t, ok := sourceTables[kind]
	if !ok {
		return nil, nil
	}
	var doc entity.SourceDocument
	var customerID *string
	err := r.q.QueryRow(ctx,
		`SELECT id, company_id, reference, customer_id, created_at FROM `+t.header+` WHERE id = $1`, id,
	).Scan(&doc.ID, &doc.CompanyID, &doc.Reference, &customerID, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isInvalidText(err) {
			return nil, fmt.Errorf("%s id %q: %w", kind, id, domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	doc.Kind = kind
	doc.CustomerID = emptyIfNull(customerID)

	rows, err := r.q.Query(ctx,
		`SELECT product_id, product_name, quantity, unit_price FROM `+t.lines+` WHERE `+t.fk+` = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list %s lines: %w", kind, err)
	}
	defer rows.Close()
	for rows.Next() {
		var line entity.SourceDocumentLine
		var productID, productName *string
		if err := rows.Scan(&productID, &productName, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan %s line: %w", kind, err)
		}
		line.ProductID = emptyIfNull(productID)
		line.ProductName = emptyIfNull(productName)
		doc.Lines = append(doc.Lines, line)
	}
	return &doc, rows.Err()
}
