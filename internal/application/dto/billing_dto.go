package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-erp-api/internal/domain/totals"
)

// FormResponse formulario recalculado con los valores que solo se muestran.
type FormResponse struct {
	DraftID       string             `json:"draft_id,omitempty"`
	State         string             `json:"state,omitempty"`
	Form          totals.InvoiceForm `json:"form"`
	TaxableAmount decimal.Decimal    `json:"taxable_amount"`
	BalanceDue    decimal.Decimal    `json:"balance_due"`
	Changes       []string           `json:"changes"`
}

// DraftSummary borrador en el listado (sin el documento completo).
type DraftSummary struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	Active      bool            `json:"active"`
	ItemCount   int             `json:"item_count"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	LastUpdated time.Time       `json:"last_updated"`
}

// DraftListResponse conjunto de borradores de la sesión.
type DraftListResponse struct {
	ActiveID  string         `json:"active_id"`
	State     string         `json:"state"`
	MaxDrafts int            `json:"max_drafts"`
	Drafts    []DraftSummary `json:"drafts"`
}

// SwitchDraftRequest body para PUT /api/drafts/active.
type SwitchDraftRequest struct {
	DraftID string `json:"draft_id"`
}

// ImportRequest body para POST /api/drafts/active/import.
// Kind: "quotation" u "order".
type ImportRequest struct {
	Kind     string `json:"kind"`
	SourceID string `json:"source_id"`
}

// ImportResponse resultado de importar: las líneas sin producto resuelto se omiten y se listan.
type ImportResponse struct {
	FormResponse
	Imported        int      `json:"imported"`
	UnresolvedItems []string `json:"unresolved_items"`
}

// SubmitRequest body para POST /api/drafts/active/submit.
type SubmitRequest struct {
	Prefix string `json:"prefix,omitempty"`
	Number string `json:"number,omitempty"` // opcional; si va vacío se genera
}

// SubmitResponse factura creada y el borrador que quedó activo.
type SubmitResponse struct {
	Invoice       *InvoiceResponse `json:"invoice"`
	ActiveDraftID string           `json:"active_draft_id"`
}

// InvoiceResponse factura con detalle para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID             string                  `json:"id"`
	CustomerID     string                  `json:"customer_id"`
	CustomerName   string                  `json:"customer_name,omitempty"`
	Prefix         string                  `json:"prefix"`
	Number         string                  `json:"number"`
	Date           string                  `json:"date"`
	Notes          string                  `json:"notes,omitempty"`
	DiscountKind   string                  `json:"discount_kind"`
	DiscountValue  decimal.Decimal         `json:"discount_value"`
	TaxRate        decimal.Decimal         `json:"tax_rate"`
	VATRate        decimal.Decimal         `json:"vat_rate"`
	Subtotal       decimal.Decimal         `json:"subtotal"`
	DiscountAmount decimal.Decimal         `json:"discount_amount"`
	TaxAmount      decimal.Decimal         `json:"tax_amount"`
	VATAmount      decimal.Decimal         `json:"vat_amount"`
	GrandTotal     decimal.Decimal         `json:"grand_total"`
	PaymentStatus  string                  `json:"payment_status"`
	AmountPaid     decimal.Decimal         `json:"amount_paid"`
	BalanceDue     decimal.Decimal         `json:"balance_due"`
	Details        []InvoiceDetailResponse `json:"details"`
}

// InvoiceDetailResponse línea de detalle en la respuesta.
type InvoiceDetailResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}
