package totals

import "github.com/shopspring/decimal"

// DiscountKind tipo de descuento aplicado al subtotal.
type DiscountKind string

const (
	DiscountNone       DiscountKind = "none"
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// PaymentStatus estado de pago de la factura.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
)

// LineItem línea de la factura. LineTotal es derivado: Round2(Quantity * UnitPrice).
type LineItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Discount descuento sobre el subtotal. Con Kind=percentage, Value está en [0, 100].
type Discount struct {
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// Payment estado de pago y monto abonado.
type Payment struct {
	Status     PaymentStatus   `json:"status"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

// Totals totales derivados de la factura; nunca se editan a mano.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// TaxableAmount base gravable (subtotal - descuento). Se calcula, no se guarda.
func (t Totals) TaxableAmount() decimal.Decimal {
	return t.Subtotal.Sub(t.DiscountAmount)
}

// InvoiceForm estado completo del formulario de factura en edición.
// TaxRate y VATRate son porcentajes (14 = 14%).
type InvoiceForm struct {
	CustomerID string          `json:"customer_id"`
	Notes      string          `json:"notes,omitempty"`
	Items      []LineItem      `json:"items"`
	Discount   Discount        `json:"discount"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	VATRate    decimal.Decimal `json:"vat_rate"`
	Totals     Totals          `json:"totals"`
	Payment    Payment         `json:"payment"`
}

// NewForm formulario vacío con las tasas por defecto, sin descuento y sin pagar.
func NewForm(taxRate, vatRate decimal.Decimal) InvoiceForm {
	f := InvoiceForm{
		Items:    []LineItem{},
		Discount: Discount{Kind: DiscountNone},
		TaxRate:  taxRate,
		VATRate:  vatRate,
		Payment:  Payment{Status: PaymentUnpaid},
	}
	Recompute(&f)
	return f
}

// BalanceDue saldo pendiente (total - abonado). Solo para mostrar; negativo si hay sobrepago.
func (f InvoiceForm) BalanceDue() decimal.Decimal {
	return f.Totals.GrandTotal.Sub(f.Payment.AmountPaid)
}

// Clone copia el formulario sin compartir el slice de líneas.
func (f InvoiceForm) Clone() InvoiceForm {
	out := f
	out.Items = make([]LineItem, len(f.Items))
	copy(out.Items, f.Items)
	return out
}
