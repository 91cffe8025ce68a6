package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice cabecera de una factura emitida desde un borrador.
// Los montos se copian del formulario ya recalculado; no se vuelven a derivar al leer.
type Invoice struct {
	ID             string
	CompanyID      string
	CustomerID     string
	DraftID        string // borrador del que se creó
	Prefix         string
	Number         string
	Date           time.Time
	Notes          string
	DiscountKind   string
	DiscountValue  decimal.Decimal
	TaxRate        decimal.Decimal
	VATRate        decimal.Decimal
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	VATAmount      decimal.Decimal
	GrandTotal     decimal.Decimal
	PaymentStatus  string
	AmountPaid     decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
