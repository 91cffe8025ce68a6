package totals

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Changes rutas de los campos derivados que escribió una pasada de Recompute.
type Changes []string

// Empty indica que la pasada no modificó ningún campo (punto fijo).
func (c Changes) Empty() bool { return len(c) == 0 }

// Compute calcula los totales a partir de las entradas, sin tocar ningún formulario.
//
//	subtotal = Round2(Σ Round2(qty * price))
//	descuento = porcentaje: Round2(subtotal * v / 100); fijo: Round2(v); ninguno: 0
//	impuesto, IVA = Round2((subtotal - descuento) * tasa / 100)
//	total = Round2(base + impuesto + IVA)
func Compute(items []LineItem, discount Discount, taxRate, vatRate decimal.Decimal) Totals {
	lineTotals := make([]decimal.Decimal, len(items))
	for i, it := range items {
		lineTotals[i] = lineTotal(it)
	}
	return totalsFrom(lineTotals, discount, taxRate, vatRate)
}

// Recompute recalcula los campos derivados del formulario en orden fijo (líneas, subtotal,
// descuento, impuesto, IVA, total, pago) y devuelve los campos que escribió.
// Un campo solo se escribe si su nuevo valor redondeado difiere del guardado, por lo que dos
// pasadas seguidas sin cambios de entrada dejan la segunda vacía.
func Recompute(f *InvoiceForm) Changes {
	var ch Changes

	lineTotals := make([]decimal.Decimal, len(f.Items))
	for i := range f.Items {
		it := &f.Items[i]
		if assign(&it.LineTotal, lineTotal(*it)) {
			ch = append(ch, fmt.Sprintf("items[%d].line_total", i))
		}
		lineTotals[i] = it.LineTotal
	}

	if f.Discount.Kind == DiscountPercentage {
		if v := clampPercent(f.Discount.Value); !v.Equal(f.Discount.Value) {
			f.Discount.Value = v
			ch = append(ch, "discount.value")
		}
	}

	t := totalsFrom(lineTotals, f.Discount, f.TaxRate, f.VATRate)
	if assign(&f.Totals.Subtotal, t.Subtotal) {
		ch = append(ch, "totals.subtotal")
	}
	if assign(&f.Totals.DiscountAmount, t.DiscountAmount) {
		ch = append(ch, "totals.discount_amount")
	}
	if assign(&f.Totals.TaxAmount, t.TaxAmount) {
		ch = append(ch, "totals.tax_amount")
	}
	if assign(&f.Totals.VATAmount, t.VATAmount) {
		ch = append(ch, "totals.vat_amount")
	}
	if assign(&f.Totals.GrandTotal, t.GrandTotal) {
		ch = append(ch, "totals.grand_total")
	}

	switch f.Payment.Status {
	case PaymentPaid:
		if assign(&f.Payment.AmountPaid, f.Totals.GrandTotal) {
			ch = append(ch, "payment.amount_paid")
		}
	case PaymentUnpaid:
		if assign(&f.Payment.AmountPaid, decimal.Zero) {
			ch = append(ch, "payment.amount_paid")
		}
	}
	// Con pago parcial el abono lo controla el usuario.
	return ch
}

func lineTotal(it LineItem) decimal.Decimal {
	return Round2(it.Quantity.Mul(it.UnitPrice))
}

func totalsFrom(lineTotals []decimal.Decimal, discount Discount, taxRate, vatRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, lt := range lineTotals {
		subtotal = subtotal.Add(lt)
	}
	subtotal = Round2(subtotal)

	var discountAmount decimal.Decimal
	switch discount.Kind {
	case DiscountPercentage:
		discountAmount = Round2(subtotal.Mul(clampPercent(discount.Value)).Div(hundred))
	case DiscountFixed:
		discountAmount = Round2(discount.Value)
	default:
		discountAmount = decimal.Zero
	}

	taxable := subtotal.Sub(discountAmount)
	tax := Round2(taxable.Mul(taxRate).Div(hundred))
	vat := Round2(taxable.Mul(vatRate).Div(hundred))

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      tax,
		VATAmount:      vat,
		GrandTotal:     Round2(taxable.Add(tax).Add(vat)),
	}
}
