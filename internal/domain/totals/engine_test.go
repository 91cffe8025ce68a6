package totals_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharma-erp-api/internal/domain/totals"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !dec(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("monto esperado %s, obtenido %s", want, got), msgAndArgs...)
	}
}

// twoItemForm arma el formulario base: cantidades {2,3}, precios {10.00, 5.00}, tasas 14/14.
func twoItemForm() totals.InvoiceForm {
	f := totals.NewForm(dec("14"), dec("14"))
	f.Items = []totals.LineItem{
		{ProductID: "p-1", Quantity: dec("2"), UnitPrice: dec("10.00")},
		{ProductID: "p-2", Quantity: dec("3"), UnitPrice: dec("5.00")},
	}
	return f
}

func isCentMultiple(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// ── escenarios ───────────────────────────────────────────────────────────────

func TestRecompute_SinDescuento(t *testing.T) {
	f := twoItemForm()
	totals.Recompute(&f)

	assertMoney(t, "20.00", f.Items[0].LineTotal)
	assertMoney(t, "15.00", f.Items[1].LineTotal)
	assertMoney(t, "35.00", f.Totals.Subtotal)
	assertMoney(t, "0", f.Totals.DiscountAmount)
	assertMoney(t, "4.90", f.Totals.TaxAmount)
	assertMoney(t, "4.90", f.Totals.VATAmount)
	assertMoney(t, "44.80", f.Totals.GrandTotal)
}

func TestRecompute_DescuentoPorcentaje(t *testing.T) {
	f := twoItemForm()
	f.Discount = totals.Discount{Kind: totals.DiscountPercentage, Value: dec("10")}
	totals.Recompute(&f)

	assertMoney(t, "3.50", f.Totals.DiscountAmount)
	assertMoney(t, "31.50", f.Totals.TaxableAmount())
	assertMoney(t, "4.41", f.Totals.TaxAmount)
	assertMoney(t, "4.41", f.Totals.VATAmount)
	assertMoney(t, "40.32", f.Totals.GrandTotal)
}

func TestRecompute_DescuentoFijo(t *testing.T) {
	f := twoItemForm()
	f.Discount = totals.Discount{Kind: totals.DiscountFixed, Value: dec("5")}
	totals.Recompute(&f)

	assertMoney(t, "5.00", f.Totals.DiscountAmount)
	assertMoney(t, "30.00", f.Totals.TaxableAmount())
	assertMoney(t, "4.20", f.Totals.TaxAmount)
	assertMoney(t, "38.40", f.Totals.GrandTotal)
}

func TestRecompute_PagoPasaAPagado(t *testing.T) {
	f := twoItemForm()
	totals.Recompute(&f)
	assertMoney(t, "0", f.Payment.AmountPaid)

	f.Payment.Status = totals.PaymentPaid
	ch := totals.Recompute(&f)
	assertMoney(t, "44.80", f.Payment.AmountPaid)
	assert.Equal(t, totals.Changes{"payment.amount_paid"}, ch)

	again := totals.Recompute(&f)
	assert.True(t, again.Empty(), "la segunda pasada no debe escribir nada: %v", again)
}

func TestRecompute_PagoParcialNoSeToca(t *testing.T) {
	f := twoItemForm()
	f.Payment = totals.Payment{Status: totals.PaymentPartial, AmountPaid: dec("50")}
	totals.Recompute(&f)

	assertMoney(t, "50", f.Payment.AmountPaid)
	assertMoney(t, "-5.20", f.BalanceDue(), "sobrepago se muestra negativo")
}

func TestRecompute_SinPagarFuerzaCero(t *testing.T) {
	f := twoItemForm()
	f.Payment = totals.Payment{Status: totals.PaymentUnpaid, AmountPaid: dec("12.34")}
	totals.Recompute(&f)
	assertMoney(t, "0", f.Payment.AmountPaid)
}

func TestRecompute_PorcentajeSeLimitaA100(t *testing.T) {
	f := twoItemForm()
	f.Discount = totals.Discount{Kind: totals.DiscountPercentage, Value: dec("150")}
	ch := totals.Recompute(&f)

	assert.Contains(t, ch, "discount.value")
	assertMoney(t, "100", f.Discount.Value)
	assertMoney(t, "35.00", f.Totals.DiscountAmount)
	assertMoney(t, "0", f.Totals.GrandTotal)
}

func TestRecompute_ReemplazaResiduoSinRedondear(t *testing.T) {
	f := twoItemForm()
	totals.Recompute(&f)
	f.Totals.Subtotal = dec("35.004")

	ch := totals.Recompute(&f)
	assert.Equal(t, totals.Changes{"totals.subtotal"}, ch)
	assertMoney(t, "35.00", f.Totals.Subtotal)
}

func TestRecompute_FormularioVacio(t *testing.T) {
	f := totals.NewForm(dec("14"), dec("14"))
	assertMoney(t, "0", f.Totals.GrandTotal)
	assert.True(t, totals.Recompute(&f).Empty())
}

func TestCompute_NoDependeDeLineTotalGuardado(t *testing.T) {
	items := []totals.LineItem{{Quantity: dec("2"), UnitPrice: dec("10"), LineTotal: dec("999")}}
	got := totals.Compute(items, totals.Discount{Kind: totals.DiscountNone}, dec("14"), dec("0"))
	assertMoney(t, "20", got.Subtotal)
	assertMoney(t, "22.80", got.GrandTotal)
}

// ── redondeo ────────────────────────────────────────────────────────────────

func TestRound2_MitadLejosDeCero(t *testing.T) {
	cases := []struct{ in, want string }{
		{"0.125", "0.13"},
		{"-0.125", "-0.13"},
		{"2.675", "2.68"},
		{"0.005", "0.01"},
		{"0.0049", "0"},
		{"1.115", "1.12"},
	}
	for _, c := range cases {
		assertMoney(t, c.want, totals.Round2(dec(c.in)), "Round2(%s)", c.in)
	}
}

// ── propiedades ──────────────────────────────────────────────────────────────

func randomForm(r *rand.Rand) totals.InvoiceForm {
	f := totals.NewForm(decimal.New(r.Int63n(3000), -2), decimal.New(r.Int63n(3000), -2))
	n := r.Intn(6) + 1
	for i := 0; i < n; i++ {
		f.Items = append(f.Items, totals.LineItem{
			ProductID: "p",
			Quantity:  decimal.NewFromInt(r.Int63n(500)),
			UnitPrice: decimal.New(r.Int63n(1_000_000), -3),
		})
	}
	switch r.Intn(3) {
	case 0:
		f.Discount = totals.Discount{Kind: totals.DiscountPercentage, Value: decimal.New(r.Int63n(10001), -2)}
	case 1:
		f.Discount = totals.Discount{Kind: totals.DiscountFixed, Value: decimal.New(r.Int63n(5000), -1)}
	}
	switch r.Intn(3) {
	case 0:
		f.Payment.Status = totals.PaymentPaid
	case 1:
		f.Payment = totals.Payment{Status: totals.PaymentPartial, AmountPaid: decimal.New(r.Int63n(100000), -2)}
	}
	return f
}

func TestRecompute_Propiedades(t *testing.T) {
	r := rand.New(rand.NewSource(20240601))
	for i := 0; i < 500; i++ {
		f := randomForm(r)
		partialBefore := f.Payment.AmountPaid

		totals.Recompute(&f)
		first := f.Clone()
		second := totals.Recompute(&f)

		require.True(t, second.Empty(), "idempotencia: segunda pasada escribió %v", second)
		require.Equal(t, first.Totals, f.Totals)

		for _, it := range f.Items {
			require.True(t, isCentMultiple(it.LineTotal), "line_total %s", it.LineTotal)
		}
		for _, v := range []decimal.Decimal{f.Totals.Subtotal, f.Totals.TaxAmount, f.Totals.VATAmount, f.Totals.GrandTotal} {
			require.True(t, isCentMultiple(v), "monto con residuo: %s", v)
		}

		if f.Discount.Kind == totals.DiscountPercentage {
			require.False(t, f.Totals.DiscountAmount.IsNegative())
			require.True(t, f.Totals.DiscountAmount.LessThanOrEqual(f.Totals.Subtotal),
				"descuento %s > subtotal %s", f.Totals.DiscountAmount, f.Totals.Subtotal)
		}

		switch f.Payment.Status {
		case totals.PaymentPaid:
			require.True(t, f.Payment.AmountPaid.Equal(f.Totals.GrandTotal))
		case totals.PaymentUnpaid:
			require.True(t, f.Payment.AmountPaid.IsZero())
		case totals.PaymentPartial:
			require.True(t, f.Payment.AmountPaid.Equal(partialBefore))
		}
	}
}
