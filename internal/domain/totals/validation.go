package totals

import (
	"fmt"
	"strings"

	"github.com/jhoicas/pharma-erp-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Mode nivel de exigencia de la validación.
type Mode int

const (
	// ModeDraft valida cada cambio del formulario mientras se edita.
	ModeDraft Mode = iota
	// ModeSubmit valida el formulario completo antes de crear la factura.
	ModeSubmit
)

// FieldError mensaje de validación asociado a un campo del formulario.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError agrupa los errores de campo. errors.Is(err, domain.ErrInvalidInput) es true.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return domain.ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidInput
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

// NormalizeInput aplica los ajustes del borde de entrada: un porcentaje de descuento
// mayor a 100 se deja en 100.
func NormalizeInput(f *InvoiceForm) {
	if f.Discount.Kind == "" {
		f.Discount.Kind = DiscountNone
	}
	if f.Payment.Status == "" {
		f.Payment.Status = PaymentUnpaid
	}
	if f.Items == nil {
		f.Items = []LineItem{}
	}
	if f.Discount.Kind == DiscountPercentage && f.Discount.Value.GreaterThan(hundred) {
		f.Discount.Value = hundred
	}
}

// Validate revisa las entradas del formulario. Devuelve *ValidationError o nil.
func Validate(f InvoiceForm, mode Mode) error {
	verr := &ValidationError{}

	if mode == ModeSubmit {
		if strings.TrimSpace(f.CustomerID) == "" {
			verr.add("customer_id", "el cliente es requerido")
		}
		if len(f.Items) == 0 {
			verr.add("items", "la factura debe tener al menos una línea")
		}
	}

	for i, it := range f.Items {
		field := fmt.Sprintf("items[%d]", i)
		switch {
		case it.Quantity.IsNegative():
			verr.add(field+".quantity", "la cantidad no puede ser negativa")
		case !it.Quantity.IsInteger():
			verr.add(field+".quantity", "la cantidad debe ser un número entero")
		case mode == ModeSubmit && it.Quantity.IsZero():
			verr.add(field+".quantity", "la cantidad debe ser mayor que cero")
		}
		if it.UnitPrice.IsNegative() {
			verr.add(field+".unit_price", "el precio no puede ser negativo")
		}
		if mode == ModeSubmit && it.ProductID == "" {
			verr.add(field+".product_id", "el producto es requerido")
		}
	}

	switch f.Discount.Kind {
	case DiscountNone, DiscountFixed, DiscountPercentage:
	default:
		verr.add("discount.kind", "tipo de descuento inválido")
	}
	if f.Discount.Value.IsNegative() {
		verr.add("discount.value", "el descuento no puede ser negativo")
	}
	if f.Discount.Kind == DiscountPercentage && f.Discount.Value.GreaterThan(hundred) {
		verr.add("discount.value", "el porcentaje no puede superar 100")
	}

	if f.TaxRate.IsNegative() {
		verr.add("tax_rate", "la tasa de impuesto no puede ser negativa")
	}
	if f.VATRate.IsNegative() {
		verr.add("vat_rate", "la tasa de IVA no puede ser negativa")
	}

	switch f.Payment.Status {
	case PaymentPaid, PaymentUnpaid:
	case PaymentPartial:
		if f.Payment.AmountPaid.LessThan(decimal.Zero) {
			verr.add("payment.amount_paid", "el abono no puede ser negativo")
		}
	default:
		verr.add("payment.status", "estado de pago inválido")
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
