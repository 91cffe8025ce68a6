package totals

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 redondea un monto a 2 decimales, mitad lejos de cero (0.125 -> 0.13, -0.125 -> -0.13).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// assign escribe next en *dst solo si cambia a nivel de centavo. next ya viene redondeado,
// así que cualquier diferencia es un cambio real o un residuo sin redondear en el valor guardado.
func assign(dst *decimal.Decimal, next decimal.Decimal) bool {
	if dst.Equal(next) {
		return false
	}
	*dst = next
	return true
}

// clampPercent limita un porcentaje al rango [0, 100].
func clampPercent(v decimal.Decimal) decimal.Decimal {
	if v.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if v.GreaterThan(hundred) {
		return hundred
	}
	return v
}
