package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo (materia prima, principio activo o producto terminado).
type Product struct {
	ID            string
	CompanyID     string
	SKU           string // código único por empresa
	Barcode       string
	Name          string
	Category      string
	UnitOfMeasure string
	SellingPrice  decimal.Decimal // precio de venta por defecto en la factura
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
