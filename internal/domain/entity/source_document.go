package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento que se pueden importar a una factura.
const (
	SourceKindQuotation = "quotation"
	SourceKindOrder     = "order"
)

// SourceDocument cotización u orden de la que se importan líneas a un borrador.
type SourceDocument struct {
	ID         string
	CompanyID  string
	Kind       string
	Reference  string
	CustomerID string
	Lines      []SourceDocumentLine
	CreatedAt  time.Time
}

// SourceDocumentLine línea de la cotización/orden. ProductID puede venir vacío
// (producto escrito a mano); en ese caso se resuelve por nombre.
type SourceDocumentLine struct {
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}
