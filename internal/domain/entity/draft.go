package entity

import (
	"time"

	"github.com/jhoicas/pharma-erp-api/internal/domain/totals"
)

// Draft factura en edición. Document es la copia completa del formulario.
type Draft struct {
	ID          string             `json:"id"`
	DisplayName string             `json:"display_name"`
	Document    totals.InvoiceForm `json:"document"`
	LastUpdated time.Time          `json:"last_updated"`
}
