package billing

import (
	"context"

	"github.com/jhoicas/pharma-erp-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción con el repositorio de facturas
// atado a esa transacción: cabecera y detalles se guardan juntos o no se guardan.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(invoiceRepo repository.InvoiceRepository) error) error
}
