package repository

import (
	"context"

	"github.com/jhoicas/pharma-erp-api/internal/domain/entity"
)

// SourceDocumentRepository lectura de cotizaciones y órdenes para importarlas a una factura.
type SourceDocumentRepository interface {
	// GetByID devuelve el documento con sus líneas, o nil si no existe.
	GetByID(ctx context.Context, kind, id string) (*entity.SourceDocument, error)
}
