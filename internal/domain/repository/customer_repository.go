package repository

import (
	"context"

	"github.com/jhoicas/pharma-erp-api/internal/domain/entity"
)

// CustomerRepository define el puerto de lectura de clientes (facturación).
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Customer, error)
}
