package repository

import (
	"context"

	"github.com/jhoicas/pharma-erp-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo de productos.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// ListByCompany lista productos ordenados por nombre.
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error)
	// ListNamesByCompany devuelve id y nombre de todos los productos (resolución por nombre al importar).
	ListNamesByCompany(ctx context.Context, companyID string) ([]*entity.Product, error)
}
