package billing

import (
	"context"

	"github.com/jhoicas/pharma-erp-api/internal/application/dto"
	"github.com/jhoicas/pharma-erp-api/internal/domain/entity"
	"github.com/jhoicas/pharma-erp-api/internal/domain/repository"
)

// CatalogUseCase listados de productos y clientes para los selectores del formulario.
type CatalogUseCase struct {
	companyID    string
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(companyID string, productRepo repository.ProductRepository, customerRepo repository.CustomerRepository) *CatalogUseCase {
	return &CatalogUseCase{companyID: companyID, productRepo: productRepo, customerRepo: customerRepo}
}

// ListProducts lista productos de la empresa.
func (uc *CatalogUseCase) ListProducts(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.productRepo.ListByCompany(ctx, uc.companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListCustomers lista clientes de la empresa.
func (uc *CatalogUseCase) ListCustomers(ctx context.Context, page dto.PageRequest) (*dto.CustomerListResponse, error) {
	page.DefaultPage()
	list, err := uc.customerRepo.ListByCompany(ctx, uc.companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, dto.CustomerResponse{
			ID:        c.ID,
			Name:      c.Name,
			Company:   c.Company,
			Phone:     c.Phone,
			Email:     c.Email,
			Address:   c.Address,
			TaxNumber: c.TaxNumber,
		})
	}
	return &dto.CustomerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		Name:          p.Name,
		Category:      p.Category,
		UnitOfMeasure: p.UnitOfMeasure,
		SellingPrice:  p.SellingPrice,
	}
}
