package billing

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/pharma-erp-api/internal/domain/entity"
	"github.com/jhoicas/pharma-erp-api/internal/domain/repository"
	"github.com/jhoicas/pharma-erp-api/internal/domain/totals"
)

// productResolver resuelve las líneas de una cotización/orden contra el catálogo:
// primero por id y, si no, por nombre normalizado (NFKC + case folding).
type productResolver struct {
	repo      repository.ProductRepository
	companyID string
	byName    map[string]*entity.Product
}

func newProductResolver(repo repository.ProductRepository, companyID string) *productResolver {
	return &productResolver{repo: repo, companyID: companyID}
}

func (r *productResolver) resolve(ctx context.Context, line entity.SourceDocumentLine) (*entity.Product, error) {
	if line.ProductID != "" {
		p, err := r.repo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil && p.CompanyID == r.companyID {
			return p, nil
		}
	}
	key := foldName(line.ProductName)
	if key == "" {
		return nil, nil
	}
	if r.byName == nil {
		list, err := r.repo.ListNamesByCompany(ctx, r.companyID)
		if err != nil {
			return nil, err
		}
		r.byName = make(map[string]*entity.Product, len(list))
		for _, p := range list {
			r.byName[foldName(p.Name)] = p
		}
	}
	return r.byName[key], nil
}

// importLines convierte las líneas del documento en líneas de factura. Una línea cuyo
// producto no se resuelve, o con cantidad no entera o negativa, se omite y su nombre se
// devuelve en unresolved.
func importLines(ctx context.Context, r *productResolver, lines []entity.SourceDocumentLine) (items []totals.LineItem, unresolved []string, err error) {
	items = make([]totals.LineItem, 0, len(lines))
	unresolved = []string{}
	for _, line := range lines {
		p, err := r.resolve(ctx, line)
		if err != nil {
			return nil, nil, err
		}
		if p == nil || line.Quantity.IsNegative() || !line.Quantity.IsInteger() {
			unresolved = append(unresolved, lineLabel(line))
			continue
		}
		price := line.UnitPrice
		if price.IsZero() || price.IsNegative() {
			price = p.SellingPrice
		}
		items = append(items, totals.LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   price,
		})
	}
	return items, unresolved, nil
}

func lineLabel(line entity.SourceDocumentLine) string {
	if strings.TrimSpace(line.ProductName) != "" {
		return strings.TrimSpace(line.ProductName)
	}
	return line.ProductID
}

func foldName(s string) string {
	s = strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
	return cases.Fold().String(s)
}
