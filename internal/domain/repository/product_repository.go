package repository

import (
	"context"

	"github.com/windi9/dwc-pos/internal/domain/entity"
)

// ProductRepository puerto de persistencia para Product.
// Unicidad (company_id, name) y (company_id, sku): Create/Update devuelven domain.ErrConflict.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	GetByCompanyAndName(ctx context.Context, companyID, name string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	ListByCompany(ctx context.Context, companyID string, filter ProductFilter, limit, offset int) ([]*entity.Product, int, error)
	SoftDelete(ctx context.Context, id string) error
}

// ProductFilter filtros de listado de productos.
type ProductFilter struct {
	IsActive *bool
	Search   string // coincide con name o sku
}
