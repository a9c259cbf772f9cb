package repository

import (
	"context"

	"github.com/windi9/dwc-pos/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure. Get* devuelve (nil, nil) si no existe.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByName(ctx context.Context, name string) (*entity.Company, error)
	GetByEmail(ctx context.Context, email string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	List(ctx context.Context, filter CompanyFilter, limit, offset int) ([]*entity.Company, int, error)
	SoftDelete(ctx context.Context, id string) error
}

// CompanyFilter filtros de listado. ID vacío = sin filtro por ID.
type CompanyFilter struct {
	ID       string
	IsActive *bool
}
