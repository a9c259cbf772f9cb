package repository

import (
	"context"

	"github.com/windi9/dwc-pos/internal/domain/entity"
)

// OutletRepository puerto de persistencia para Outlet.
type OutletRepository interface {
	Create(ctx context.Context, outlet *entity.Outlet) error
	GetByID(ctx context.Context, id string) (*entity.Outlet, error)
	GetByName(ctx context.Context, name string) (*entity.Outlet, error)
	Update(ctx context.Context, outlet *entity.Outlet) error
	ListByCompany(ctx context.Context, companyID string, isActive *bool, limit, offset int) ([]*entity.Outlet, int, error)
	SoftDelete(ctx context.Context, id string) error
}
