package repository

import (
	"context"

	"github.com/windi9/dwc-pos/internal/domain/entity"
)

// UOMRepository puerto de persistencia para UnitOfMeasure.
type UOMRepository interface {
	Create(ctx context.Context, uom *entity.UnitOfMeasure) error
	GetByID(ctx context.Context, id string) (*entity.UnitOfMeasure, error)
	Update(ctx context.Context, uom *entity.UnitOfMeasure) error
	ListByCompany(ctx context.Context, companyID string, isActive *bool, limit, offset int) ([]*entity.UnitOfMeasure, int, error)
	SoftDelete(ctx context.Context, id string) error
}
