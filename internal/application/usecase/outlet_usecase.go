package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/access"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

// OutletUseCase CRUD de puntos de venta, siempre dentro del tenant del principal.
type OutletUseCase struct {
	repo      repository.OutletRepository
	companies repository.CompanyRepository
}

// NewOutletUseCase construye el caso de uso.
func NewOutletUseCase(repo repository.OutletRepository, companies repository.CompanyRepository) *OutletUseCase {
	return &OutletUseCase{repo: repo, companies: companies}
}

// Create crea un outlet en una empresa activa. El nombre es único.
func (uc *OutletUseCase) Create(ctx context.Context, p *access.Principal, in dto.CreateOutletRequest) (*dto.OutletResponse, error) {
	if err := p.EnsureCompany(in.CompanyID); err != nil {
		return nil, err
	}
	if _, err := requireActiveCompany(ctx, uc.companies, in.CompanyID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("nombre de outlet vacío: %w", domain.ErrInvalidInput)
	}
	if existing, err := uc.repo.GetByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("outlet %q: %w", name, domain.ErrConflict)
	}
	now := time.Now().UTC()
	outlet := &entity.Outlet{
		ID:          uuid.NewString(),
		CompanyID:   in.CompanyID,
		Name:        name,
		Address:     in.Address,
		PhoneNumber: in.PhoneNumber,
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, outlet); err != nil {
		return nil, err
	}
	return toOutletResponse(outlet), nil
}

// GetByID obtiene un outlet del tenant.
func (uc *OutletUseCase) GetByID(ctx context.Context, p *access.Principal, id string) (*dto.OutletResponse, error) {
	outlet, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return toOutletResponse(outlet), nil
}

// List lista outlets de una empresa; companyID vacío = la del principal (o todas para superadmin).
func (uc *OutletUseCase) List(ctx context.Context, p *access.Principal, companyID string, isActive *bool, page dto.PageRequest) (*dto.OutletListResponse, error) {
	page.Normalize()
	scope, err := p.ScopeCompany(companyID)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.repo.ListByCompany(ctx, scope, isActive, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OutletResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOutletResponse(o))
	}
	return &dto.OutletListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update actualiza los campos presentes.
func (uc *OutletUseCase) Update(ctx context.Context, p *access.Principal, id string, in dto.UpdateOutletRequest) (*dto.OutletResponse, error) {
	outlet, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("nombre de outlet vacío: %w", domain.ErrInvalidInput)
		}
		outlet.Name = name
	}
	if in.Address != nil {
		outlet.Address = *in.Address
	}
	if in.PhoneNumber != nil {
		outlet.PhoneNumber = *in.PhoneNumber
	}
	if in.Email != nil {
		outlet.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.IsActive != nil {
		outlet.IsActive = *in.IsActive
	}
	outlet.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, outlet); err != nil {
		return nil, err
	}
	return toOutletResponse(outlet), nil
}

// Delete soft delete del outlet.
func (uc *OutletUseCase) Delete(ctx context.Context, p *access.Principal, id string) error {
	if _, err := uc.load(ctx, p, id); err != nil {
		return err
	}
	return uc.repo.SoftDelete(ctx, id)
}

// load devuelve ErrForbidden cuando el outlet es de otro tenant.
func (uc *OutletUseCase) load(ctx context.Context, p *access.Principal, id string) (*entity.Outlet, error) {
	outlet, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if outlet == nil || outlet.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	if err := p.EnsureCompany(outlet.CompanyID); err != nil {
		return nil, err
	}
	return outlet, nil
}

func toOutletResponse(o *entity.Outlet) *dto.OutletResponse {
	return &dto.OutletResponse{
		ID:          o.ID,
		CompanyID:   o.CompanyID,
		Name:        o.Name,
		Address:     o.Address,
		PhoneNumber: o.PhoneNumber,
		Email:       o.Email,
		IsActive:    o.IsActive,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
