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

// UOMUseCase CRUD de unidades de medida por tenant.
type UOMUseCase struct {
	repo      repository.UOMRepository
	companies repository.CompanyRepository
}

// NewUOMUseCase construye el caso de uso.
func NewUOMUseCase(repo repository.UOMRepository, companies repository.CompanyRepository) *UOMUseCase {
	return &UOMUseCase{repo: repo, companies: companies}
}

// Create crea una unidad. CompanyID vacío = empresa del principal.
func (uc *UOMUseCase) Create(ctx context.Context, p *access.Principal, in dto.CreateUOMRequest) (*dto.UOMResponse, error) {
	companyID, err := targetCompany(p, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if _, err := requireActiveCompany(ctx, uc.companies, companyID); err != nil {
		return nil, err
	}
	name, symbol := strings.TrimSpace(in.Name), strings.TrimSpace(in.Symbol)
	if name == "" || symbol == "" {
		return nil, fmt.Errorf("nombre y símbolo son obligatorios: %w", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	uom := &entity.UnitOfMeasure{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Name:      name,
		Symbol:    symbol,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, uom); err != nil {
		return nil, err
	}
	return toUOMResponse(uom), nil
}

// GetByID obtiene una unidad del tenant.
func (uc *UOMUseCase) GetByID(ctx context.Context, p *access.Principal, id string) (*dto.UOMResponse, error) {
	uom, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return toUOMResponse(uom), nil
}

// List lista unidades del tenant.
func (uc *UOMUseCase) List(ctx context.Context, p *access.Principal, companyID string, isActive *bool, page dto.PageRequest) (*dto.UOMListResponse, error) {
	page.Normalize()
	scope, err := p.ScopeCompany(companyID)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.repo.ListByCompany(ctx, scope, isActive, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UOMResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *toUOMResponse(u))
	}
	return &dto.UOMListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update actualiza los campos presentes.
func (uc *UOMUseCase) Update(ctx context.Context, p *access.Principal, id string, in dto.UpdateUOMRequest) (*dto.UOMResponse, error) {
	uom, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if uom.Name = strings.TrimSpace(*in.Name); uom.Name == "" {
			return nil, fmt.Errorf("nombre vacío: %w", domain.ErrInvalidInput)
		}
	}
	if in.Symbol != nil {
		if uom.Symbol = strings.TrimSpace(*in.Symbol); uom.Symbol == "" {
			return nil, fmt.Errorf("símbolo vacío: %w", domain.ErrInvalidInput)
		}
	}
	if in.IsActive != nil {
		uom.IsActive = *in.IsActive
	}
	uom.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, uom); err != nil {
		return nil, err
	}
	return toUOMResponse(uom), nil
}

// Delete soft delete de la unidad.
func (uc *UOMUseCase) Delete(ctx context.Context, p *access.Principal, id string) error {
	if _, err := uc.load(ctx, p, id); err != nil {
		return err
	}
	return uc.repo.SoftDelete(ctx, id)
}

func (uc *UOMUseCase) load(ctx context.Context, p *access.Principal, id string) (*entity.UnitOfMeasure, error) {
	uom, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if uom == nil || uom.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	if err := p.EnsureCompany(uom.CompanyID); err != nil {
		return nil, err
	}
	return uom, nil
}

// targetCompany resuelve la empresa destino de un alta: la pedida (si el principal puede) o la propia.
func targetCompany(p *access.Principal, requested string) (string, error) {
	if requested == "" {
		requested = p.CompanyID()
		if requested == "" {
			return "", fmt.Errorf("company_id es obligatorio: %w", domain.ErrInvalidInput)
		}
	}
	if err := p.EnsureCompany(requested); err != nil {
		return "", err
	}
	return requested, nil
}

func toUOMResponse(u *entity.UnitOfMeasure) *dto.UOMResponse {
	return &dto.UOMResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Name:      u.Name,
		Symbol:    u.Symbol,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
