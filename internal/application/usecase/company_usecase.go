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

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
// Los permisos los verifica la capa HTTP; aquí solo se aplica el aislamiento por tenant.
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Create crea una nueva empresa. Devuelve domain.ErrConflict si el nombre o el email ya existen.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("nombre de empresa vacío: %w", domain.ErrInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if existing, err := uc.repo.GetByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("empresa %q: %w", name, domain.ErrConflict)
	}
	if email != "" {
		if existing, err := uc.repo.GetByEmail(ctx, email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, fmt.Errorf("email de empresa %q: %w", email, domain.ErrConflict)
		}
	}
	now := time.Now().UTC()
	company := &entity.Company{
		ID:          uuid.NewString(),
		Name:        name,
		Address:     in.Address,
		PhoneNumber: in.PhoneNumber,
		Email:       email,
		LogoURL:     in.LogoURL,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa visible para el principal.
func (uc *CompanyUseCase) GetByID(ctx context.Context, p *access.Principal, id string) (*dto.CompanyResponse, error) {
	company, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación. Un usuario de tenant solo ve la suya.
func (uc *CompanyUseCase) List(ctx context.Context, p *access.Principal, isActive *bool, page dto.PageRequest) (*dto.CompanyListResponse, error) {
	page.Normalize()
	filter := repository.CompanyFilter{IsActive: isActive}
	if !p.Superadmin {
		own, err := p.ScopeCompany("")
		if err != nil {
			return nil, err
		}
		filter.ID = own
	}
	list, total, err := uc.repo.List(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update actualiza los campos presentes.
func (uc *CompanyUseCase) Update(ctx context.Context, p *access.Principal, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("nombre de empresa vacío: %w", domain.ErrInvalidInput)
		}
		company.Name = name
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.PhoneNumber != nil {
		company.PhoneNumber = *in.PhoneNumber
	}
	if in.Email != nil {
		company.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.LogoURL != nil {
		company.LogoURL = *in.LogoURL
	}
	if in.IsActive != nil {
		company.IsActive = *in.IsActive
	}
	company.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// Delete desactiva la empresa (soft delete).
func (uc *CompanyUseCase) Delete(ctx context.Context, p *access.Principal, id string) error {
	if _, err := uc.load(ctx, p, id); err != nil {
		return err
	}
	return uc.repo.SoftDelete(ctx, id)
}

func (uc *CompanyUseCase) load(ctx context.Context, p *access.Principal, id string) (*entity.Company, error) {
	if err := p.EnsureCompany(id); err != nil {
		return nil, err
	}
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil || company.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

// requireActiveCompany verifica que la empresa exista y admita nuevos recursos.
func requireActiveCompany(ctx context.Context, repo repository.CompanyRepository, id string) (*entity.Company, error) {
	company, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil || company.DeletedAt != nil {
		return nil, fmt.Errorf("empresa %s: %w", id, domain.ErrNotFound)
	}
	if !company.Usable() {
		return nil, fmt.Errorf("empresa %s inactiva: %w", id, domain.ErrInvalidInput)
	}
	return company, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:          c.ID,
		Name:        c.Name,
		Address:     c.Address,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
		LogoURL:     c.LogoURL,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
