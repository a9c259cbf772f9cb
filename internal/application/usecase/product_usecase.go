package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/access"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

// PriceListLine fila de la lista de precios con el símbolo de su unidad ya resuelto.
type PriceListLine struct {
	Product   *entity.Product
	UOMSymbol string
}

// PriceListGenerator genera el PDF de la lista de precios (implementado en infrastructure/pdf).
type PriceListGenerator interface {
	GeneratePriceList(ctx context.Context, company *entity.Company, lines []PriceListLine, generatedAt time.Time) ([]byte, error)
}

// priceListMaxItems tope de productos en un solo PDF.
const priceListMaxItems = 1000

// ProductUseCase casos de uso CRUD para productos.
type ProductUseCase struct {
	repo      repository.ProductRepository
	uoms      repository.UOMRepository
	companies repository.CompanyRepository
	pdf       PriceListGenerator
}

// NewProductUseCase construye el caso de uso. pdf puede ser nil si no se expone la lista de precios.
func NewProductUseCase(repo repository.ProductRepository, uoms repository.UOMRepository, companies repository.CompanyRepository, pdf PriceListGenerator) *ProductUseCase {
	return &ProductUseCase{repo: repo, uoms: uoms, companies: companies, pdf: pdf}
}

// Create crea un producto. La unidad debe existir, estar activa y ser de la misma empresa.
func (uc *ProductUseCase) Create(ctx context.Context, p *access.Principal, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	companyID, err := targetCompany(p, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if _, err := requireActiveCompany(ctx, uc.companies, companyID); err != nil {
		return nil, err
	}
	name, sku := strings.TrimSpace(in.Name), strings.TrimSpace(in.SKU)
	if name == "" || sku == "" {
		return nil, fmt.Errorf("nombre y sku son obligatorios: %w", domain.ErrInvalidInput)
	}
	if err := validatePrice(in.BasePrice); err != nil {
		return nil, err
	}
	if err := uc.requireUOM(ctx, companyID, in.StockUOMID); err != nil {
		return nil, err
	}
	if existing, err := uc.repo.GetByCompanyAndSKU(ctx, companyID, sku); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("sku %q: %w", sku, domain.ErrConflict)
	}
	if existing, err := uc.repo.GetByCompanyAndName(ctx, companyID, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("producto %q: %w", name, domain.ErrConflict)
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Name:        name,
		Description: in.Description,
		SKU:         sku,
		Barcode:     normalizeBarcode(in.Barcode),
		StockUOMID:  in.StockUOMID,
		BasePrice:   in.BasePrice,
		ImageURL:    in.ImageURL,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto del tenant.
func (uc *ProductUseCase) GetByID(ctx context.Context, p *access.Principal, id string) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. Si cambia la unidad se vuelve a validar.
func (uc *ProductUseCase) Update(ctx context.Context, p *access.Principal, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if product.Name = strings.TrimSpace(*in.Name); product.Name == "" {
			return nil, fmt.Errorf("nombre vacío: %w", domain.ErrInvalidInput)
		}
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.SKU != nil {
		if product.SKU = strings.TrimSpace(*in.SKU); product.SKU == "" {
			return nil, fmt.Errorf("sku vacío: %w", domain.ErrInvalidInput)
		}
	}
	if in.Barcode != nil {
		product.Barcode = normalizeBarcode(in.Barcode)
	}
	if in.StockUOMID != nil && *in.StockUOMID != product.StockUOMID {
		if err := uc.requireUOM(ctx, product.CompanyID, *in.StockUOMID); err != nil {
			return nil, err
		}
		product.StockUOMID = *in.StockUOMID
	}
	if in.BasePrice != nil {
		if err := validatePrice(*in.BasePrice); err != nil {
			return nil, err
		}
		product.BasePrice = *in.BasePrice
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos del tenant con filtros opcionales.
func (uc *ProductUseCase) List(ctx context.Context, p *access.Principal, q dto.ProductListQuery, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.Normalize()
	scope, err := p.ScopeCompany(q.CompanyID)
	if err != nil {
		return nil, err
	}
	filter := repository.ProductFilter{IsActive: q.IsActive, Search: strings.TrimSpace(q.Search)}
	list, total, err := uc.repo.ListByCompany(ctx, scope, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, prod := range list {
		items = append(items, *toProductResponse(prod))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Delete soft delete del producto.
func (uc *ProductUseCase) Delete(ctx context.Context, p *access.Principal, id string) error {
	if _, err := uc.load(ctx, p, id); err != nil {
		return err
	}
	return uc.repo.SoftDelete(ctx, id)
}

// PriceListPDF genera la lista de precios de los productos activos de la empresa.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrForbidden        si la empresa no es la del principal.
//   - domain.ErrNotFound         si la empresa no existe.
func (uc *ProductUseCase) PriceListPDF(ctx context.Context, p *access.Principal, companyID string) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", fmt.Errorf("lista de precios no disponible: %w", domain.ErrNotFound)
	}
	companyID, err := targetCompany(p, companyID)
	if err != nil {
		return nil, "", err
	}
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	if company == nil || company.DeletedAt != nil {
		return nil, "", domain.ErrNotFound
	}

	active := true
	products, _, err := uc.repo.ListByCompany(ctx, companyID, repository.ProductFilter{IsActive: &active}, priceListMaxItems, 0)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: listar productos: %w", err)
	}
	symbols := map[string]string{}
	lines := make([]PriceListLine, 0, len(products))
	for _, prod := range products {
		sym, ok := symbols[prod.StockUOMID]
		if !ok {
			if u, uErr := uc.uoms.GetByID(ctx, prod.StockUOMID); uErr == nil && u != nil {
				sym = u.Symbol
			}
			symbols[prod.StockUOMID] = sym
		}
		lines = append(lines, PriceListLine{Product: prod, UOMSymbol: sym})
	}

	now := time.Now().UTC()
	pdfBytes, err := uc.pdf.GeneratePriceList(ctx, company, lines, now)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("lista_precios_%s.pdf", now.Format("20060102")), nil
}

func (uc *ProductUseCase) load(ctx context.Context, p *access.Principal, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	if err := p.EnsureCompany(product.CompanyID); err != nil {
		return nil, err
	}
	return product, nil
}

func (uc *ProductUseCase) requireUOM(ctx context.Context, companyID, uomID string) error {
	uom, err := uc.uoms.GetByID(ctx, uomID)
	if err != nil {
		return err
	}
	if uom == nil || uom.CompanyID != companyID {
		return fmt.Errorf("unidad de medida %s no existe en la empresa: %w", uomID, domain.ErrInvalidInput)
	}
	if !uom.Usable() {
		return fmt.Errorf("unidad de medida %s inactiva: %w", uomID, domain.ErrInvalidInput)
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("base_price debe ser mayor que cero: %w", domain.ErrInvalidInput)
	}
	return nil
}

func normalizeBarcode(b *string) *string {
	if b == nil {
		return nil
	}
	v := strings.TrimSpace(*b)
	if v == "" {
		return nil
	}
	return &v
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		Name:        p.Name,
		Description: p.Description,
		SKU:         p.SKU,
		Barcode:     p.Barcode,
		StockUOMID:  p.StockUOMID,
		BasePrice:   p.BasePrice,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
