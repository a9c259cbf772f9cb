package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

// ── Companies ────────────────────────────────────────────────────────────────

// CompanyRepo implementa repository.CompanyRepository.
type CompanyRepo struct{ s *Store }

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

func (r *CompanyRepo) conflict(c *entity.Company) bool {
	for _, o := range r.s.companies {
		if o.ID == c.ID {
			continue
		}
		if strings.EqualFold(o.Name, c.Name) || (c.Email != "" && strings.EqualFold(o.Email, c.Email)) {
			return true
		}
	}
	return false
}

func (r *CompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflict(c) {
		return domain.ErrConflict
	}
	cp := *c
	r.s.companies[c.ID] = &cp
	return nil
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.companies[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *CompanyRepo) GetByName(_ context.Context, name string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.companies {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CompanyRepo) GetByEmail(_ context.Context, email string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.companies {
		if c.Email != "" && strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CompanyRepo) Update(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[c.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.conflict(c) {
		return domain.ErrConflict
	}
	cp := *c
	r.s.companies[c.ID] = &cp
	return nil
}

func (r *CompanyRepo) List(_ context.Context, f repository.CompanyFilter, limit, offset int) ([]*entity.Company, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Company
	for _, c := range r.s.companies {
		if c.DeletedAt != nil || (f.ID != "" && c.ID != f.ID) || (f.IsActive != nil && c.IsActive != *f.IsActive) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), len(out), nil
}

func (r *CompanyRepo) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok || c.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	c.IsActive, c.DeletedAt = false, &now
	return nil
}

// ── Outlets ──────────────────────────────────────────────────────────────────

// OutletRepo implementa repository.OutletRepository.
type OutletRepo struct{ s *Store }

var _ repository.OutletRepository = (*OutletRepo)(nil)

func (r *OutletRepo) Create(_ context.Context, o *entity.Outlet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.outlets {
		if strings.EqualFold(other.Name, o.Name) {
			return domain.ErrConflict
		}
	}
	cp := *o
	r.s.outlets[o.ID] = &cp
	return nil
}

func (r *OutletRepo) GetByID(_ context.Context, id string) (*entity.Outlet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.outlets[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (r *OutletRepo) GetByName(_ context.Context, name string) (*entity.Outlet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.outlets {
		if strings.EqualFold(o.Name, name) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *OutletRepo) Update(_ context.Context, o *entity.Outlet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.outlets[o.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, other := range r.s.outlets {
		if other.ID != o.ID && strings.EqualFold(other.Name, o.Name) {
			return domain.ErrConflict
		}
	}
	cp := *o
	r.s.outlets[o.ID] = &cp
	return nil
}

func (r *OutletRepo) ListByCompany(_ context.Context, companyID string, isActive *bool, limit, offset int) ([]*entity.Outlet, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Outlet
	for _, o := range r.s.outlets {
		if o.DeletedAt != nil || (companyID != "" && o.CompanyID != companyID) || (isActive != nil && o.IsActive != *isActive) {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), len(out), nil
}

func (r *OutletRepo) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.outlets[id]
	if !ok || o.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	o.IsActive, o.DeletedAt = false, &now
	return nil
}

// ── UoMs ─────────────────────────────────────────────────────────────────────

// UOMRepo implementa repository.UOMRepository.
type UOMRepo struct{ s *Store }

var _ repository.UOMRepository = (*UOMRepo)(nil)

func (r *UOMRepo) conflict(u *entity.UnitOfMeasure) bool {
	for _, o := range r.s.uoms {
		if o.ID == u.ID || o.CompanyID != u.CompanyID {
			continue
		}
		if strings.EqualFold(o.Name, u.Name) || strings.EqualFold(o.Symbol, u.Symbol) {
			return true
		}
	}
	return false
}

func (r *UOMRepo) Create(_ context.Context, u *entity.UnitOfMeasure) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflict(u) {
		return domain.ErrConflict
	}
	cp := *u
	r.s.uoms[u.ID] = &cp
	return nil
}

func (r *UOMRepo) GetByID(_ context.Context, id string) (*entity.UnitOfMeasure, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.uoms[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *UOMRepo) Update(_ context.Context, u *entity.UnitOfMeasure) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.uoms[u.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.conflict(u) {
		return domain.ErrConflict
	}
	cp := *u
	r.s.uoms[u.ID] = &cp
	return nil
}

func (r *UOMRepo) ListByCompany(_ context.Context, companyID string, isActive *bool, limit, offset int) ([]*entity.UnitOfMeasure, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.UnitOfMeasure
	for _, u := range r.s.uoms {
		if u.DeletedAt != nil || (companyID != "" && u.CompanyID != companyID) || (isActive != nil && u.IsActive != *isActive) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), len(out), nil
}

func (r *UOMRepo) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.uoms[id]
	if !ok || u.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	u.IsActive, u.DeletedAt = false, &now
	return nil
}

// ── Products ─────────────────────────────────────────────────────────────────

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ s *Store }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) conflict(p *entity.Product) bool {
	for _, o := range r.s.products {
		if o.ID == p.ID || o.CompanyID != p.CompanyID {
			continue
		}
		if strings.EqualFold(o.Name, p.Name) || strings.EqualFold(o.SKU, p.SKU) {
			return true
		}
	}
	return false
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflict(p) {
		return domain.ErrConflict
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *ProductRepo) findInCompany(companyID string, match func(*entity.Product) bool) *entity.Product {
	for _, p := range r.s.products {
		if p.CompanyID == companyID && match(p) {
			cp := *p
			return &cp
		}
	}
	return nil
}

func (r *ProductRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.findInCompany(companyID, func(p *entity.Product) bool { return strings.EqualFold(p.SKU, sku) }), nil
}

func (r *ProductRepo) GetByCompanyAndName(_ context.Context, companyID, name string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.findInCompany(companyID, func(p *entity.Product) bool { return strings.EqualFold(p.Name, name) }), nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.conflict(p) {
		return domain.ErrConflict
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) ListByCompany(_ context.Context, companyID string, f repository.ProductFilter, limit, offset int) ([]*entity.Product, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(f.Search)
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.DeletedAt != nil || (companyID != "" && p.CompanyID != companyID) || (f.IsActive != nil && p.IsActive != *f.IsActive) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.SKU), q) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), len(out), nil
}

func (r *ProductRepo) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	p.IsActive, p.DeletedAt = false, &now
	return nil
}
