package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/application/usecase"
	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/entity"
)

type fakePDF struct {
	company *entity.Company
	lines   []usecase.PriceListLine
}

func (g *fakePDF) GeneratePriceList(_ context.Context, company *entity.Company, lines []usecase.PriceListLine, _ time.Time) ([]byte, error) {
	g.company, g.lines = company, lines
	return []byte("%PDF-1.3"), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Empresas y aislamiento entre tenants
// ─────────────────────────────────────────────────────────────────────────────

func TestCompany_CreateDuplicadoEsConflicto(t *testing.T) {
	f := newFixture(t)
	f.company(t, "Tienda Uno")

	_, err := f.companies.Create(context.Background(), dto.CreateCompanyRequest{Name: "Tienda Uno"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.companies.Create(context.Background(), dto.CreateCompanyRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompany_UsuarioDeTenantSoloVeLaSuya(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.company(t, "A")
	b := f.company(t, "B")
	admin := f.member(t, "admin-a", a, entity.RoleAdmin)
	root := f.superadmin(t)

	list, err := f.companies.List(ctx, admin, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, a, list.Items[0].ID)
	assert.Equal(t, 20, list.Page.Limit)

	all, err := f.companies.List(ctx, root, nil, dto.PageRequest{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Page.Total)
	assert.Equal(t, 100, all.Page.Limit)

	_, err = f.companies.GetByID(ctx, admin, b)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.companies.Update(ctx, admin, b, dto.UpdateCompanyRequest{Name: ptr("hack")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.companies.Update(ctx, admin, a, dto.UpdateCompanyRequest{Address: ptr("Calle 1")})
	require.NoError(t, err)
	assert.Equal(t, "Calle 1", out.Address)
}

func TestCompany_DeleteEsSoftDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.superadmin(t)
	id := f.company(t, "A")

	require.NoError(t, f.companies.Delete(ctx, root, id))
	_, err := f.companies.GetByID(ctx, root, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	c, err := f.store.Companies().GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, c, "la fila se conserva")
	assert.False(t, c.IsActive)
	assert.NotNil(t, c.DeletedAt)
}

func TestSinEmpresaNoTocaRecursosDeTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.company(t, "A")
	orphan := f.member(t, "huerfano", "", entity.RoleAdmin)
	orphan.User.CompanyID = nil

	_, err := f.companies.List(ctx, orphan, nil, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.outlets.List(ctx, orphan, "", nil, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uoms.Create(ctx, orphan, dto.CreateUOMRequest{Name: "Kilo", Symbol: "kg"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─────────────────────────────────────────────────────────────────────────────
// Outlets
// ─────────────────────────────────────────────────────────────────────────────

func TestOutlet_CRUDDentroDelTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.company(t, "A")
	b := f.company(t, "B")
	admin := f.member(t, "admin-a", a, entity.RoleAdmin)

	_, err := f.outlets.Create(ctx, admin, dto.CreateOutletRequest{CompanyID: b, Name: "Centro"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	o, err := f.outlets.Create(ctx, admin, dto.CreateOutletRequest{CompanyID: a, Name: "Centro"})
	require.NoError(t, err)
	assert.True(t, o.IsActive)

	_, err = f.outlets.Create(ctx, admin, dto.CreateOutletRequest{CompanyID: a, Name: "centro"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	o, err = f.outlets.Update(ctx, admin, o.ID, dto.UpdateOutletRequest{IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, o.IsActive)

	list, err := f.outlets.List(ctx, admin, "", ptr(false), dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	_, err = f.outlets.List(ctx, admin, b, nil, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	adminB := f.member(t, "admin-b", b, entity.RoleAdmin)
	_, err = f.outlets.GetByID(ctx, adminB, o.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "outlet de otra empresa")
	assert.ErrorIs(t, f.outlets.Delete(ctx, adminB, o.ID), domain.ErrForbidden)

	require.NoError(t, f.outlets.Delete(ctx, admin, o.ID))
	_, err = f.outlets.GetByID(ctx, admin, o.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOutlet_EmpresaInactiva(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.superadmin(t)
	a := f.company(t, "A")
	_, err := f.companies.Update(ctx, root, a, dto.UpdateCompanyRequest{IsActive: ptr(false)})
	require.NoError(t, err)

	_, err = f.outlets.Create(ctx, root, dto.CreateOutletRequest{CompanyID: a, Name: "Centro"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─────────────────────────────────────────────────────────────────────────────
// Unidades de medida y productos
// ─────────────────────────────────────────────────────────────────────────────

func TestUOM_UnicidadPorEmpresa(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.company(t, "A")
	b := f.company(t, "B")
	adminA := f.member(t, "admin-a", a, entity.RoleAdmin)
	adminB := f.member(t, "admin-b", b, entity.RoleAdmin)

	f.uom(t, adminA, "", "kg")
	_, err := f.uoms.Create(ctx, adminA, dto.CreateUOMRequest{Name: "Otro", Symbol: "kg"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	f.uom(t, adminB, "", "kg")

	list, err := f.uoms.List(ctx, adminA, "", nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, a, list.Items[0].CompanyID)
}

func TestProduct_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.company(t, "A")
	b := f.company(t, "B")
	adminA := f.member(t, "admin-a", a, entity.RoleAdmin)
	root := f.superadmin(t)
	kg := f.uom(t, adminA, "", "kg")
	foreign := f.uom(t, root, b, "lb")

	base := dto.CreateProductRequest{Name: "Arroz", SKU: "ARZ-1", StockUOMID: kg, BasePrice: decimal.RequireFromString("3500.50")}

	in := base
	in.BasePrice = decimal.Zero
	_, err := f.products.Create(ctx, adminA, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "precio 0")

	in = base
	in.StockUOMID = foreign
	_, err = f.products.Create(ctx, adminA, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "unidad de otra empresa")

	p, err := f.products.Create(ctx, adminA, base)
	require.NoError(t, err)
	assert.True(t, p.BasePrice.Equal(decimal.RequireFromString("3500.5")))
	assert.Equal(t, a, p.CompanyID)

	in = base
	in.Name = "Otro"
	_, err = f.products.Create(ctx, adminA, in)
	assert.ErrorIs(t, err, domain.ErrConflict, "sku repetido")

	in = base
	in.SKU = "ARZ-2"
	_, err = f.products.Create(ctx, adminA, in)
	assert.ErrorIs(t, err, domain.ErrConflict, "nombre repetido")

	_, err = f.uoms.Update(ctx, adminA, kg, dto.UpdateUOMRequest{IsActive: ptr(false)})
	require.NoError(t, err)
	in = base
	in.Name, in.SKU = "Frijol", "FRJ-1"
	_, err = f.products.Create(ctx, adminA, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "unidad inactiva")
}

func TestProduct_UpdateListYAislamiento(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.company(t, "A")
	b := f.company(t, "B")
	adminA := f.member(t, "admin-a", a, entity.RoleAdmin)
	adminB := f.member(t, "admin-b", b, entity.RoleAdmin)
	kg := f.uom(t, adminA, "", "kg")
	un := f.uom(t, adminA, "", "un")

	p, err := f.products.Create(ctx, adminA, dto.CreateProductRequest{Name: "Arroz", SKU: "ARZ-1", StockUOMID: kg, BasePrice: decimal.NewFromInt(10), Barcode: ptr("  ")})
	require.NoError(t, err)
	assert.Nil(t, p.Barcode)
	_, err = f.products.Create(ctx, adminA, dto.CreateProductRequest{Name: "Leche", SKU: "LCH-1", StockUOMID: un, BasePrice: decimal.NewFromInt(5)})
	require.NoError(t, err)

	_, err = f.products.GetByID(ctx, adminB, p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.products.Update(ctx, adminB, p.ID, dto.UpdateProductRequest{BasePrice: ptr(decimal.NewFromInt(1))})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uoms.GetByID(ctx, adminB, kg)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := f.products.Update(ctx, adminA, p.ID, dto.UpdateProductRequest{StockUOMID: ptr(un), BasePrice: ptr(decimal.NewFromInt(12))})
	require.NoError(t, err)
	assert.Equal(t, un, updated.StockUOMID)

	_, err = f.products.Update(ctx, adminA, p.ID, dto.UpdateProductRequest{BasePrice: ptr(decimal.NewFromInt(-1))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := f.products.List(ctx, adminA, dto.ProductListQuery{Search: "arz"}, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Arroz", list.Items[0].Name)

	require.NoError(t, f.products.Delete(ctx, adminA, p.ID))
	list, err = f.products.List(ctx, adminA, dto.ProductListQuery{}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)
}

func TestProduct_PriceListSoloProductosActivos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.company(t, "A")
	adminA := f.member(t, "admin-a", a, entity.RoleAdmin)
	kg := f.uom(t, adminA, "", "kg")

	_, err := f.products.Create(ctx, adminA, dto.CreateProductRequest{Name: "Arroz", SKU: "ARZ-1", StockUOMID: kg, BasePrice: decimal.NewFromInt(10)})
	require.NoError(t, err)
	off, err := f.products.Create(ctx, adminA, dto.CreateProductRequest{Name: "Sal", SKU: "SAL-1", StockUOMID: kg, BasePrice: decimal.NewFromInt(2)})
	require.NoError(t, err)
	_, err = f.products.Update(ctx, adminA, off.ID, dto.UpdateProductRequest{IsActive: ptr(false)})
	require.NoError(t, err)

	body, name, err := f.products.PriceListPDF(ctx, adminA, "")
	require.NoError(t, err)
	assert.NotEmpty(t, body)
	assert.Contains(t, name, "lista_precios_")
	require.Len(t, f.pdf.lines, 1)
	assert.Equal(t, "kg", f.pdf.lines[0].UOMSymbol)
	assert.Equal(t, "A", f.pdf.company.Name)
}
