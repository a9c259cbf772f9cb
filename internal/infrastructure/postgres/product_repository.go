package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL.
// base_price es NUMERIC(14,2) y se mapea a decimal.Decimal con el codec registrado en NewPool.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id::text, company_id::text, name, description, sku, barcode, stock_uom_id::text,
	base_price, image_url, is_active, created_at, updated_at, deleted_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Description, &p.SKU, &p.Barcode, &p.StockUOMID,
		&p.BasePrice, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, where string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE `+where, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Create persiste un producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (id, company_id, name, description, sku, barcode, stock_uom_id, base_price,
			image_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.CompanyID, p.Name, p.Description, p.SKU, p.Barcode, p.StockUOMID, p.BasePrice,
		p.ImageURL, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return writeErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", `id = $1`, id)
}

// GetByCompanyAndSKU busca por SKU dentro de la empresa.
func (r *ProductRepo) GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by sku", `company_id = $1 AND lower(sku) = lower($2)`, companyID, sku)
}

// GetByCompanyAndName busca por nombre dentro de la empresa.
func (r *ProductRepo) GetByCompanyAndName(ctx context.Context, companyID, name string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by name", `company_id = $1 AND lower(name) = lower($2)`, companyID, name)
}

// Update actualiza un producto.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, description = $3, sku = $4, barcode = $5, stock_uom_id = $6,
			base_price = $7, image_url = $8, is_active = $9, updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL`,
		p.ID, p.Name, p.Description, p.SKU, p.Barcode, p.StockUOMID,
		p.BasePrice, p.ImageURL, p.IsActive, p.UpdatedAt,
	)
	return mustAffect(tag, err, "update product")
}

// ListByCompany lista productos con filtros; Search compara name o sku con ILIKE.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string, f repository.ProductFilter, limit, offset int) ([]*entity.Product, int, error) {
	const cond = `deleted_at IS NULL
		AND ($1 = '' OR company_id::text = $1)
		AND ($2::boolean IS NULL OR is_active = $2)
		AND ($3 = '' OR name ILIKE '%' || $3 || '%' OR sku ILIKE '%' || $3 || '%')`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products WHERE `+cond, companyID, f.IsActive, f.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE `+cond+` ORDER BY name LIMIT $4 OFFSET $5`,
		companyID, f.IsActive, f.Search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// SoftDelete desactiva el producto.
func (r *ProductRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET is_active = FALSE, deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return mustAffect(tag, err, "soft delete product")
}
