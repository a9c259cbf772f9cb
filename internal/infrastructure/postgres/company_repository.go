package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id::text, name, address, phone_number, coalesce(email, ''), logo_url, is_active, created_at, updated_at, deleted_at`

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.PhoneNumber, &c.Email, &c.LogoURL,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepo) getOne(ctx context.Context, op, where string, arg any) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE `+where, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO companies (id, name, address, phone_number, email, logo_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.Address, c.PhoneNumber, nullable(c.Email), c.LogoURL, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return writeErr("insert company", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID (incluye borradas; el caso de uso decide).
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	return r.getOne(ctx, "get company", `id = $1`, id)
}

// GetByName busca por nombre sin distinguir mayúsculas.
func (r *CompanyRepo) GetByName(ctx context.Context, name string) (*entity.Company, error) {
	return r.getOne(ctx, "get company by name", `lower(name) = lower($1)`, name)
}

// GetByEmail busca por email.
func (r *CompanyRepo) GetByEmail(ctx context.Context, email string) (*entity.Company, error) {
	return r.getOne(ctx, "get company by email", `lower(email) = lower($1)`, email)
}

// Update actualiza una empresa.
func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE companies SET name = $2, address = $3, phone_number = $4, email = $5, logo_url = $6,
			is_active = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL`,
		c.ID, c.Name, c.Address, c.PhoneNumber, nullable(c.Email), c.LogoURL, c.IsActive, c.UpdatedAt,
	)
	return mustAffect(tag, err, "update company")
}

// List lista empresas con paginación.
func (r *CompanyRepo) List(ctx context.Context, f repository.CompanyFilter, limit, offset int) ([]*entity.Company, int, error) {
	where := []string{"deleted_at IS NULL"}
	var args []any
	if f.ID != "" {
		args = append(args, f.ID)
		where = append(where, fmt.Sprintf("id = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM companies WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}
	args = append(args, limit, offset)
	rows, err := r.q.Query(ctx, fmt.Sprintf(`SELECT %s FROM companies WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		companyColumns, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

// SoftDelete desactiva la empresa.
func (r *CompanyRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE companies SET is_active = FALSE, deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return mustAffect(tag, err, "soft delete company")
}
