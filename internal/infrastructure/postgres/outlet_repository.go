package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

var _ repository.OutletRepository = (*OutletRepo)(nil)

// OutletRepo implementación de OutletRepository sobre PostgreSQL.
type OutletRepo struct {
	q Querier
}

// NewOutletRepository construye el adaptador.
func NewOutletRepository(q Querier) *OutletRepo {
	return &OutletRepo{q: q}
}

const outletColumns = `id::text, company_id::text, name, address, phone_number, email, is_active, created_at, updated_at, deleted_at`

func scanOutlet(row pgx.Row) (*entity.Outlet, error) {
	var o entity.Outlet
	if err := row.Scan(&o.ID, &o.CompanyID, &o.Name, &o.Address, &o.PhoneNumber, &o.Email,
		&o.IsActive, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste un outlet.
func (r *OutletRepo) Create(ctx context.Context, o *entity.Outlet) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO outlets (id, company_id, name, address, phone_number, email, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.CompanyID, o.Name, o.Address, o.PhoneNumber, o.Email, o.IsActive, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return writeErr("insert outlet", err)
	}
	return nil
}

// GetByID obtiene un outlet por ID.
func (r *OutletRepo) GetByID(ctx context.Context, id string) (*entity.Outlet, error) {
	o, err := scanOutlet(r.q.QueryRow(ctx, `SELECT `+outletColumns+` FROM outlets WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get outlet: %w", err)
	}
	return o, nil
}

// GetByName busca por nombre (único global).
func (r *OutletRepo) GetByName(ctx context.Context, name string) (*entity.Outlet, error) {
	o, err := scanOutlet(r.q.QueryRow(ctx, `SELECT `+outletColumns+` FROM outlets WHERE lower(name) = lower($1)`, name))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get outlet by name: %w", err)
	}
	return o, nil
}

// Update actualiza un outlet.
func (r *OutletRepo) Update(ctx context.Context, o *entity.Outlet) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE outlets SET name = $2, address = $3, phone_number = $4, email = $5, is_active = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL`,
		o.ID, o.Name, o.Address, o.PhoneNumber, o.Email, o.IsActive, o.UpdatedAt,
	)
	return mustAffect(tag, err, "update outlet")
}

// ListByCompany lista outlets; companyID vacío = todos.
func (r *OutletRepo) ListByCompany(ctx context.Context, companyID string, isActive *bool, limit, offset int) ([]*entity.Outlet, int, error) {
	const cond = `deleted_at IS NULL AND ($1 = '' OR company_id::text = $1) AND ($2::boolean IS NULL OR is_active = $2)`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM outlets WHERE `+cond, companyID, isActive).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count outlets: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+outletColumns+` FROM outlets WHERE `+cond+` ORDER BY name LIMIT $3 OFFSET $4`,
		companyID, isActive, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list outlets: %w", err)
	}
	defer rows.Close()
	var list []*entity.Outlet
	for rows.Next() {
		o, err := scanOutlet(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan outlet: %w", err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

// SoftDelete desactiva el outlet.
func (r *OutletRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE outlets SET is_active = FALSE, deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return mustAffect(tag, err, "soft delete outlet")
}
