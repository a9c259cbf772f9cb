package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

var _ repository.UOMRepository = (*UOMRepo)(nil)

// UOMRepo implementación de UOMRepository sobre PostgreSQL.
type UOMRepo struct {
	q Querier
}

// NewUOMRepository construye el adaptador.
func NewUOMRepository(q Querier) *UOMRepo {
	return &UOMRepo{q: q}
}

const uomColumns = `id::text, company_id::text, name, symbol, is_active, created_at, updated_at, deleted_at`

func scanUOM(row pgx.Row) (*entity.UnitOfMeasure, error) {
	var u entity.UnitOfMeasure
	if err := row.Scan(&u.ID, &u.CompanyID, &u.Name, &u.Symbol, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persiste una unidad de medida.
func (r *UOMRepo) Create(ctx context.Context, u *entity.UnitOfMeasure) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO units_of_measure (id, company_id, name, symbol, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.CompanyID, u.Name, u.Symbol, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return writeErr("insert uom", err)
	}
	return nil
}

// GetByID obtiene una unidad por ID.
func (r *UOMRepo) GetByID(ctx context.Context, id string) (*entity.UnitOfMeasure, error) {
	u, err := scanUOM(r.q.QueryRow(ctx, `SELECT `+uomColumns+` FROM units_of_measure WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get uom: %w", err)
	}
	return u, nil
}

// Update actualiza una unidad.
func (r *UOMRepo) Update(ctx context.Context, u *entity.UnitOfMeasure) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE units_of_measure SET name = $2, symbol = $3, is_active = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL`,
		u.ID, u.Name, u.Symbol, u.IsActive, u.UpdatedAt,
	)
	return mustAffect(tag, err, "update uom")
}

// ListByCompany lista unidades; companyID vacío = todas.
func (r *UOMRepo) ListByCompany(ctx context.Context, companyID string, isActive *bool, limit, offset int) ([]*entity.UnitOfMeasure, int, error) {
	const cond = `deleted_at IS NULL AND ($1 = '' OR company_id::text = $1) AND ($2::boolean IS NULL OR is_active = $2)`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM units_of_measure WHERE `+cond, companyID, isActive).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count uoms: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+uomColumns+` FROM units_of_measure WHERE `+cond+` ORDER BY name LIMIT $3 OFFSET $4`,
		companyID, isActive, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list uoms: %w", err)
	}
	defer rows.Close()
	var list []*entity.UnitOfMeasure
	for rows.Next() {
		u, err := scanUOM(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan uom: %w", err)
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

// SoftDelete desactiva la unidad.
func (r *UOMRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE units_of_measure SET is_active = FALSE, deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return mustAffect(tag, err, "soft delete uom")
}
