package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
// Username y email se comparan en minúsculas; los índices únicos parciales excluyen filas borradas.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios (pool o tx).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id::text, username, email, password_hash, pin_hash, full_name, phone_number,
	company_id::text, outlet_id::text, is_active, email_verified, created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.PinHash, &u.FullName, &u.PhoneNumber,
		&u.CompanyID, &u.OutletID, &u.IsActive, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) getOne(ctx context.Context, op, where string, args ...any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` AND deleted_at IS NULL LIMIT 1`, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, pin_hash, full_name, phone_number,
			company_id, outlet_id, is_active, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.PinHash, u.FullName, u.PhoneNumber,
		u.CompanyID, u.OutletID, u.IsActive, u.EmailVerified, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return writeErr("insert user", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, "get user by id", `id = $1`, id)
}

// GetByUsername obtiene un usuario por username (sin distinguir mayúsculas).
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, "get user by username", `lower(username) = lower($1)`, username)
}

// GetByEmail obtiene un usuario por email (cualquier company).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "get user by email", `lower(email) = lower($1)`, email)
}

// FindByLogin busca por username o email.
func (r *UserRepo) FindByLogin(ctx context.Context, login string) (*entity.User, error) {
	if strings.Contains(login, "@") {
		return r.GetByEmail(ctx, login)
	}
	return r.GetByUsername(ctx, login)
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE users SET username = $2, email = $3, password_hash = $4, pin_hash = $5, full_name = $6,
			phone_number = $7, company_id = $8, outlet_id = $9, is_active = $10, email_verified = $11, updated_at = $12
		WHERE id = $1 AND deleted_at IS NULL`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.PinHash, u.FullName,
		u.PhoneNumber, u.CompanyID, u.OutletID, u.IsActive, u.EmailVerified, u.UpdatedAt,
	)
	return mustAffect(tag, err, "update user")
}

// MarkEmailVerified marca el email como verificado.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE users SET email_verified = TRUE, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return mustAffect(tag, err, "mark email verified")
}

// List lista usuarios con filtros y paginación; devuelve también el total sin paginar.
func (r *UserRepo) List(ctx context.Context, f repository.UserFilter, limit, offset int) ([]*entity.User, int, error) {
	where := []string{"u.deleted_at IS NULL"}
	var args []any
	if f.CompanyID != "" {
		args = append(args, f.CompanyID)
		where = append(where, fmt.Sprintf("u.company_id = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		where = append(where, fmt.Sprintf("u.is_active = $%d", len(args)))
	}
	if f.Role != "" {
		args = append(args, string(f.Role))
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM user_roles ur JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = u.id AND r.name = $%d AND r.is_active)`, len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM users u WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE %s ORDER BY u.username LIMIT $%d OFFSET $%d`,
		prefixed("u", userColumns), cond, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

// SoftDelete desactiva la cuenta y marca deleted_at.
func (r *UserRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE users SET is_active = FALSE, deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return mustAffect(tag, err, "soft delete user")
}

// prefixed antepone el alias de tabla a cada columna de una lista SELECT.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
