package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

// RoleRepo grafo usuario → rol → permiso sobre las tablas roles, permissions, user_roles y role_permissions.
// Las mutaciones usan ON CONFLICT DO NOTHING para ser idempotentes.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador.
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

func collectRoles(rows pgx.Rows, err error) ([]entity.Role, error) {
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Role, error) {
		var r entity.Role
		err := row.Scan(&r.ID, &r.Name, &r.Description, &r.IsActive)
		return r, err
	})
}

func collectPermissions(rows pgx.Rows, err error) ([]entity.Permission, error) {
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Permission, error) {
		var p entity.Permission
		err := row.Scan(&p.ID, &p.Name, &p.Description)
		return p, err
	})
}

// EnsureRole inserta el rol si no existe y lo devuelve.
func (r *RoleRepo) EnsureRole(ctx context.Context, name entity.RoleName, description string) (*entity.Role, error) {
	var role entity.Role
	err := r.q.QueryRow(ctx, `
		INSERT INTO roles (id, name, description, is_active) VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (name) DO UPDATE SET description = CASE WHEN $3 = '' THEN roles.description ELSE EXCLUDED.description END
		RETURNING id::text, name, description, is_active`,
		uuid.NewString(), string(name), description,
	).Scan(&role.ID, &role.Name, &role.Description, &role.IsActive)
	if err != nil {
		return nil, writeErr("ensure role", err)
	}
	return &role, nil
}

// GetByName obtiene un rol por nombre.
func (r *RoleRepo) GetByName(ctx context.Context, name entity.RoleName) (*entity.Role, error) {
	var role entity.Role
	err := r.q.QueryRow(ctx, `SELECT id::text, name, description, is_active FROM roles WHERE name = $1`, string(name)).
		Scan(&role.ID, &role.Name, &role.Description, &role.IsActive)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &role, nil
}

// List devuelve todos los roles.
func (r *RoleRepo) List(ctx context.Context) ([]entity.Role, error) {
	return collectRoles(r.q.Query(ctx, `SELECT id::text, name, description, is_active FROM roles ORDER BY name`))
}

// EnsurePermission inserta el permiso si no existe y lo devuelve.
func (r *RoleRepo) EnsurePermission(ctx context.Context, name entity.Capability, description string) (*entity.Permission, error) {
	var p entity.Permission
	err := r.q.QueryRow(ctx, `
		INSERT INTO permissions (id, name, description) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET description = CASE WHEN $3 = '' THEN permissions.description ELSE EXCLUDED.description END
		RETURNING id::text, name, description`,
		uuid.NewString(), string(name), description,
	).Scan(&p.ID, &p.Name, &p.Description)
	if err != nil {
		return nil, writeErr("ensure permission", err)
	}
	return &p, nil
}

// ListPermissions devuelve el catálogo de permisos.
func (r *RoleRepo) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	return collectPermissions(r.q.Query(ctx, `SELECT id::text, name, description FROM permissions ORDER BY name`))
}

// ListPermissionsByRole permisos concedidos a un rol.
func (r *RoleRepo) ListPermissionsByRole(ctx context.Context, role entity.RoleName) ([]entity.Permission, error) {
	return collectPermissions(r.q.Query(ctx, `
		SELECT p.id::text, p.name, p.description
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN roles r ON r.id = rp.role_id
		WHERE r.name = $1
		ORDER BY p.name`, string(role)))
}

// ListByUser roles activos del usuario.
func (r *RoleRepo) ListByUser(ctx context.Context, userID string) ([]entity.Role, error) {
	return collectRoles(r.q.Query(ctx, `
		SELECT r.id::text, r.name, r.description, r.is_active
		FROM roles r JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1 AND r.is_active
		ORDER BY r.name`, userID))
}

// ListPermissionsByUser permisos del usuario a través de sus roles activos, sin duplicados.
func (r *RoleRepo) ListPermissionsByUser(ctx context.Context, userID string) ([]entity.Permission, error) {
	return collectPermissions(r.q.Query(ctx, `
		SELECT DISTINCT p.id::text, p.name, p.description
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN roles r ON r.id = rp.role_id AND r.is_active
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY p.name`, userID))
}

// UserHasRole indica si el usuario tiene el rol activo.
func (r *RoleRepo) UserHasRole(ctx context.Context, userID string, role entity.RoleName) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = $1 AND r.name = $2 AND r.is_active)`, userID, string(role)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("user has role: %w", err)
	}
	return ok, nil
}

// UserHasPermission indica si algún rol activo del usuario concede la capacidad.
func (r *RoleRepo) UserHasPermission(ctx context.Context, userID string, capability entity.Capability) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM user_roles ur
			JOIN roles r ON r.id = ur.role_id AND r.is_active
			JOIN role_permissions rp ON rp.role_id = r.id
			JOIN permissions p ON p.id = rp.permission_id
			WHERE ur.user_id = $1 AND p.name = $2)`, userID, string(capability)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("user has permission: %w", err)
	}
	return ok, nil
}

// AssignToUser asigna el rol (idempotente).
func (r *RoleRepo) AssignToUser(ctx context.Context, userID, roleID string) error {
	_, err := r.q.Exec(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, roleID)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

// RemoveFromUser quita el rol (idempotente).
func (r *RoleRepo) RemoveFromUser(ctx context.Context, userID, roleID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return fmt.Errorf("remove role: %w", err)
	}
	return nil
}

// GrantPermission concede el permiso al rol (idempotente).
func (r *RoleRepo) GrantPermission(ctx context.Context, roleID, permissionID string) error {
	_, err := r.q.Exec(ctx, `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("grant permission: %w", err)
	}
	return nil
}

// RevokePermission retira el permiso del rol (idempotente).
func (r *RoleRepo) RevokePermission(ctx context.Context, roleID, permissionID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("revoke permission: %w", err)
	}
	return nil
}
