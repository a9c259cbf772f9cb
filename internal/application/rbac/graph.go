// Package rbac resuelve el grafo usuario → rol → permiso con consultas explícitas al repositorio.
package rbac

import (
	"context"
	"fmt"

	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

// Graph consultas y mutaciones idempotentes sobre roles y permisos.
type Graph struct {
	roles repository.RoleRepository
}

// NewGraph construye el grafo sobre el repositorio de roles.
func NewGraph(roles repository.RoleRepository) *Graph {
	return &Graph{roles: roles}
}

// RolesOf devuelve los roles activos del usuario.
func (g *Graph) RolesOf(ctx context.Context, userID string) ([]entity.Role, error) {
	roles, err := g.roles.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rbac: roles de %s: %w", userID, err)
	}
	return roles, nil
}

// PermissionsOf devuelve los permisos del usuario, sin duplicados, a través de sus roles activos.
func (g *Graph) PermissionsOf(ctx context.Context, userID string) ([]entity.Permission, error) {
	perms, err := g.roles.ListPermissionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rbac: permisos de %s: %w", userID, err)
	}
	return perms, nil
}

// HasRole indica si el usuario tiene el rol (activo).
func (g *Graph) HasRole(ctx context.Context, userID string, role entity.RoleName) (bool, error) {
	if !role.Valid() {
		return false, nil
	}
	ok, err := g.roles.UserHasRole(ctx, userID, role)
	if err != nil {
		return false, fmt.Errorf("rbac: verificar rol %s: %w", role, err)
	}
	return ok, nil
}

// IsSuperadmin atajo para HasRole(Superadmin).
func (g *Graph) IsSuperadmin(ctx context.Context, userID string) (bool, error) {
	return g.HasRole(ctx, userID, entity.RoleSuperadmin)
}

// HasPermission indica si algún rol activo del usuario concede la capacidad.
// No aplica el bypass de Superadmin; eso lo decide el guard de autorización.
func (g *Graph) HasPermission(ctx context.Context, userID string, capability entity.Capability) (bool, error) {
	if !capability.Valid() {
		return false, nil
	}
	ok, err := g.roles.UserHasPermission(ctx, userID, capability)
	if err != nil {
		return false, fmt.Errorf("rbac: verificar permiso %s: %w", capability, err)
	}
	return ok, nil
}

// AssignRole asigna el rol al usuario creando el rol si aún no existe. Repetir la asignación no es error.
func (g *Graph) AssignRole(ctx context.Context, userID string, role entity.RoleName) error {
	if !role.Valid() {
		return fmt.Errorf("rbac: asignar rol %q: %w", role, domain.ErrInvalidInput)
	}
	r, err := g.roles.EnsureRole(ctx, role, "")
	if err != nil {
		return fmt.Errorf("rbac: asegurar rol %s: %w", role, err)
	}
	if err := g.roles.AssignToUser(ctx, userID, r.ID); err != nil {
		return fmt.Errorf("rbac: asignar rol %s: %w", role, err)
	}
	return nil
}

// RevokeRole quita el rol al usuario. Si no lo tenía (o el rol no existe) no hace nada.
func (g *Graph) RevokeRole(ctx context.Context, userID string, role entity.RoleName) error {
	if !role.Valid() {
		return fmt.Errorf("rbac: quitar rol %q: %w", role, domain.ErrInvalidInput)
	}
	r, err := g.roles.GetByName(ctx, role)
	if err != nil {
		return fmt.Errorf("rbac: buscar rol %s: %w", role, err)
	}
	if r == nil {
		return nil
	}
	if err := g.roles.RemoveFromUser(ctx, userID, r.ID); err != nil {
		return fmt.Errorf("rbac: quitar rol %s: %w", role, err)
	}
	return nil
}

// GrantPermissionToRole concede la capacidad al rol; ambos se crean si faltan.
func (g *Graph) GrantPermissionToRole(ctx context.Context, role entity.RoleName, capability entity.Capability) error {
	if !role.Valid() || !capability.Valid() {
		return fmt.Errorf("rbac: conceder %q a %q: %w", capability, role, domain.ErrInvalidInput)
	}
	r, err := g.roles.EnsureRole(ctx, role, "")
	if err != nil {
		return fmt.Errorf("rbac: asegurar rol %s: %w", role, err)
	}
	p, err := g.roles.EnsurePermission(ctx, capability, "")
	if err != nil {
		return fmt.Errorf("rbac: asegurar permiso %s: %w", capability, err)
	}
	if err := g.roles.GrantPermission(ctx, r.ID, p.ID); err != nil {
		return fmt.Errorf("rbac: conceder %s a %s: %w", capability, role, err)
	}
	return nil
}

// RevokePermissionFromRole retira la capacidad del rol. Si no estaba concedida no hace nada.
func (g *Graph) RevokePermissionFromRole(ctx context.Context, role entity.RoleName, capability entity.Capability) error {
	if !role.Valid() || !capability.Valid() {
		return fmt.Errorf("rbac: retirar %q de %q: %w", capability, role, domain.ErrInvalidInput)
	}
	r, err := g.roles.GetByName(ctx, role)
	if err != nil {
		return fmt.Errorf("rbac: buscar rol %s: %w", role, err)
	}
	if r == nil {
		return nil
	}
	p, err := g.roles.EnsurePermission(ctx, capability, "")
	if err != nil {
		return fmt.Errorf("rbac: asegurar permiso %s: %w", capability, err)
	}
	if err := g.roles.RevokePermission(ctx, r.ID, p.ID); err != nil {
		return fmt.Errorf("rbac: retirar %s de %s: %w", capability, role, err)
	}
	return nil
}
