package usecase

import (
	"context"

	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/application/rbac"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

// RoleUseCase consulta el catálogo de roles y administra sus permisos.
// El conjunto de roles es cerrado: no se crean roles nuevos desde la API.
type RoleUseCase struct {
	roles repository.RoleRepository
	graph *rbac.Graph
}

// NewRoleUseCase construye el caso de uso.
func NewRoleUseCase(roles repository.RoleRepository) *RoleUseCase {
	return &RoleUseCase{roles: roles, graph: rbac.NewGraph(roles)}
}

// ListRoles devuelve todos los roles registrados.
func (uc *RoleUseCase) ListRoles(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := uc.roles.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.RoleResponse{ID: r.ID, Name: string(r.Name), Description: r.Description, IsActive: r.IsActive})
	}
	return out, nil
}

// ListPermissions devuelve el catálogo de permisos.
func (uc *RoleUseCase) ListPermissions(ctx context.Context) ([]dto.PermissionResponse, error) {
	perms, err := uc.roles.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	return toPermissionResponses(perms), nil
}

// RolePermissions devuelve los permisos concedidos a un rol.
func (uc *RoleUseCase) RolePermissions(ctx context.Context, role string) (*dto.RolePermissionsResponse, error) {
	name, err := entity.ParseRoleName(role)
	if err != nil {
		return nil, err
	}
	perms, err := uc.roles.ListPermissionsByRole(ctx, name)
	if err != nil {
		return nil, err
	}
	return &dto.RolePermissionsResponse{Role: string(name), Permissions: toPermissionResponses(perms)}, nil
}

// Grant concede una capacidad a un rol (idempotente).
func (uc *RoleUseCase) Grant(ctx context.Context, role, capability string) (*dto.RolePermissionsResponse, error) {
	name, c, err := parseGrant(role, capability)
	if err != nil {
		return nil, err
	}
	if err := uc.graph.GrantPermissionToRole(ctx, name, c); err != nil {
		return nil, err
	}
	return uc.RolePermissions(ctx, role)
}

// Revoke retira una capacidad de un rol (idempotente).
func (uc *RoleUseCase) Revoke(ctx context.Context, role, capability string) (*dto.RolePermissionsResponse, error) {
	name, c, err := parseGrant(role, capability)
	if err != nil {
		return nil, err
	}
	if err := uc.graph.RevokePermissionFromRole(ctx, name, c); err != nil {
		return nil, err
	}
	return uc.RolePermissions(ctx, role)
}

func parseGrant(role, capability string) (entity.RoleName, entity.Capability, error) {
	name, err := entity.ParseRoleName(role)
	if err != nil {
		return "", "", err
	}
	c, err := entity.ParseCapability(capability)
	if err != nil {
		return "", "", err
	}
	return name, c, nil
}

func toPermissionResponses(perms []entity.Permission) []dto.PermissionResponse {
	out := make([]dto.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, dto.PermissionResponse{ID: p.ID, Name: string(p.Name), Description: p.Description})
	}
	return out
}
