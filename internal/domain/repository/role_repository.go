package repository

import (
	"context"

	"github.com/windi9/dwc-pos/internal/domain/entity"
)

// RoleRepository expone el grafo usuario → rol → permiso mediante consultas explícitas.
// Las mutaciones son idempotentes: asignar lo ya asignado o quitar lo ausente no es error.
type RoleRepository interface {
	EnsureRole(ctx context.Context, name entity.RoleName, description string) (*entity.Role, error)
	GetByName(ctx context.Context, name entity.RoleName) (*entity.Role, error)
	List(ctx context.Context) ([]entity.Role, error)

	EnsurePermission(ctx context.Context, name entity.Capability, description string) (*entity.Permission, error)
	ListPermissions(ctx context.Context) ([]entity.Permission, error)
	ListPermissionsByRole(ctx context.Context, role entity.RoleName) ([]entity.Permission, error)

	ListByUser(ctx context.Context, userID string) ([]entity.Role, error)
	ListPermissionsByUser(ctx context.Context, userID string) ([]entity.Permission, error)
	UserHasRole(ctx context.Context, userID string, role entity.RoleName) (bool, error)
	UserHasPermission(ctx context.Context, userID string, capability entity.Capability) (bool, error)

	AssignToUser(ctx context.Context, userID, roleID string) error
	RemoveFromUser(ctx context.Context, userID, roleID string) error
	GrantPermission(ctx context.Context, roleID, permissionID string) error
	RevokePermission(ctx context.Context, roleID, permissionID string) error
}
