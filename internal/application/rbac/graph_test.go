package rbac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windi9/dwc-pos/internal/application/rbac"
	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/testutil/memstore"
)

func TestAssignRole_Idempotente(t *testing.T) {
	store := memstore.New()
	g := rbac.NewGraph(store.Roles())
	ctx := context.Background()

	require.NoError(t, g.AssignRole(ctx, "u1", entity.RoleAdmin))
	require.NoError(t, g.AssignRole(ctx, "u1", entity.RoleAdmin))

	roles, err := g.RolesOf(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, entity.RoleAdmin, roles[0].Name)

	all, err := store.Roles().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "el rol se crea una sola vez")
}

func TestHasPermission_ATravesDeRoles(t *testing.T) {
	store := memstore.New()
	g := rbac.NewGraph(store.Roles())
	ctx := context.Background()

	require.NoError(t, g.GrantPermissionToRole(ctx, entity.RoleAdmin, entity.CapCreateUser))
	require.NoError(t, g.GrantPermissionToRole(ctx, entity.RoleEmployee, entity.CapProcessSale))
	require.NoError(t, g.GrantPermissionToRole(ctx, entity.RoleEmployee, entity.CapCreateUser))
	require.NoError(t, g.AssignRole(ctx, "u1", entity.RoleAdmin))
	require.NoError(t, g.AssignRole(ctx, "u1", entity.RoleEmployee))

	ok, err := g.HasPermission(ctx, "u1", entity.CapProcessSale)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.HasPermission(ctx, "u1", entity.CapDeleteCompany)
	require.NoError(t, err)
	assert.False(t, ok)

	perms, err := g.PermissionsOf(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, perms, 2, "create_user aparece una sola vez aunque lo concedan dos roles")

	ok, err = g.HasPermission(ctx, "u1", entity.Capability("inventado"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRolInactivoNoConcedeNada(t *testing.T) {
	store := memstore.New()
	g := rbac.NewGraph(store.Roles())
	ctx := context.Background()

	require.NoError(t, g.GrantPermissionToRole(ctx, entity.RoleAdmin, entity.CapReadUser))
	require.NoError(t, g.AssignRole(ctx, "u1", entity.RoleAdmin))
	store.Roles().SetRoleActive(entity.RoleAdmin, false)

	ok, err := g.HasRole(ctx, "u1", entity.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.HasPermission(ctx, "u1", entity.CapReadUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSuperadminNoTieneBypassEnElGrafo(t *testing.T) {
	store := memstore.New()
	g := rbac.NewGraph(store.Roles())
	ctx := context.Background()

	require.NoError(t, g.AssignRole(ctx, "root", entity.RoleSuperadmin))
	super, err := g.IsSuperadmin(ctx, "root")
	require.NoError(t, err)
	assert.True(t, super)

	ok, err := g.HasPermission(ctx, "root", entity.CapManageRoles)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevocaciones(t *testing.T) {
	store := memstore.New()
	g := rbac.NewGraph(store.Roles())
	ctx := context.Background()

	require.NoError(t, g.RevokeRole(ctx, "u1", entity.RoleAdmin), "rol inexistente: no-op")

	require.NoError(t, g.GrantPermissionToRole(ctx, entity.RoleAdmin, entity.CapReadUser))
	require.NoError(t, g.AssignRole(ctx, "u1", entity.RoleAdmin))
	require.NoError(t, g.RevokeRole(ctx, "u1", entity.RoleAdmin))
	require.NoError(t, g.RevokeRole(ctx, "u1", entity.RoleAdmin))

	ok, err := g.HasRole(ctx, "u1", entity.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.RevokePermissionFromRole(ctx, entity.RoleAdmin, entity.CapReadUser))
	perms, err := store.Roles().ListPermissionsByRole(ctx, entity.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestEntradasDesconocidas(t *testing.T) {
	g := rbac.NewGraph(memstore.New().Roles())
	ctx := context.Background()

	assert.ErrorIs(t, g.AssignRole(ctx, "u1", entity.RoleName("Root")), domain.ErrInvalidInput)
	assert.ErrorIs(t, g.RevokeRole(ctx, "u1", entity.RoleName("")), domain.ErrInvalidInput)
	assert.ErrorIs(t, g.GrantPermissionToRole(ctx, entity.RoleAdmin, "volar"), domain.ErrInvalidInput)
}
