package seed_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	"golang.org/x/crypto/bcrypt"

	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/internal/application/rbac"
	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/infrastructure/seed"
	"github.com/windi9/dwc-pos/internal/testutil/memstore"
	"github.com/windi9/dwc-pos/pkg/logger"
)

func newSeeder(st *memstore.Store) *seed.Seeder {
	return seed.NewSeeder(st.Users(), st.Roles(), st.TxRunner(), auth.NewCredentialStore(bcrypt.MinCost), nil, logger.Nop())
}

func TestDefaultCatalog(t *testing.T) {
	c := qt.New(t)

	cat, err := seed.DefaultCatalog()
	c.Assert(err, qt.IsNil)
	c.Assert(cat.Roles, qt.HasLen, len(entity.AllRoles()))

	declared := map[string]bool{}
	for _, p := range cat.Permissions {
		declared[p.Name] = true
	}
	for _, capability := range []entity.Capability{entity.CapCreateUser, entity.CapProcessSale, entity.CapManageRoles, entity.CapDeleteUOM} {
		c.Assert(declared[string(capability)], qt.IsTrue, qt.Commentf("falta %s", capability))
	}

	for _, r := range cat.Roles {
		if r.Name == string(entity.RoleSuperadmin) {
			c.Assert(cat.GrantsOf(r), qt.HasLen, len(cat.Permissions))
		}
	}
}

func TestParseCatalog_Errores(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"yaml roto", "roles: [", ".*catálogo inválido.*"},
		{"permiso desconocido", "permissions:\n  - name: volar\n", ".*permiso desconocido.*"},
		{"rol desconocido", "roles:\n  - name: Jefe\n", ".*rol desconocido.*"},
		{"permiso duplicado", "permissions:\n  - name: read_user\n  - name: read_user\n", ".*duplicado.*"},
		{"concesión sin declarar", "permissions:\n  - name: read_user\nroles:\n  - name: Admin\n    grants: [create_user]\n", ".*no está declarado.*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			_, err := seed.ParseCatalog([]byte(tt.yaml))
			c.Assert(err, qt.ErrorMatches, tt.want)
		})
	}
}

// ────────────────────────────────────────────────────────────────

func TestSeeder_AplicaCatalogoIdempotente(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	st := memstore.New()
	cat, err := seed.DefaultCatalog()
	c.Assert(err, qt.IsNil)

	first, err := newSeeder(st).Run(ctx, cat, seed.Superadmin{})
	c.Assert(err, qt.IsNil)
	c.Assert(first.SuperadminCreated, qt.IsFalse)

	_, err = newSeeder(st).Run(ctx, cat, seed.Superadmin{})
	c.Assert(err, qt.IsNil)

	roles, err := st.Roles().List(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(roles, qt.HasLen, 4)

	perms, err := st.Roles().ListPermissions(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(perms, qt.HasLen, len(cat.Permissions))

	employee, err := st.Roles().ListPermissionsByRole(ctx, entity.RoleEmployee)
	c.Assert(err, qt.IsNil)
	names := map[entity.Capability]bool{}
	for _, p := range employee {
		names[p.Name] = true
	}
	c.Assert(names[entity.CapProcessSale], qt.IsTrue)
	c.Assert(names[entity.CapDeleteProduct], qt.IsFalse)
}

func TestSeeder_CreaSuperadminUnaVez(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	st := memstore.New()
	cat, err := seed.DefaultCatalog()
	c.Assert(err, qt.IsNil)
	admin := seed.Superadmin{Username: "Root", Email: "Root@Example.com", Password: "supersecreto123"}

	rep, err := newSeeder(st).Run(ctx, cat, admin)
	c.Assert(err, qt.IsNil)
	c.Assert(rep.SuperadminCreated, qt.IsTrue)

	u, err := st.Users().GetByID(ctx, rep.SuperadminID)
	c.Assert(err, qt.IsNil)
	c.Assert(u.Username, qt.Equals, "root")
	c.Assert(u.Email, qt.Equals, "root@example.com")
	c.Assert(u.EmailVerified, qt.IsTrue)

	ok, err := rbac.NewGraph(st.Roles()).IsSuperadmin(ctx, u.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	again, err := newSeeder(st).Run(ctx, cat, seed.Superadmin{Username: "otro", Email: "otro@example.com", Password: "supersecreto123"})
	c.Assert(err, qt.IsNil)
	c.Assert(again.SuperadminCreated, qt.IsFalse)
}

func TestSeeder_SuperadminConIdentidadOcupada(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	st := memstore.New()
	cat, err := seed.DefaultCatalog()
	c.Assert(err, qt.IsNil)

	c.Assert(st.Users().Create(ctx, &entity.User{ID: "u-1", Username: "root", Email: "ana@example.com", IsActive: true}), qt.IsNil)

	_, err = newSeeder(st).Run(ctx, cat, seed.Superadmin{Username: "root", Email: "root@example.com", Password: "supersecreto123"})
	c.Assert(err, qt.ErrorIs, domain.ErrConflict)
}
