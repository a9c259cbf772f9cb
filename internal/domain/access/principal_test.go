package access_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/access"
	"github.com/windi9/dwc-pos/internal/domain/entity"
)

func strPtr(s string) *string { return &s }

func TestCanAccessCompany_AislamientoEntreTenants(t *testing.T) {
	p := &access.Principal{User: &entity.User{ID: "u1", CompanyID: strPtr("X")}}

	assert.True(t, p.CanAccessCompany("X"))
	assert.False(t, p.CanAccessCompany("Y"), "un usuario de X nunca accede a Y")
	assert.False(t, p.CanAccessCompany(""), "un recurso sin tenant no es accesible para un usuario normal")
	assert.ErrorIs(t, p.EnsureCompany("Y"), domain.ErrForbidden)
}

func TestCanAccessCompany_SuperadminEsGlobal(t *testing.T) {
	p := &access.Principal{User: &entity.User{ID: "root"}, Superadmin: true}

	assert.True(t, p.CanAccessCompany("X"))
	assert.True(t, p.CanAccessCompany("Y"))
	assert.NoError(t, p.EnsureCompany("Z"))
}

func TestCanAccessCompany_CuentaSinTenantNoEsGlobal(t *testing.T) {
	p := &access.Principal{User: &entity.User{ID: "u2"}}
	assert.False(t, p.CanAccessCompany("X"))
}

func TestScopeCompany(t *testing.T) {
	user := &access.Principal{User: &entity.User{ID: "u1", CompanyID: strPtr("X")}}

	got, err := user.ScopeCompany("")
	require.NoError(t, err)
	assert.Equal(t, "X", got, "sin filtro se fija al tenant propio")

	_, err = user.ScopeCompany("Y")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	root := &access.Principal{User: &entity.User{ID: "root"}, Superadmin: true}
	got, err = root.ScopeCompany("")
	require.NoError(t, err)
	assert.Empty(t, got, "el superadmin puede listar todos los tenants")

	orphan := &access.Principal{User: &entity.User{ID: "u3"}}
	_, err = orphan.ScopeCompany("")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
