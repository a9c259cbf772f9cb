package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	apphttp "github.com/windi9/dwc-pos/internal/interfaces/http"
	"github.com/windi9/dwc-pos/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAuthMiddleware_FormatoInvalido_Retorna401(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, "/api/v1/auth/me", "Token abc", nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, "/api/v1/auth/me", "Bearer token.invalido.aqui", nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAuthMiddleware_TokenDeOtroSecret_Retorna401(t *testing.T) {
	h := newHarness(t)
	u := h.account(t, "ana", "", entity.RoleEmployee)

	other, err := jwt.NewIssuer(jwt.Config{Secret: "otro-secret-completamente-distinto", Issuer: "dwc-pos-test"})
	require.NoError(t, err)
	tok, _, err := other.Issue(jwt.Claims{UserID: u.ID, Channel: jwt.ChannelBackOffice}, time.Hour)
	require.NoError(t, err)

	resp := h.do(t, http.MethodGet, "/api/v1/auth/me", "Bearer "+tok, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "secret incorrecto debe invalidar el token")
}

func TestAuthMiddleware_CuentaDesactivadaDespuesDelToken_Retorna403(t *testing.T) {
	h := newHarness(t)
	u := h.account(t, "ana", "", entity.RoleEmployee)
	token := h.bearer(t, u)

	u.IsActive = false
	require.NoError(t, h.store.Users().Update(context.Background(), u))

	resp := h.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "INACTIVE_ACCOUNT", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAuthMiddleware_CuentaBorradaDespuesDelToken_Retorna401(t *testing.T) {
	h := newHarness(t)
	u := h.account(t, "ana", "", entity.RoleEmployee)
	token := h.bearer(t, u)

	require.NoError(t, h.store.Users().SoftDelete(context.Background(), u.ID))

	resp := h.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ExtraePrincipal(t *testing.T) {
	h := newHarness(t)
	companyID := h.company(t, "Acme")
	u := h.account(t, "ana", companyID, entity.RoleAdmin)

	guard := auth.NewGuard(h.store.Users(), h.store.Roles(), h.tokens, nil)
	app := fiber.New()
	app.Get("/whoami", apphttp.AuthMiddleware(guard), func(c *fiber.Ctx) error {
		p := apphttp.GetPrincipal(c)
		return c.JSON(fiber.Map{
			"user_id":    p.UserID(),
			"company_id": p.CompanyID(),
			"channel":    string(p.Channel),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, h.bearer(t, u))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, u.ID, body["user_id"])
	assert.Equal(t, companyID, body["company_id"])
	assert.Equal(t, "backoffice", body["channel"])
}

// ──────────────────────────────────────────────────────────────────────────────
// RequirePermission
// ──────────────────────────────────────────────────────────────────────────────

func TestRequirePermission_EmpleadoSinPermiso_Retorna403(t *testing.T) {
	h := newHarness(t)
	companyID := h.company(t, "Acme")
	u := h.account(t, "emp", companyID, entity.RoleEmployee)

	resp := h.do(t, http.MethodPost, "/api/v1/uoms", h.bearer(t, u), dto.CreateUOMRequest{Name: "Unidad", Symbol: "und"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "FORBIDDEN", body.Code)
	assert.Contains(t, body.Message, "create_uom")
}

func TestRequirePermission_EmpleadoConPermisoDeLectura_Pasa(t *testing.T) {
	h := newHarness(t)
	companyID := h.company(t, "Acme")
	u := h.account(t, "emp", companyID, entity.RoleEmployee)

	resp := h.do(t, http.MethodGet, "/api/v1/products", h.bearer(t, u), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequirePermission_SuperadminSiemprePasa(t *testing.T) {
	h := newHarness(t)
	root := h.account(t, "root", "", entity.RoleSuperadmin)

	resp := h.do(t, http.MethodPost, "/api/v1/companies", h.bearer(t, root), dto.CreateCompanyRequest{Name: "Nueva"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRequirePermission_PermisoRetiradoSeAplicaSinNuevoToken(t *testing.T) {
	h := newHarness(t)
	companyID := h.company(t, "Acme")
	u := h.account(t, "emp", companyID, entity.RoleEmployee)
	token := h.bearer(t, u)

	resp := h.do(t, http.MethodGet, "/api/v1/products", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, h.graph.RevokePermissionFromRole(context.Background(), entity.RoleEmployee, entity.CapReadProduct))

	resp = h.do(t, http.MethodGet, "/api/v1/products", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
