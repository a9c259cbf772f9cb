package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/application/rbac"
	"github.com/windi9/dwc-pos/internal/application/usecase"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/infrastructure/pdf"
	"github.com/windi9/dwc-pos/internal/infrastructure/seed"
	apphttp "github.com/windi9/dwc-pos/internal/interfaces/http"
	"github.com/windi9/dwc-pos/internal/testutil/memstore"
	"github.com/windi9/dwc-pos/pkg/jwt"
	"github.com/windi9/dwc-pos/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testJWTSecret = "test-secret-key-for-unit-tests"

// captureNotifier guarda enlaces y códigos en lugar de enviarlos.
type captureNotifier struct {
	mu    sync.Mutex
	links []string
	codes []string
}

func (n *captureNotifier) SendVerificationLink(_ context.Context, _, link string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.links = append(n.links, link)
}

func (n *captureNotifier) SendVerificationCode(_ context.Context, _, code string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes = append(n.codes, code)
}

func (n *captureNotifier) lastCode(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.codes, "no se envió ningún código")
	return n.codes[len(n.codes)-1]
}

func (n *captureNotifier) lastLinkToken(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.links, "no se envió ningún enlace")
	u, err := url.Parse(n.links[len(n.links)-1])
	require.NoError(t, err)
	return u.Query().Get("token")
}

// harness aplicación Fiber completa sobre el almacén en memoria con el catálogo RBAC sembrado.
type harness struct {
	app       *fiber.App
	store     *memstore.Store
	tokens    *jwt.Issuer
	creds     *auth.CredentialStore
	graph     *rbac.Graph
	notifier  *captureNotifier
	companies *usecase.CompanyUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()
	iss, err := jwt.NewIssuer(jwt.Config{Secret: testJWTSecret, Issuer: "dwc-pos-test"})
	require.NoError(t, err)

	h := &harness{
		store:    s,
		tokens:   iss,
		creds:    auth.NewCredentialStore(bcrypt.MinCost),
		graph:    rbac.NewGraph(s.Roles()),
		notifier: &captureNotifier{},
	}

	cat, err := seed.DefaultCatalog()
	require.NoError(t, err)
	_, err = seed.NewSeeder(s.Users(), s.Roles(), s.TxRunner(), h.creds, nil, logger.Nop()).Run(ctx, cat, seed.Superadmin{})
	require.NoError(t, err)

	guard := auth.NewGuard(s.Users(), s.Roles(), iss, nil)
	authUC := auth.NewAuthUseCase(auth.Deps{
		Users:       s.Users(),
		Roles:       s.Roles(),
		LoginCodes:  s.Verifications(),
		Tx:          s.TxRunner(),
		Credentials: h.creds,
		Tokens:      iss,
		Notifier:    h.notifier,
	}, auth.Config{
		BackOfficeTTL: time.Hour,
		POSTTL:        10 * time.Minute,
		ActivationTTL: 24 * time.Hour,
		LoginCodeTTL:  10 * time.Minute,
		PublicBaseURL: "https://pos.example.com",
	})
	h.companies = usecase.NewCompanyUseCase(s.Companies())

	h.app = fiber.New()
	apphttp.Router(h.app, apphttp.RouterDeps{
		AuthUC:    authUC,
		Guard:     guard,
		CompanyUC: h.companies,
		OutletUC:  usecase.NewOutletUseCase(s.Outlets(), s.Companies()),
		UserUC: usecase.NewUserUseCase(usecase.UserDeps{
			Users:       s.Users(),
			Roles:       s.Roles(),
			Companies:   s.Companies(),
			Outlets:     s.Outlets(),
			Tx:          s.TxRunner(),
			Credentials: h.creds,
			Authorizer:  guard,
		}),
		UOMUC:       usecase.NewUOMUseCase(s.UOMs(), s.Companies()),
		ProductUC:   usecase.NewProductUseCase(s.Products(), s.UOMs(), s.Companies(), pdf.NewPriceListGenerator()),
		RoleUC:      usecase.NewRoleUseCase(s.Roles()),
		CORSOrigins: "*",
	})
	return h
}

// company crea una empresa activa y devuelve su id.
func (h *harness) company(t *testing.T, name string) string {
	t.Helper()
	out, err := h.companies.Create(context.Background(), dto.CreateCompanyRequest{Name: name})
	require.NoError(t, err)
	return out.ID
}

// account crea una cuenta verificada con password "longenough1" y el rol indicado.
// companyID vacío crea una cuenta global.
func (h *harness) account(t *testing.T, username, companyID string, role entity.RoleName) *entity.User {
	t.Helper()
	ctx := context.Background()
	u := &entity.User{
		ID:            username + "-id",
		Username:      username,
		Email:         username + "@example.com",
		IsActive:      true,
		EmailVerified: true,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if companyID != "" {
		cid := companyID
		u.CompanyID = &cid
	}
	require.NoError(t, h.creds.SetPassword(u, "longenough1"))
	require.NoError(t, h.store.Users().Create(ctx, u))
	require.NoError(t, h.graph.AssignRole(ctx, u.ID, role))
	return u
}

// bearer emite un token de back office para la cuenta.
func (h *harness) bearer(t *testing.T, u *entity.User) string {
	t.Helper()
	tok, _, err := h.tokens.Issue(jwt.Claims{UserID: u.ID, Username: u.Username, Channel: jwt.ChannelBackOffice}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

// do lanza la petición; body se serializa como JSON si no es nil.
func (h *harness) do(t *testing.T, method, path, authHeader string, body any) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if authHeader != "" {
		req.Header.Set(fiber.HeaderAuthorization, authHeader)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (h *harness) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
