package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/application/rbac"
	"github.com/windi9/dwc-pos/internal/application/usecase"
	"github.com/windi9/dwc-pos/internal/domain/access"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/testutil/memstore"
	"github.com/windi9/dwc-pos/pkg/jwt"
)

type fixture struct {
	store     *memstore.Store
	creds     *auth.CredentialStore
	guard     *auth.Guard
	graph     *rbac.Graph
	companies *usecase.CompanyUseCase
	outlets   *usecase.OutletUseCase
	uoms      *usecase.UOMUseCase
	products  *usecase.ProductUseCase
	users     *usecase.UserUseCase
	roles     *usecase.RoleUseCase
	pdf       *fakePDF
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	iss, err := jwt.NewIssuer(jwt.Config{Secret: "secret-de-pruebas"})
	require.NoError(t, err)
	f := &fixture{
		store: s,
		creds: auth.NewCredentialStore(bcrypt.MinCost),
		graph: rbac.NewGraph(s.Roles()),
		pdf:   &fakePDF{},
	}
	f.guard = auth.NewGuard(s.Users(), s.Roles(), iss, nil)
	f.companies = usecase.NewCompanyUseCase(s.Companies())
	f.outlets = usecase.NewOutletUseCase(s.Outlets(), s.Companies())
	f.uoms = usecase.NewUOMUseCase(s.UOMs(), s.Companies())
	f.products = usecase.NewProductUseCase(s.Products(), s.UOMs(), s.Companies(), f.pdf)
	f.users = usecase.NewUserUseCase(usecase.UserDeps{
		Users:       s.Users(),
		Roles:       s.Roles(),
		Companies:   s.Companies(),
		Outlets:     s.Outlets(),
		Tx:          s.TxRunner(),
		Credentials: f.creds,
		Authorizer:  f.guard,
	})
	f.roles = usecase.NewRoleUseCase(s.Roles())
	return f
}

func (f *fixture) superadmin(t *testing.T) *access.Principal {
	t.Helper()
	u := &entity.User{ID: "root", Username: "root", Email: "root@x.com", IsActive: true}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	require.NoError(t, f.graph.AssignRole(context.Background(), u.ID, entity.RoleSuperadmin))
	return &access.Principal{User: u, Channel: access.ChannelBackOffice, Superadmin: true}
}

// member crea una cuenta del tenant companyID con el rol indicado.
func (f *fixture) member(t *testing.T, username, companyID string, role entity.RoleName) *access.Principal {
	t.Helper()
	cid := companyID
	u := &entity.User{ID: username + "-id", Username: username, Email: username + "@x.com", CompanyID: &cid, IsActive: true}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	require.NoError(t, f.graph.AssignRole(context.Background(), u.ID, role))
	return &access.Principal{User: u, Channel: access.ChannelBackOffice}
}

func (f *fixture) company(t *testing.T, name string) string {
	t.Helper()
	out, err := f.companies.Create(context.Background(), dto.CreateCompanyRequest{Name: name})
	require.NoError(t, err)
	return out.ID
}

func (f *fixture) uom(t *testing.T, p *access.Principal, companyID, symbol string) string {
	t.Helper()
	out, err := f.uoms.Create(context.Background(), p, dto.CreateUOMRequest{CompanyID: companyID, Name: "Unidad " + symbol, Symbol: symbol})
	require.NoError(t, err)
	return out.ID
}

func ptr[T any](v T) *T { return &v }
