package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/application/rbac"
	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/access"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
	"github.com/windi9/dwc-pos/pkg/logger"
)

// Authorizer exige una capacidad al principal (lo implementa *auth.Guard).
type Authorizer interface {
	Require(ctx context.Context, p *access.Principal, capability entity.Capability) error
}

// UserDeps dependencias del caso de uso de usuarios.
type UserDeps struct {
	Users       repository.UserRepository
	Roles       repository.RoleRepository
	Companies   repository.CompanyRepository
	Outlets     repository.OutletRepository
	Tx          auth.TxRunner
	Credentials *auth.CredentialStore
	Authorizer  Authorizer
	Log         *logger.Logger
}

// UserUseCase administración de cuentas: alta, consulta, edición, baja, PIN y roles.
type UserUseCase struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	outlets   repository.OutletRepository
	graph     *rbac.Graph
	tx        auth.TxRunner
	creds     *auth.CredentialStore
	authz     Authorizer
	log       *logger.Logger
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(deps UserDeps) *UserUseCase {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &UserUseCase{
		users:     deps.Users,
		companies: deps.Companies,
		outlets:   deps.Outlets,
		graph:     rbac.NewGraph(deps.Roles),
		tx:        deps.Tx,
		creds:     deps.Credentials,
		authz:     deps.Authorizer,
		log:       log.Named("users"),
	}
}

// Create da de alta una cuenta desde el back office. Cuenta y roles iniciales se guardan juntos.
func (uc *UserUseCase) Create(ctx context.Context, p *access.Principal, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username, err := auth.NormalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email, err := auth.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	roles, err := uc.parseRoles(p, in.Roles)
	if err != nil {
		return nil, err
	}

	companyID := derefString(in.CompanyID)
	if companyID == "" && !p.Superadmin {
		companyID = p.CompanyID()
	}
	if companyID == "" && !p.Superadmin {
		return nil, domain.ErrForbidden
	}
	if companyID != "" {
		if err := p.EnsureCompany(companyID); err != nil {
			return nil, err
		}
		if _, err := requireActiveCompany(ctx, uc.companies, companyID); err != nil {
			return nil, err
		}
	}
	outletID := derefString(in.OutletID)
	if err := uc.requireOutlet(ctx, companyID, outletID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		FullName:      auth.NormalizeName(in.FullName),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		CompanyID:     optionalString(companyID),
		OutletID:      optionalString(outletID),
		IsActive:      true,
		EmailVerified: in.EmailVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.creds.SetPassword(user, in.Password); err != nil {
		return nil, err
	}
	if in.Pin != nil {
		if err := uc.creds.SetPin(user, *in.Pin); err != nil {
			return nil, err
		}
	}
	if err := auth.EnsureIdentityAvailable(ctx, uc.users, username, email, ""); err != nil {
		return nil, err
	}

	err = uc.tx.RunAccountTx(ctx, func(users repository.UserRepository, rr repository.RoleRepository, _ repository.VerificationRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		g := rbac.NewGraph(rr)
		for _, r := range roles {
			if err := g.AssignRole(ctx, user.ID, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("created_by", p.UserID()).Msg("usuario creado")
	return uc.response(ctx, user)
}

// GetByID obtiene una cuenta visible para el principal.
func (uc *UserUseCase) GetByID(ctx context.Context, p *access.Principal, id string) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return uc.response(ctx, user)
}

// List lista cuentas del tenant con filtros.
func (uc *UserUseCase) List(ctx context.Context, p *access.Principal, q dto.UserListQuery, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.Normalize()
	scope, err := p.ScopeCompany(q.CompanyID)
	if err != nil {
		return nil, err
	}
	filter := repository.UserFilter{CompanyID: scope, IsActive: q.IsActive}
	if q.Role != "" {
		if filter.Role, err = entity.ParseRoleName(q.Role); err != nil {
			return nil, err
		}
	}
	list, total, err := uc.users.List(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		r, err := uc.response(ctx, u)
		if err != nil {
			return nil, err
		}
		items = append(items, *r)
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update modifica los campos presentes. Un password nuevo se vuelve a hashear.
func (uc *UserUseCase) Update(ctx context.Context, p *access.Principal, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.loadForWrite(ctx, p, id)
	if err != nil {
		return nil, err
	}
	var newUsername, newEmail string
	if in.Username != nil {
		if newUsername, err = auth.NormalizeUsername(*in.Username); err != nil {
			return nil, err
		}
		user.Username = newUsername
	}
	if in.Email != nil {
		if newEmail, err = auth.NormalizeEmail(*in.Email); err != nil {
			return nil, err
		}
		if newEmail != user.Email {
			user.EmailVerified = false
		}
		user.Email = newEmail
	}
	if err := auth.EnsureIdentityAvailable(ctx, uc.users, newUsername, newEmail, user.ID); err != nil {
		return nil, err
	}
	if in.Password != nil {
		if err := uc.creds.SetPassword(user, *in.Password); err != nil {
			return nil, err
		}
	}
	if in.FullName != nil {
		user.FullName = auth.NormalizeName(*in.FullName)
	}
	if in.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.CompanyID != nil && *in.CompanyID != user.CompanyRef() {
		companyID := *in.CompanyID
		if companyID == "" {
			if !p.Superadmin {
				return nil, domain.ErrForbidden
			}
		} else {
			if err := p.EnsureCompany(companyID); err != nil {
				return nil, err
			}
			if _, err := requireActiveCompany(ctx, uc.companies, companyID); err != nil {
				return nil, err
			}
		}
		user.CompanyID = optionalString(companyID)
		if in.OutletID == nil {
			user.OutletID = nil
		}
	}
	if in.OutletID != nil {
		user.OutletID = optionalString(*in.OutletID)
	}
	if err := uc.requireOutlet(ctx, user.CompanyRef(), user.OutletRef()); err != nil {
		return nil, err
	}
	if in.IsActive != nil {
		if !*in.IsActive && user.ID == p.UserID() {
			return nil, fmt.Errorf("no puede desactivar su propia cuenta: %w", domain.ErrInvalidInput)
		}
		user.IsActive = *in.IsActive
	}
	user.UpdatedAt = time.Now().UTC()
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return uc.response(ctx, user)
}

// Delete desactiva la cuenta (soft delete). Nadie puede borrarse a sí mismo.
func (uc *UserUseCase) Delete(ctx context.Context, p *access.Principal, id string) error {
	if id == p.UserID() {
		return fmt.Errorf("no puede eliminar su propia cuenta: %w", domain.ErrInvalidInput)
	}
	if _, err := uc.loadForWrite(ctx, p, id); err != nil {
		return err
	}
	if err := uc.users.SoftDelete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("user_id", id).Str("deleted_by", p.UserID()).Msg("usuario eliminado")
	return nil
}

// SetPin configura el PIN POS. Permitido a la propia cuenta o con update_user dentro del tenant.
func (uc *UserUseCase) SetPin(ctx context.Context, p *access.Principal, id, pin string) error {
	if id != p.UserID() {
		if err := uc.authz.Require(ctx, p, entity.CapUpdateUser); err != nil {
			return err
		}
	}
	user, err := uc.loadForWrite(ctx, p, id)
	if err != nil {
		return err
	}
	if err := uc.creds.SetPin(user, pin); err != nil {
		return err
	}
	user.UpdatedAt = time.Now().UTC()
	if err := uc.users.Update(ctx, user); err != nil {
		return err
	}
	uc.log.Info().Str("user_id", id).Msg("PIN actualizado")
	return nil
}

// AssignRole asigna un rol a la cuenta. Solo un Superadmin puede conceder Superadmin.
func (uc *UserUseCase) AssignRole(ctx context.Context, p *access.Principal, id, role string) (*dto.UserResponse, error) {
	name, err := entity.ParseRoleName(role)
	if err != nil {
		return nil, err
	}
	if name == entity.RoleSuperadmin && !p.Superadmin {
		return nil, domain.ErrForbidden
	}
	user, err := uc.loadForWrite(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := uc.graph.AssignRole(ctx, user.ID, name); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", id).Str("role", string(name)).Str("by", p.UserID()).Msg("rol asignado")
	return uc.response(ctx, user)
}

// RevokeRole quita un rol a la cuenta. Quitar Superadmin también exige ser Superadmin.
func (uc *UserUseCase) RevokeRole(ctx context.Context, p *access.Principal, id, role string) (*dto.UserResponse, error) {
	name, err := entity.ParseRoleName(role)
	if err != nil {
		return nil, err
	}
	if name == entity.RoleSuperadmin && !p.Superadmin {
		return nil, domain.ErrForbidden
	}
	user, err := uc.loadForWrite(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := uc.graph.RevokeRole(ctx, user.ID, name); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", id).Str("role", string(name)).Str("by", p.UserID()).Msg("rol retirado")
	return uc.response(ctx, user)
}

// load carga la cuenta. Las de otro tenant dan ErrForbidden.
func (uc *UserUseCase) load(ctx context.Context, p *access.Principal, id string) (*entity.User, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	if user.ID != p.UserID() {
		if err := p.EnsureCompany(user.CompanyRef()); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// loadForWrite como load, pero solo un Superadmin modifica la cuenta de otro Superadmin.
func (uc *UserUseCase) loadForWrite(ctx context.Context, p *access.Principal, id string) (*entity.User, error) {
	user, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if p.Superadmin || user.ID == p.UserID() {
		return user, nil
	}
	super, err := uc.graph.IsSuperadmin(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if super {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

func (uc *UserUseCase) requireOutlet(ctx context.Context, companyID, outletID string) error {
	if outletID == "" {
		return nil
	}
	outlet, err := uc.outlets.GetByID(ctx, outletID)
	if err != nil {
		return err
	}
	if outlet == nil || outlet.DeletedAt != nil || outlet.CompanyID != companyID {
		return fmt.Errorf("outlet %s no pertenece a la empresa: %w", outletID, domain.ErrInvalidInput)
	}
	return nil
}

func (uc *UserUseCase) parseRoles(p *access.Principal, raw []string) ([]entity.RoleName, error) {
	out := make([]entity.RoleName, 0, len(raw))
	for _, s := range raw {
		r, err := entity.ParseRoleName(s)
		if err != nil {
			return nil, err
		}
		if r == entity.RoleSuperadmin && !p.Superadmin {
			return nil, domain.ErrForbidden
		}
		out = append(out, r)
	}
	return out, nil
}

func (uc *UserUseCase) response(ctx context.Context, u *entity.User) (*dto.UserResponse, error) {
	roles, err := uc.graph.RolesOf(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return dto.ToUserResponse(u, roles), nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
