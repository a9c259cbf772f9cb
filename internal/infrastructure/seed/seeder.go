package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/internal/application/rbac"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
	"github.com/windi9/dwc-pos/pkg/logger"
)

// Superadmin credenciales de la cuenta inicial. Sin Username/Email/Password no se crea ninguna.
type Superadmin struct {
	Username string
	Email    string
	Password string
}

func (s Superadmin) configured() bool {
	return strings.TrimSpace(s.Username) != "" && strings.TrimSpace(s.Email) != "" && s.Password != ""
}

// Report resumen de lo aplicado.
type Report struct {
	Roles             int
	Permissions       int
	Grants            int
	SuperadminCreated bool
	SuperadminID      string
}

// Seeder aplica un Catalog de forma idempotente.
type Seeder struct {
	users repository.UserRepository
	roles repository.RoleRepository
	tx    auth.TxRunner
	creds *auth.CredentialStore
	clock auth.Clock
	log   *logger.Logger
}

func NewSeeder(users repository.UserRepository, roles repository.RoleRepository, tx auth.TxRunner, creds *auth.CredentialStore, clock auth.Clock, log *logger.Logger) *Seeder {
	if clock == nil {
		clock = auth.SystemClock{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Seeder{users: users, roles: roles, tx: tx, creds: creds, clock: clock, log: log.Named("seed")}
}

// Run asegura roles, permisos y concesiones del catálogo y, si hay credenciales y aún no existe
// ningún Superadmin, crea uno con el email ya verificado.
func (s *Seeder) Run(ctx context.Context, cat *Catalog, admin Superadmin) (*Report, error) {
	rep := &Report{}
	for _, p := range cat.Permissions {
		if _, err := s.roles.EnsurePermission(ctx, entity.Capability(p.Name), p.Description); err != nil {
			return nil, fmt.Errorf("seed: permiso %s: %w", p.Name, err)
		}
		rep.Permissions++
	}

	graph := rbac.NewGraph(s.roles)
	for _, r := range cat.Roles {
		name := entity.RoleName(r.Name)
		if _, err := s.roles.EnsureRole(ctx, name, r.Description); err != nil {
			return nil, fmt.Errorf("seed: rol %s: %w", r.Name, err)
		}
		rep.Roles++
		for _, c := range cat.GrantsOf(r) {
			if err := graph.GrantPermissionToRole(ctx, name, c); err != nil {
				return nil, err
			}
			rep.Grants++
		}
	}
	s.log.Info().Int("roles", rep.Roles).Int("permissions", rep.Permissions).Int("grants", rep.Grants).Msg("catálogo RBAC aplicado")

	if !admin.configured() {
		return rep, nil
	}
	id, err := s.ensureSuperadmin(ctx, admin)
	if err != nil {
		return nil, err
	}
	if id != "" {
		rep.SuperadminCreated = true
		rep.SuperadminID = id
	}
	return rep, nil
}

func (s *Seeder) ensureSuperadmin(ctx context.Context, admin Superadmin) (string, error) {
	existing, total, err := s.users.List(ctx, repository.UserFilter{Role: entity.RoleSuperadmin}, 1, 0)
	if err != nil {
		return "", fmt.Errorf("seed: buscar superadmin: %w", err)
	}
	if total > 0 {
		s.log.Info().Str("user_id", existing[0].ID).Msg("ya existe un Superadmin, no se crea otro")
		return "", nil
	}

	username, err := auth.NormalizeUsername(admin.Username)
	if err != nil {
		return "", err
	}
	email, err := auth.NormalizeEmail(admin.Email)
	if err != nil {
		return "", err
	}
	now := s.clock.Now()
	user := &entity.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		FullName:      "Superadmin",
		IsActive:      true,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.creds.SetPassword(user, admin.Password); err != nil {
		return "", err
	}
	if err := auth.EnsureIdentityAvailable(ctx, s.users, username, email, ""); err != nil {
		return "", fmt.Errorf("seed: superadmin %s: %w", username, err)
	}

	err = s.tx.RunAccountTx(ctx, func(users repository.UserRepository, roles repository.RoleRepository, _ repository.VerificationRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		return rbac.NewGraph(roles).AssignRole(ctx, user.ID, entity.RoleSuperadmin)
	})
	if err != nil {
		return "", fmt.Errorf("seed: crear superadmin: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("Superadmin inicial creado")
	return user.ID, nil
}
