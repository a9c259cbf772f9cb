package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/windi9/dwc-pos/internal/application/rbac"
	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/access"
	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
	"github.com/windi9/dwc-pos/pkg/jwt"
	"github.com/windi9/dwc-pos/pkg/logger"
)

// Guard autentica tokens y decide si una identidad puede ejercer una capacidad.
type Guard struct {
	users  repository.UserRepository
	graph  *rbac.Graph
	tokens TokenIssuer
	log    *logger.Logger
}

// NewGuard construye el guard de autorización.
func NewGuard(users repository.UserRepository, roles repository.RoleRepository, tokens TokenIssuer, log *logger.Logger) *Guard {
	if log == nil {
		log = logger.Nop()
	}
	return &Guard{users: users, graph: rbac.NewGraph(roles), tokens: tokens, log: log.Named("guard")}
}

// Authenticate valida el token y vuelve a cargar la cuenta: una cuenta borrada o desactivada
// después de emitir el token siempre se rechaza.
func (g *Guard) Authenticate(ctx context.Context, token string) (*access.Principal, error) {
	claims, err := g.tokens.Validate(token)
	if err != nil {
		g.log.Debug().Err(err).Bool("expired", errors.Is(err, jwt.ErrExpired)).Msg("token rechazado")
		return nil, domain.ErrUnauthorized
	}
	user, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolver cuenta del token: %w", err)
	}
	if user == nil || user.DeletedAt != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveAccount
	}
	super, err := g.graph.IsSuperadmin(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &access.Principal{User: user, Channel: access.Channel(claims.Channel), Superadmin: super}, nil
}

// Authorize es true si el principal es Superadmin o alguno de sus roles concede la capacidad.
func (g *Guard) Authorize(ctx context.Context, p *access.Principal, capability entity.Capability) (bool, error) {
	if p == nil || p.User == nil {
		return false, nil
	}
	if p.Superadmin {
		return true, nil
	}
	return g.graph.HasPermission(ctx, p.User.ID, capability)
}

// Require devuelve domain.ErrForbidden si el principal no tiene la capacidad.
func (g *Guard) Require(ctx context.Context, p *access.Principal, capability entity.Capability) error {
	ok, err := g.Authorize(ctx, p, capability)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}
