package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/access"
	"github.com/windi9/dwc-pos/internal/domain/entity"
)

// LocalPrincipal clave de c.Locals con la identidad autenticada.
const LocalPrincipal = "principal"

// Guard es el contrato que necesitan los middlewares. Lo implementa *auth.Guard.
type Guard interface {
	Authenticate(ctx context.Context, token string) (*access.Principal, error)
	Authorize(ctx context.Context, p *access.Principal, capability entity.Capability) (bool, error)
}

// AuthMiddleware valida el Bearer Token y deja el *access.Principal en c.Locals.
// La cuenta se vuelve a cargar en cada petición: desactivarla invalida sus tokens.
func AuthMiddleware(guard Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		p, err := guard.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			return writeError(c, err)
		}
		c.Locals(LocalPrincipal, p)
		return c.Next()
	}
}

// RequirePermission verifica la capacidad del principal. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 si no hay principal en el contexto.
//   - 403 FORBIDDEN si ningún rol activo concede la capacidad (Superadmin siempre pasa).
//   - 500 ante un fallo al consultar el grafo de roles.
func RequirePermission(guard Guard, capability entity.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p == nil {
			return writeError(c, domain.ErrUnauthorized)
		}
		ok, err := guard.Authorize(c.UserContext(), p, capability)
		if err != nil {
			return writeError(c, err)
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "se requiere el permiso '" + string(capability) + "'",
			})
		}
		return c.Next()
	}
}

// GetPrincipal devuelve la identidad autenticada o nil.
func GetPrincipal(c *fiber.Ctx) *access.Principal {
	p, _ := c.Locals(LocalPrincipal).(*access.Principal)
	return p
}
