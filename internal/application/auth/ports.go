package auth

import (
	"context"
	"time"

	"github.com/windi9/dwc-pos/internal/domain/repository"
	"github.com/windi9/dwc-pos/pkg/jwt"
)

// Notifier envía secretos de verificación al usuario. Es fire-and-forget: las implementaciones
// no bloquean al llamador y solo registran los fallos.
type Notifier interface {
	SendVerificationLink(ctx context.Context, email, link string)
	SendVerificationCode(ctx context.Context, email, code string)
}

// Clock fuente de la hora actual; inyectable para tests deterministas.
type Clock interface {
	Now() time.Time
}

// SystemClock reloj real en UTC.
type SystemClock struct{}

// Now implementa Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// TokenIssuer firma y valida tokens de sesión (lo implementa *jwt.Issuer).
type TokenIssuer interface {
	Issue(claims jwt.Claims, ttl time.Duration) (string, time.Time, error)
	Validate(token string) (*jwt.Claims, error)
}

// TxRunner ejecuta fn con repositorios atados a una única transacción:
// si fn devuelve error no queda nada persistido.
type TxRunner interface {
	RunAccountTx(ctx context.Context, fn func(
		users repository.UserRepository,
		roles repository.RoleRepository,
		verifications repository.VerificationRepository,
	) error) error
}
