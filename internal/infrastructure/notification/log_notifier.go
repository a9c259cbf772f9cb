// Package notification entrega enlaces de activación y códigos de login.
package notification

import (
	"context"

	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/pkg/logger"
)

var _ auth.Notifier = (*LogNotifier)(nil)

// LogNotifier escribe los secretos en el log en lugar de enviarlos. Solo para desarrollo
// o cuando no hay SMTP configurado.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador de log.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("notifier")}
}

func (n *LogNotifier) SendVerificationLink(_ context.Context, email, link string) {
	n.log.Info().Str("email", email).Str("link", link).Msg("enlace de activación (sin SMTP)")
}

func (n *LogNotifier) SendVerificationCode(_ context.Context, email, code string) {
	n.log.Info().Str("email", email).Str("code", code).Msg("código de verificación (sin SMTP)")
}
