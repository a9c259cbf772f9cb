package repository

import (
	"context"
	"time"

	"github.com/windi9/dwc-pos/internal/domain/entity"
)

// VerificationRepository almacena secretos de un solo uso (enlace de activación, código de login).
type VerificationRepository interface {
	Save(ctx context.Context, token *entity.VerificationToken) error
	// Consume marca como usado el token (purpose, hash) si sigue pendiente y no ha vencido en now.
	// Devuelve (nil, nil) si no hay token utilizable. Dos llamadas concurrentes nunca consumen el mismo token.
	Consume(ctx context.Context, purpose entity.VerificationPurpose, tokenHash string, now time.Time) (*entity.VerificationToken, error)
	// DeletePending invalida los tokens pendientes de una cuenta para un propósito.
	DeletePending(ctx context.Context, userID string, purpose entity.VerificationPurpose) error
	// RecordFailedAttempt suma un intento fallido al token pendiente de la cuenta y devuelve el total.
	// Devuelve 0 si la cuenta no tiene token pendiente.
	RecordFailedAttempt(ctx context.Context, userID string, purpose entity.VerificationPurpose) (int, error)
}
