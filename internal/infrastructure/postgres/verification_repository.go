package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

var _ repository.VerificationRepository = (*VerificationRepo)(nil)

// VerificationRepo guarda los hashes de enlaces de activación y códigos de login.
type VerificationRepo struct {
	q Querier
}

// NewVerificationRepository construye el adaptador.
func NewVerificationRepository(q Querier) *VerificationRepo {
	return &VerificationRepo{q: q}
}

// Save persiste un token pendiente.
func (r *VerificationRepo) Save(ctx context.Context, t *entity.VerificationToken) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO verification_tokens (id, user_id, purpose, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.UserID, string(t.Purpose), t.TokenHash, t.ExpiresAt, t.CreatedAt,
	)
	if err != nil {
		return writeErr("insert verification token", err)
	}
	return nil
}

// Consume marca el token como usado en una sola sentencia: dos consumos concurrentes no pueden ganar ambos.
func (r *VerificationRepo) Consume(ctx context.Context, purpose entity.VerificationPurpose, tokenHash string, now time.Time) (*entity.VerificationToken, error) {
	var t entity.VerificationToken
	err := r.q.QueryRow(ctx, `
		UPDATE verification_tokens SET consumed_at = $3
		WHERE purpose = $1 AND token_hash = $2 AND consumed_at IS NULL AND expires_at > $3
		RETURNING id::text, user_id::text, purpose, token_hash, expires_at, consumed_at, created_at`,
		string(purpose), tokenHash, now,
	).Scan(&t.ID, &t.UserID, &t.Purpose, &t.TokenHash, &t.ExpiresAt, &t.ConsumedAt, &t.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("consume verification token: %w", err)
	}
	return &t, nil
}

// DeletePending borra los tokens pendientes de la cuenta para el propósito.
func (r *VerificationRepo) DeletePending(ctx context.Context, userID string, purpose entity.VerificationPurpose) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM verification_tokens WHERE user_id = $1 AND purpose = $2 AND consumed_at IS NULL`,
		userID, string(purpose))
	if err != nil {
		return fmt.Errorf("delete pending tokens: %w", err)
	}
	return nil
}

// RecordFailedAttempt incrementa attempts del token pendiente en una sola sentencia.
func (r *VerificationRepo) RecordFailedAttempt(ctx context.Context, userID string, purpose entity.VerificationPurpose) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		WITH upd AS (
			UPDATE verification_tokens SET attempts = attempts + 1
			WHERE user_id = $1 AND purpose = $2 AND consumed_at IS NULL
			RETURNING attempts
		)
		SELECT COALESCE(MAX(attempts), 0) FROM upd`,
		userID, string(purpose),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("record failed attempt: %w", err)
	}
	return n, nil
}
