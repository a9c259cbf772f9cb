// Package redis implementa el almacén de códigos de login sobre Redis.
// Cada código vive bajo una clave con TTL igual a su vigencia; GETDEL garantiza un solo consumo.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/windi9/dwc-pos/internal/domain/entity"
	"github.com/windi9/dwc-pos/internal/domain/repository"
)

var _ repository.VerificationRepository = (*LoginCodeStore)(nil)

const keyPrefix = "dwcpos:verification"

// LoginCodeStore VerificationRepository respaldado por Redis.
type LoginCodeStore struct {
	rdb *goredis.Client
}

// NewClient abre un cliente desde una URL redis:// y verifica la conexión.
func NewClient(ctx context.Context, rawURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewLoginCodeStore construye el almacén.
func NewLoginCodeStore(rdb *goredis.Client) *LoginCodeStore {
	return &LoginCodeStore{rdb: rdb}
}

type storedToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func tokenKey(purpose entity.VerificationPurpose, tokenHash string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, purpose, tokenHash)
}

func userKey(purpose entity.VerificationPurpose, userID string) string {
	return fmt.Sprintf("%s:%s:user:%s", keyPrefix, purpose, userID)
}

func attemptsKey(purpose entity.VerificationPurpose, userID string) string {
	return fmt.Sprintf("%s:%s:attempts:%s", keyPrefix, purpose, userID)
}

func encodeToken(t *entity.VerificationToken) ([]byte, error) {
	return json.Marshal(storedToken{ID: t.ID, UserID: t.UserID, ExpiresAt: t.ExpiresAt.UTC(), CreatedAt: t.CreatedAt.UTC()})
}

func decodeToken(purpose entity.VerificationPurpose, tokenHash string, raw []byte) (*entity.VerificationToken, error) {
	var s storedToken
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &entity.VerificationToken{
		ID:        s.ID,
		UserID:    s.UserID,
		Purpose:   purpose,
		TokenHash: tokenHash,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}, nil
}

// Save guarda el token con TTL hasta su vencimiento y apunta el índice por usuario a él.
func (s *LoginCodeStore) Save(ctx context.Context, t *entity.VerificationToken) error {
	ttl := t.ExpiresAt.Sub(t.CreatedAt)
	if ttl <= 0 {
		return nil
	}
	raw, err := encodeToken(t)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, tokenKey(t.Purpose, t.TokenHash), raw, ttl)
		p.Set(ctx, userKey(t.Purpose, t.UserID), t.TokenHash, ttl)
		p.Del(ctx, attemptsKey(t.Purpose, t.UserID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save token: %w", err)
	}
	return nil
}

// Consume lee y borra la clave en una sola operación (GETDEL).
func (s *LoginCodeStore) Consume(ctx context.Context, purpose entity.VerificationPurpose, tokenHash string, now time.Time) (*entity.VerificationToken, error) {
	raw, err := s.rdb.GetDel(ctx, tokenKey(purpose, tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis consume token: %w", err)
	}
	t, err := decodeToken(purpose, tokenHash, raw)
	if err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if t.Expired(now) {
		return nil, nil
	}
	consumed := now
	t.ConsumedAt = &consumed
	_ = s.rdb.Del(ctx, userKey(purpose, t.UserID), attemptsKey(purpose, t.UserID)).Err()
	return t, nil
}

// DeletePending invalida el código vigente de la cuenta, si lo hay.
func (s *LoginCodeStore) DeletePending(ctx context.Context, userID string, purpose entity.VerificationPurpose) error {
	hash, err := s.rdb.GetDel(ctx, userKey(purpose, userID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil
		}
		return fmt.Errorf("redis delete pending: %w", err)
	}
	if err := s.rdb.Del(ctx, tokenKey(purpose, hash), attemptsKey(purpose, userID)).Err(); err != nil {
		return fmt.Errorf("redis delete pending: %w", err)
	}
	return nil
}

// RecordFailedAttempt incrementa el contador de la cuenta. El contador vence junto con el código.
func (s *LoginCodeStore) RecordFailedAttempt(ctx context.Context, userID string, purpose entity.VerificationPurpose) (int, error) {
	ttl, err := s.rdb.PTTL(ctx, userKey(purpose, userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis pttl: %w", err)
	}
	if ttl <= 0 {
		return 0, nil
	}
	var incr *goredis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		incr = p.Incr(ctx, attemptsKey(purpose, userID))
		p.PExpire(ctx, attemptsKey(purpose, userID), ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis record attempt: %w", err)
	}
	return int(incr.Val()), nil
}
