package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windi9/dwc-pos/internal/domain/entity"
)

func TestClaves(t *testing.T) {
	assert.Equal(t, "dwcpos:verification:login_code:abc", tokenKey(entity.PurposeLoginCode, "abc"))
	assert.Equal(t, "dwcpos:verification:login_code:user:u-1", userKey(entity.PurposeLoginCode, "u-1"))
	assert.NotEqual(t, tokenKey(entity.PurposeLoginCode, "x"), tokenKey(entity.PurposeActivationLink, "x"))
	assert.Equal(t, "dwcpos:verification:login_code:attempts:u-1", attemptsKey(entity.PurposeLoginCode, "u-1"))
	assert.NotEqual(t, userKey(entity.PurposeLoginCode, "u-1"), attemptsKey(entity.PurposeLoginCode, "u-1"))
}

func TestCodificacionToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	in := &entity.VerificationToken{
		ID:        "tok-1",
		UserID:    "u-1",
		Purpose:   entity.PurposeLoginCode,
		TokenHash: "hash",
		ExpiresAt: now.Add(10 * time.Minute),
		CreatedAt: now,
	}

	raw, err := encodeToken(in)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash", "el hash ya es parte de la clave")

	out, err := decodeToken(entity.PurposeLoginCode, "hash", raw)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.UserID, out.UserID)
	assert.Equal(t, in.Purpose, out.Purpose)
	assert.Equal(t, in.TokenHash, out.TokenHash)
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))
	assert.Nil(t, out.ConsumedAt)
	assert.False(t, out.Expired(now))
	assert.True(t, out.Expired(now.Add(10*time.Minute)))
}

func TestDecodeTokenInvalido(t *testing.T) {
	_, err := decodeToken(entity.PurposeLoginCode, "h", []byte("no-json"))
	assert.Error(t, err)
}
