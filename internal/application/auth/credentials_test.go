package auth_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/entity"
)

func TestCredentialStore_PasswordRoundTrip(t *testing.T) {
	creds := auth.NewCredentialStore(bcrypt.MinCost)
	for i, pw := range []string{"longenough1", "contraseña-ñandú", strings.Repeat("x", auth.MaxPasswordLen)} {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			u := &entity.User{}
			require.NoError(t, creds.SetPassword(u, pw))
			assert.NotEqual(t, pw, u.PasswordHash)
			assert.True(t, creds.VerifyPassword(u, pw))
			assert.False(t, creds.VerifyPassword(u, pw+"x"))
		})
	}
}

func TestCredentialStore_PasswordFueraDeLimites(t *testing.T) {
	creds := auth.NewCredentialStore(bcrypt.MinCost)
	u := &entity.User{}
	assert.ErrorIs(t, creds.SetPassword(u, "corta"), domain.ErrInvalidInput)
	assert.ErrorIs(t, creds.SetPassword(u, strings.Repeat("x", auth.MaxPasswordLen+1)), domain.ErrInvalidInput)
	assert.Empty(t, u.PasswordHash)
	assert.False(t, creds.VerifyPassword(u, ""))
	assert.False(t, creds.VerifyPassword(nil, "longenough1"))
}

func TestCredentialStore_Pin(t *testing.T) {
	creds := auth.NewCredentialStore(bcrypt.MinCost)
	u := &entity.User{}

	assert.False(t, creds.VerifyPin(u, "123456"), "sin PIN configurado")

	for _, bad := range []string{"", "12345", "1234567", "12a456", "１２３４５６"} {
		assert.ErrorIs(t, creds.SetPin(u, bad), domain.ErrInvalidPin, "pin %q", bad)
	}
	assert.Nil(t, u.PinHash)

	require.NoError(t, creds.SetPin(u, "004213"))
	require.NotNil(t, u.PinHash)
	assert.NotEqual(t, "004213", *u.PinHash)
	assert.True(t, creds.VerifyPin(u, "004213"))
	assert.False(t, creds.VerifyPin(u, "004214"))
	assert.Empty(t, u.PasswordHash, "el PIN no toca el hash del password")
}

func TestNewCredentialStore_CostoFueraDeRango(t *testing.T) {
	creds := auth.NewCredentialStore(99)
	u := &entity.User{}
	require.NoError(t, creds.SetPassword(u, "longenough1"))
	cost, err := bcrypt.Cost([]byte(u.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestNormalizeIdentifiers(t *testing.T) {
	u, err := auth.NormalizeUsername("  JohnDoe ")
	require.NoError(t, err)
	assert.Equal(t, "johndoe", u)

	_, err = auth.NormalizeUsername("john doe")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	e, err := auth.NormalizeEmail(" John@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", e)

	for _, bad := range []string{"", "john", "John <john@x.com>", "a@b@c"} {
		_, err := auth.NormalizeEmail(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "email %q", bad)
	}
	assert.True(t, auth.IsPin("000000"))
	assert.False(t, auth.IsPin("00000a"))
}
