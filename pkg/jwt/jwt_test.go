package jwt_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/windi9/dwc-pos/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newIssuer(t *testing.T, clock *fakeClock) *pkgjwt.Issuer {
	t.Helper()
	iss, err := pkgjwt.NewIssuer(pkgjwt.Config{Secret: testSecret, Issuer: "dwc-pos-test", Now: clock.now})
	require.NoError(t, err)
	return iss
}

func sampleClaims() pkgjwt.Claims {
	return pkgjwt.Claims{
		UserID:    "00000000-0000-0000-0000-000000000001",
		Username:  "john",
		CompanyID: "00000000-0000-0000-0000-000000000002",
		Channel:   pkgjwt.ChannelBackOffice,
	}
}

func TestNewIssuer_ConfiguracionInvalida(t *testing.T) {
	_, err := pkgjwt.NewIssuer(pkgjwt.Config{})
	assert.Error(t, err, "sin secret no se puede emitir")

	_, err = pkgjwt.NewIssuer(pkgjwt.Config{Secret: testSecret, Algorithm: "RS256"})
	assert.Error(t, err, "solo se admiten algoritmos HMAC")

	_, err = pkgjwt.NewIssuer(pkgjwt.Config{Secret: testSecret, Algorithm: "HS512"})
	assert.NoError(t, err)
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
	iss := newIssuer(t, clock)

	token, exp, err := iss.Issue(sampleClaims(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(30*time.Minute), exp)

	claims, err := iss.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "john", claims.Username)
	assert.Equal(t, claims.UserID, claims.Subject)
	assert.Equal(t, pkgjwt.ChannelBackOffice, claims.Channel)
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", claims.CompanyID)
}

func TestValidate_TokenExpiradoEsInvalidoAunqueLaFirmaSeaCorrecta(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
	iss := newIssuer(t, clock)

	token, _, err := iss.Issue(sampleClaims(), time.Minute)
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Minute)
	_, err = iss.Validate(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgjwt.ErrInvalidToken))
	assert.True(t, errors.Is(err, pkgjwt.ErrExpired))
}

func TestValidate_FirmaIncorrecta(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	iss := newIssuer(t, clock)
	other, err := pkgjwt.NewIssuer(pkgjwt.Config{Secret: "otra-clave", Issuer: "dwc-pos-test", Now: clock.now})
	require.NoError(t, err)

	token, _, err := other.Issue(sampleClaims(), time.Hour)
	require.NoError(t, err)

	_, err = iss.Validate(token)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
	assert.NotErrorIs(t, err, pkgjwt.ErrExpired)
}

func TestValidate_TokenAlterado(t *testing.T) {
	iss := newIssuer(t, &fakeClock{t: time.Now()})
	token, _, err := iss.Issue(sampleClaims(), time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	_, err = iss.Validate(tampered)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestValidate_MalFormadoYAlgNone(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	iss := newIssuer(t, clock)

	for _, raw := range []string{"", "abc", "a.b.c"} {
		_, err := iss.Validate(raw)
		assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken, "token %q", raw)
	}

	claims := sampleClaims()
	claims.RegisteredClaims = gojwt.RegisteredClaims{
		Issuer:    "dwc-pos-test",
		ExpiresAt: gojwt.NewNumericDate(clock.t.Add(time.Hour)),
	}
	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Validate(none)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken, "alg none nunca es aceptado")
}

func TestIssue_TTLNoPositivo(t *testing.T) {
	iss := newIssuer(t, &fakeClock{t: time.Now()})
	_, _, err := iss.Issue(sampleClaims(), 0)
	assert.Error(t, err)
}
