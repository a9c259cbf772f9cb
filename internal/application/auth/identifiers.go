package auth

import (
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/text/secure/precis"
	"golang.org/x/text/unicode/norm"

	"github.com/windi9/dwc-pos/internal/domain"
)

// NormalizeUsername aplica el perfil PRECIS UsernameCaseMapped (minúsculas, sin espacios,
// Unicode normalizado), de modo que "John" y "john" son la misma cuenta.
func NormalizeUsername(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 3 || len(s) > 50 {
		return "", fmt.Errorf("username debe tener entre 3 y 50 caracteres: %w", domain.ErrInvalidInput)
	}
	out, err := precis.UsernameCaseMapped.String(s)
	if err != nil || strings.Contains(out, "@") {
		return "", fmt.Errorf("username %q no es válido: %w", s, domain.ErrInvalidInput)
	}
	return out, nil
}

// NormalizeEmail recorta y pasa a minúsculas; exige una dirección simple (sin nombre visible).
func NormalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || strings.Count(s, "@") != 1 {
		return "", fmt.Errorf("email %q no es válido: %w", s, domain.ErrInvalidInput)
	}
	return s, nil
}

// NormalizeName normaliza nombres visibles a NFC.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// normalizeLogin decide si el identificador de login es email o username.
func normalizeLogin(s string) (string, bool) {
	if strings.Contains(s, "@") {
		e, err := NormalizeEmail(s)
		return e, err == nil
	}
	u, err := NormalizeUsername(s)
	return u, err == nil
}
