package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
)

// newActivationToken genera el secreto del enlace de activación y su hash persistible.
func newActivationToken() (raw, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generar token de activación: %w", err)
	}
	raw = base64.RawURLEncoding.EncodeToString(b)
	return raw, hashSecret(raw), nil
}

// newLoginCode genera un código numérico de 6 dígitos uniforme.
func newLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generar código de login: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// loginCodeHash liga el código a la cuenta: el mismo código de otra cuenta produce otro hash.
func loginCodeHash(userID, code string) string {
	return hashSecret(userID + ":" + code)
}

func hashSecret(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
