package entity

import "time"

// VerificationPurpose distingue el enlace de activación del código de login.
type VerificationPurpose string

const (
	PurposeActivationLink VerificationPurpose = "activation_link"
	PurposeLoginCode      VerificationPurpose = "login_code"
)

// VerificationToken es un secreto de un solo uso ligado a una cuenta concreta.
// Solo se persiste el hash del secreto.
type VerificationToken struct {
	ID         string
	UserID     string
	Purpose    VerificationPurpose
	TokenHash  string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
	// Attempts intentos fallidos registrados contra el token mientras está pendiente.
	Attempts int
}

// Expired indica si el token venció respecto a now.
func (v *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
