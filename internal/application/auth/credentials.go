package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/windi9/dwc-pos/internal/domain"
	"github.com/windi9/dwc-pos/internal/domain/entity"
)

// Límites de password; bcrypt ignora (y x/crypto rechaza) más de 72 bytes.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
	PinLength      = 6
)

// CredentialStore calcula y verifica los hashes de password y PIN de una cuenta.
type CredentialStore struct {
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewCredentialStore construye el store con el costo de bcrypt configurado.
func NewCredentialStore(cost int) *CredentialStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialStore{cost: cost}
}

// SetPassword guarda el hash del password en la cuenta. Nunca conserva el texto plano.
func (s *CredentialStore) SetPassword(u *entity.User, plaintext string) error {
	if len(plaintext) < MinPasswordLen || len(plaintext) > MaxPasswordLen {
		return fmt.Errorf("password debe tener entre %d y %d caracteres: %w", MinPasswordLen, MaxPasswordLen, domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword compara en tiempo constante contra el hash almacenado.
func (s *CredentialStore) VerifyPassword(u *entity.User, plaintext string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}

// SetPin guarda el hash de un PIN de exactamente 6 dígitos en su propio campo.
func (s *CredentialStore) SetPin(u *entity.User, pin string) error {
	if !IsPin(pin) {
		return domain.ErrInvalidPin
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), s.cost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	h := string(hash)
	u.PinHash = &h
	return nil
}

// VerifyPin devuelve false si la cuenta nunca configuró un PIN.
func (s *CredentialStore) VerifyPin(u *entity.User, pin string) bool {
	if u == nil || u.PinHash == nil || *u.PinHash == "" || !IsPin(pin) {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(*u.PinHash), []byte(pin))
	return err == nil
}

// EqualizeTiming consume el mismo tiempo que una verificación real cuando la cuenta no existe,
// para que el tiempo de respuesta no revele si el usuario está registrado.
func (s *CredentialStore) EqualizeTiming(plaintext string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dwc-pos-timing-equalizer"), s.cost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(plaintext))
}

// IsPin indica si s son exactamente 6 dígitos ASCII.
func IsPin(s string) bool {
	if len(s) != PinLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
