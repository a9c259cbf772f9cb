package domain

import "errors"

// Errores de dominio. La capa HTTP los traduce a códigos de estado en un único lugar.
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrConflict      = errors.New("conflicto: el recurso ya existe")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrForbidden     = errors.New("acceso denegado")
	ErrInvalidPin    = errors.New("el PIN debe tener exactamente 6 dígitos")

	// Resultados del flujo de autenticación.
	ErrInvalidCredentials   = errors.New("credenciales inválidas")
	ErrInactiveAccount      = errors.New("cuenta inactiva")
	ErrVerificationRequired = errors.New("se requiere verificación de email")
	ErrInvalidOrExpiredCode = errors.New("código inválido o expirado")
)
