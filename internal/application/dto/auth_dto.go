package dto

import "time"

// RegisterRequest auto-registro de una cuenta de back office.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	FullName    string `json:"full_name" validate:"omitempty,max=200"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=30"`
}

// LoginRequest login de back office. Username acepta username o email.
// Se admite JSON o application/x-www-form-urlencoded (formato OAuth2 password).
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// VerifyCodeRequest segundo paso del login cuando el email no está verificado.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// PosLoginRequest login de terminal POS con PIN.
type PosLoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Pin             string `json:"pin" validate:"required,len=6,numeric"`
}

// SetPinRequest alta o cambio del PIN de una cuenta.
type SetPinRequest struct {
	Pin string `json:"pin" validate:"required,len=6,numeric"`
}

// TokenResponse token emitido tras un login exitoso.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Channel     string       `json:"channel"`
	User        UserResponse `json:"user"`
}

// MeResponse cuenta autenticada con sus roles y permisos resueltos.
type MeResponse struct {
	User        UserResponse `json:"user"`
	Roles       []string     `json:"roles"`
	Permissions []string     `json:"permissions"`
	Superadmin  bool         `json:"superadmin"`
	Channel     string       `json:"channel"`
}
