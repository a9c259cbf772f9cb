package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/windi9/dwc-pos/internal/application/auth"
	"github.com/windi9/dwc-pos/internal/application/dto"
)

// AuthHandler maneja registro, activación y los tres flujos de login.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar cuenta de back office
// @Description  Crea la cuenta sin verificar y envía el enlace de activación por email.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "username, email, password"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	user, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// VerifyEmail godoc
// @Summary      Activar cuenta
// @Tags         auth
// @Produce      json
// @Param        token  query  string  true  "Token del enlace de activación"
// @Success      200    {object}  dto.MessageResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/v1/auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	if err := h.uc.VerifyEmail(c.UserContext(), c.Query("token")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "email verificado"})
}

// Token godoc
// @Summary      Login de back office
// @Description  Acepta JSON o formulario (username, password). Si el email no está verificado
// @Description  responde 403 con X-Verification-Required y envía un código de 6 dígitos.
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username o email, password"
// @Success      200   {object}  dto.TokenResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/v1/auth/token [post]
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Username == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "username y password son requeridos"})
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// VerifyLoginCode godoc
// @Summary      Completar login con código de email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifyCodeRequest  true  "email, code"
// @Success      200   {object}  dto.TokenResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/auth/verify-login-code [post]
func (h *AuthHandler) VerifyLoginCode(c *fiber.Ctx) error {
	var in dto.VerifyCodeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.VerifyLoginCode(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PosLogin godoc
// @Summary      Login de terminal POS con PIN
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PosLoginRequest  true  "username_or_email, pin"
// @Success      200   {object}  dto.TokenResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/v1/auth/pos-login [post]
func (h *AuthHandler) PosLogin(c *fiber.Ctx) error {
	var in dto.PosLoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.UsernameOrEmail == "" || in.Pin == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "username_or_email y pin son requeridos"})
	}
	out, err := h.uc.PosLogin(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Cuenta autenticada
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MeResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.Me(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
