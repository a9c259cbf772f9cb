package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/domain"
)

// HeaderVerificationRequired indica al cliente que debe completar el login con el código enviado por email.
const HeaderVerificationRequired = "X-Verification-Required"

// writeError traduce errores de dominio a códigos HTTP. Es el único lugar donde se hace ese mapeo.
func writeError(c *fiber.Ctx, err error) error {
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL", "error interno"
	switch {
	case errors.Is(err, domain.ErrInvalidPin):
		status, code, msg = fiber.StatusBadRequest, "INVALID_PIN", domain.ErrInvalidPin.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		status, code, msg = fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.Is(err, domain.ErrInvalidOrExpiredCode):
		status, code, msg = fiber.StatusBadRequest, "INVALID_CODE", domain.ErrInvalidOrExpiredCode.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, code, msg = fiber.StatusNotFound, "NOT_FOUND", domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrConflict):
		status, code, msg = fiber.StatusConflict, "CONFLICT", err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, code, msg = fiber.StatusUnauthorized, "INVALID_CREDENTIALS", domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		status, code, msg = fiber.StatusUnauthorized, "UNAUTHORIZED", "token inválido o expirado"
	case errors.Is(err, domain.ErrVerificationRequired):
		c.Set(HeaderVerificationRequired, "email_code")
		status, code, msg = fiber.StatusForbidden, "VERIFICATION_REQUIRED", "se envió un código de verificación a su email"
	case errors.Is(err, domain.ErrInactiveAccount):
		status, code, msg = fiber.StatusForbidden, "INACTIVE_ACCOUNT", domain.ErrInactiveAccount.Error()
	case errors.Is(err, domain.ErrForbidden):
		status, code, msg = fiber.StatusForbidden, "FORBIDDEN", domain.ErrForbidden.Error()
	default:
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Interface("request_id", c.Locals("requestid")).
			Msg("error no controlado")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// pageFrom lee limit/offset del query string con los topes compartidos.
func pageFrom(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultLimit), Offset: c.QueryInt("offset", 0)}
	p.Normalize()
	return p
}

// queryBool devuelve nil si el parámetro no viene o no es booleano.
func queryBool(c *fiber.Ctx, key string) *bool {
	switch c.Query(key) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}
