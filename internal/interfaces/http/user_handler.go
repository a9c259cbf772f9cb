package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/application/usecase"
)

// UserHandler administración de cuentas, PIN y asignación de roles.
type UserHandler struct {
	uc *usecase.UserUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// Create godoc
// @Summary      Crear usuario
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "Datos de la cuenta"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener usuario
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        company_id  query  string  false  "Empresa (solo Superadmin)"
// @Param        is_active   query  bool    false  "Filtrar por estado"
// @Param        role        query  string  false  "Filtrar por rol"
// @Param        limit       query  int     false  "Límite"   default(20)
// @Param        offset      query  int     false  "Offset"   default(0)
// @Success      200         {object}  dto.UserListResponse
// @Router       /api/v1/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	q := dto.UserListQuery{
		CompanyID: c.Query("company_id"),
		IsActive:  queryBool(c, "is_active"),
		Role:      c.Query("role"),
	}
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c), q, pageFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar usuario
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.UserResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Desactivar usuario
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del usuario"
// @Success      204
// @Router       /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetPin godoc
// @Summary      Configurar PIN POS
// @Description  Permitido a la propia cuenta o con update_user dentro de la empresa.
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del usuario"
// @Param        body  body  dto.SetPinRequest  true  "PIN de 6 dígitos"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/v1/users/{id}/pin [put]
func (h *UserHandler) SetPin(c *fiber.Ctx) error {
	var in dto.SetPinRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.SetPin(c.UserContext(), GetPrincipal(c), c.Params("id"), in.Pin); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "PIN actualizado"})
}

// AssignRole godoc
// @Summary      Asignar rol
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        id    path  string  true  "ID del usuario"
// @Param        role  path  string  true  "Nombre del rol"
// @Success      200   {object}  dto.UserResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/v1/users/{id}/roles/{role} [post]
func (h *UserHandler) AssignRole(c *fiber.Ctx) error {
	out, err := h.uc.AssignRole(c.UserContext(), GetPrincipal(c), c.Params("id"), c.Params("role"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RevokeRole godoc
// @Summary      Retirar rol
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        id    path  string  true  "ID del usuario"
// @Param        role  path  string  true  "Nombre del rol"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/v1/users/{id}/roles/{role} [delete]
func (h *UserHandler) RevokeRole(c *fiber.Ctx) error {
	out, err := h.uc.RevokeRole(c.UserContext(), GetPrincipal(c), c.Params("id"), c.Params("role"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
