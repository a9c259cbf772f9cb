package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/windi9/dwc-pos/internal/application/usecase"
)

// RoleHandler consulta y edición del grafo rol→permiso.
type RoleHandler struct {
	uc *usecase.RoleUseCase
}

func NewRoleHandler(uc *usecase.RoleUseCase) *RoleHandler {
	return &RoleHandler{uc: uc}
}

// ListRoles godoc
// @Summary      Listar roles
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  dto.RoleResponse
// @Router       /api/v1/roles [get]
func (h *RoleHandler) ListRoles(c *fiber.Ctx) error {
	out, err := h.uc.ListRoles(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListPermissions godoc
// @Summary      Listar permisos
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  dto.PermissionResponse
// @Router       /api/v1/permissions [get]
func (h *RoleHandler) ListPermissions(c *fiber.Ctx) error {
	out, err := h.uc.ListPermissions(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RolePermissions godoc
// @Summary      Permisos de un rol
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Param        role  path  string  true  "Nombre del rol"
// @Success      200   {object}  dto.RolePermissionsResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/roles/{role}/permissions [get]
func (h *RoleHandler) RolePermissions(c *fiber.Ctx) error {
	out, err := h.uc.RolePermissions(c.UserContext(), c.Params("role"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Grant godoc
// @Summary      Conceder permiso a un rol
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Param        role        path  string  true  "Nombre del rol"
// @Param        capability  path  string  true  "Nombre del permiso"
// @Success      200         {object}  dto.RolePermissionsResponse
// @Failure      400         {object}  dto.ErrorResponse
// @Router       /api/v1/roles/{role}/permissions/{capability} [post]
func (h *RoleHandler) Grant(c *fiber.Ctx) error {
	out, err := h.uc.Grant(c.UserContext(), c.Params("role"), c.Params("capability"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Revoke godoc
// @Summary      Retirar permiso de un rol
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Param        role        path  string  true  "Nombre del rol"
// @Param        capability  path  string  true  "Nombre del permiso"
// @Success      200         {object}  dto.RolePermissionsResponse
// @Router       /api/v1/roles/{role}/permissions/{capability} [delete]
func (h *RoleHandler) Revoke(c *fiber.Ctx) error {
	out, err := h.uc.Revoke(c.UserContext(), c.Params("role"), c.Params("capability"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
