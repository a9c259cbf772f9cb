package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/application/usecase"
)

// OutletHandler puntos de venta (tenant-scoped).
type OutletHandler struct {
	uc *usecase.OutletUseCase
}

func NewOutletHandler(uc *usecase.OutletUseCase) *OutletHandler {
	return &OutletHandler{uc: uc}
}

// Create godoc
// @Summary      Crear punto de venta
// @Tags         outlets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateOutletRequest  true  "Datos del punto de venta"
// @Success      201   {object}  dto.OutletResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/outlets [post]
func (h *OutletHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOutletRequest
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
// @Summary      Obtener punto de venta
// @Tags         outlets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del punto de venta"
// @Success      200  {object}  dto.OutletResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/outlets/{id} [get]
func (h *OutletHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar puntos de venta
// @Tags         outlets
// @Produce      json
// @Security     BearerAuth
// @Param        company_id  query  string  false  "Empresa (solo Superadmin; el resto usa la suya)"
// @Param        is_active   query  bool    false  "Filtrar por estado"
// @Param        limit       query  int     false  "Límite"   default(20)
// @Param        offset      query  int     false  "Offset"   default(0)
// @Success      200         {object}  dto.OutletListResponse
// @Router       /api/v1/outlets [get]
func (h *OutletHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c), c.Query("company_id"), queryBool(c, "is_active"), pageFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar punto de venta
// @Tags         outlets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                   true  "ID del punto de venta"
// @Param        body  body  dto.UpdateOutletRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.OutletResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/outlets/{id} [put]
func (h *OutletHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateOutletRequest
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
// @Summary      Desactivar punto de venta
// @Tags         outlets
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del punto de venta"
// @Success      204
// @Router       /api/v1/outlets/{id} [delete]
func (h *OutletHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
