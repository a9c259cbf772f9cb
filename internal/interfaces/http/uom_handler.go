package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/windi9/dwc-pos/internal/application/dto"
	"github.com/windi9/dwc-pos/internal/application/usecase"
)

// UOMHandler unidades de medida.
type UOMHandler struct {
	uc *usecase.UOMUseCase
}

func NewUOMHandler(uc *usecase.UOMUseCase) *UOMHandler {
	return &UOMHandler{uc: uc}
}

// Create godoc
// @Summary      Crear unidad de medida
// @Tags         uoms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateUOMRequest  true  "name, symbol"
// @Success      201   {object}  dto.UOMResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/uoms [post]
func (h *UOMHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUOMRequest
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
// @Summary      Obtener unidad de medida
// @Tags         uoms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.UOMResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/uoms/{id} [get]
func (h *UOMHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar unidades de medida
// @Tags         uoms
// @Produce      json
// @Security     BearerAuth
// @Param        company_id  query  string  false  "Empresa (solo Superadmin)"
// @Param        is_active   query  bool    false  "Filtrar por estado"
// @Param        limit       query  int     false  "Límite"   default(20)
// @Param        offset      query  int     false  "Offset"   default(0)
// @Success      200         {object}  dto.UOMListResponse
// @Router       /api/v1/uoms [get]
func (h *UOMHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c), c.Query("company_id"), queryBool(c, "is_active"), pageFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar unidad de medida
// @Tags         uoms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                true  "ID de la unidad"
// @Param        body  body  dto.UpdateUOMRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.UOMResponse
// @Router       /api/v1/uoms/{id} [put]
func (h *UOMHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUOMRequest
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
// @Summary      Desactivar unidad de medida
// @Tags         uoms
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la unidad"
// @Success      204
// @Router       /api/v1/uoms/{id} [delete]
func (h *UOMHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
