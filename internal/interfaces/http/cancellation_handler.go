package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/cancellation"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

// CancellationHandler anulaciones parciales de notas de entrega.
type CancellationHandler struct {
	uc *cancellation.UseCase
}

// NewCancellationHandler construye el handler.
func NewCancellationHandler(uc *cancellation.UseCase) *CancellationHandler {
	return &CancellationHandler{uc: uc}
}

// Create godoc
// @Summary      Anular parcialmente una nota de entrega
// @Description  Devuelve al stock las cantidades anuladas.
// @Tags         cancellations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCancellationRequest  true  "Anulación"
// @Success      201   {object}  dto.Result{data=dto.CancellationResponse}
// @Failure      400   {object}  dto.Result
// @Failure      409   {object}  dto.Result
// @Router       /api/cancellations [post]
func (h *CancellationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCancellationRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, invalidBody())
	}
	out, err := h.uc.Create(c.UserContext(), GetActorID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// Update godoc
// @Summary      Modificar anulación
// @Tags         cancellations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.UpdateCancellationRequest  true  "Anulación"
// @Success      200   {object}  dto.Result{data=dto.CancellationResponse}
// @Failure      409   {object}  dto.Result
// @Router       /api/cancellations/{id} [put]
func (h *CancellationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCancellationRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, invalidBody())
	}
	out, err := h.uc.Update(c.UserContext(), GetActorID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Delete godoc
// @Summary      Eliminar anulación
// @Tags         cancellations
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.Result
// @Failure      422  {object}  dto.Result
// @Router       /api/cancellations/{id} [delete]
func (h *CancellationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"id": c.Params("id")})
}

// DeleteItem godoc
// @Summary      Eliminar una línea de la anulación
// @Description  Si era la última línea se elimina la anulación y data es null.
// @Tags         cancellations
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID"
// @Param        itemId  path  string  true  "ID de la línea"
// @Success      200     {object}  dto.Result{data=dto.CancellationResponse}
// @Failure      404     {object}  dto.Result
// @Router       /api/cancellations/{id}/items/{itemId} [delete]
func (h *CancellationHandler) DeleteItem(c *fiber.Ctx) error {
	out, err := h.uc.DeleteItem(c.UserContext(), GetActorID(c), c.Params("id"), c.Params("itemId"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// GetByID godoc
// @Summary      Obtener anulación
// @Tags         cancellations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.Result{data=dto.CancellationResponse}
// @Failure      404  {object}  dto.Result
// @Router       /api/cancellations/{id} [get]
func (h *CancellationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}
