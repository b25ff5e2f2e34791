package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/cancellation"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/sales"
)

// DeliveryNoteHandler notas de entrega y sus anulaciones.
type DeliveryNoteHandler struct {
	uc            *sales.UseCase
	cancellations *cancellation.UseCase
}

// NewDeliveryNoteHandler construye el handler.
func NewDeliveryNoteHandler(uc *sales.UseCase, cancellations *cancellation.UseCase) *DeliveryNoteHandler {
	return &DeliveryNoteHandler{uc: uc, cancellations: cancellations}
}

// Create godoc
// @Summary      Crear nota de entrega
// @Description  Descuenta stock por cada línea. Precio por defecto según el tipo de venta.
// @Tags         delivery-notes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDeliveryNoteRequest  true  "Nota"
// @Success      201   {object}  dto.Result{data=dto.DeliveryNoteResponse}
// @Failure      400   {object}  dto.Result
// @Failure      422   {object}  dto.Result
// @Router       /api/delivery-notes [post]
func (h *DeliveryNoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDeliveryNoteRequest
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
// @Summary      Modificar nota de entrega
// @Tags         delivery-notes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.UpdateDeliveryNoteRequest  true  "Nota"
// @Success      200   {object}  dto.Result{data=dto.DeliveryNoteResponse}
// @Failure      409   {object}  dto.Result
// @Failure      422   {object}  dto.Result
// @Router       /api/delivery-notes/{id} [put]
func (h *DeliveryNoteHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDeliveryNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, invalidBody())
	}
	out, err := h.uc.Update(c.UserContext(), GetActorID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado (active ↔ cancelled)
// @Tags         delivery-notes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.ChangeStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.Result{data=dto.DeliveryNoteResponse}
// @Failure      409   {object}  dto.Result
// @Failure      422   {object}  dto.Result
// @Router       /api/delivery-notes/{id}/status [patch]
func (h *DeliveryNoteHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, invalidBody())
	}
	if err := dto.Validate(in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.ChangeStatus(c.UserContext(), GetActorID(c), c.Params("id"), in.Status)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Delete godoc
// @Summary      Eliminar nota de entrega
// @Tags         delivery-notes
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.Result
// @Failure      409  {object}  dto.Result
// @Router       /api/delivery-notes/{id} [delete]
func (h *DeliveryNoteHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"id": c.Params("id")})
}

// GetByID godoc
// @Summary      Obtener nota de entrega (con cantidades restantes)
// @Tags         delivery-notes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.Result{data=dto.DeliveryNoteResponse}
// @Failure      404  {object}  dto.Result
// @Router       /api/delivery-notes/{id} [get]
func (h *DeliveryNoteHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// List godoc
// @Summary      Listar notas de entrega
// @Tags         delivery-notes
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "active | cancelled"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.Result{data=dto.DeliveryNoteListResponse}
// @Router       /api/delivery-notes [get]
func (h *DeliveryNoteHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.Query("status"), pageFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Cancellations godoc
// @Summary      Anulaciones de una nota de entrega
// @Tags         delivery-notes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la nota"
// @Success      200  {object}  dto.Result{data=[]dto.CancellationResponse}
// @Router       /api/delivery-notes/{id}/cancellations [get]
func (h *DeliveryNoteHandler) Cancellations(c *fiber.Ctx) error {
	out, err := h.cancellations.ListByDeliveryNote(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}
