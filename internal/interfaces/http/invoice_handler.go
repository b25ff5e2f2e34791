package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/billing"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc *billing.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create godoc
// @Summary      Crear factura
// @Description  Sin líneas explícitas se facturan las cantidades restantes de la nota de entrega.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "Factura"
// @Success      201   {object}  dto.Result{data=dto.InvoiceResponse}
// @Failure      400   {object}  dto.Result
// @Failure      409   {object}  dto.Result
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, invalidBody())
	}
	out, err := h.uc.CreateInvoice(c.UserContext(), GetActorID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// GetByID godoc
// @Summary      Obtener factura con líneas y pagos
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.Result{data=dto.InvoiceResponse}
// @Failure      404  {object}  dto.Result
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// List godoc
// @Summary      Listar facturas
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        payment_status  query  string  false  "unpaid | partial | paid"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200             {object}  dto.Result{data=dto.InvoiceListResponse}
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListInvoices(c.UserContext(), c.Query("payment_status"), pageFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// RecordPayment godoc
// @Summary      Registrar pago
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura"
// @Param        body  body  dto.CreatePaymentRequest  true  "Pago"
// @Success      201   {object}  dto.Result{data=dto.InvoiceResponse}
// @Failure      400   {object}  dto.Result
// @Failure      404   {object}  dto.Result
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.CreatePaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, invalidBody())
	}
	out, err := h.uc.RecordPayment(c.UserContext(), GetActorID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// DeletePayment godoc
// @Summary      Eliminar pago
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id         path  string  true  "ID de la factura"
// @Param        paymentId  path  string  true  "ID del pago"
// @Success      200        {object}  dto.Result{data=dto.InvoiceResponse}
// @Failure      404        {object}  dto.Result
// @Router       /api/invoices/{id}/payments/{paymentId} [delete]
func (h *InvoiceHandler) DeletePayment(c *fiber.Ctx) error {
	out, err := h.uc.DeletePayment(c.UserContext(), c.Params("id"), c.Params("paymentId"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}
