package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/inventory"
)

// StockHandler lecturas del stock actual y del libro de movimientos.
type StockHandler struct {
	uc *inventory.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// List godoc
// @Summary      Stock valorizado por producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.Result{data=dto.StockListResponse}
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListStock(c.UserContext(), pageFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Get godoc
// @Summary      Stock de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200        {object}  dto.Result{data=dto.StockResponse}
// @Failure      404        {object}  dto.Result
// @Router       /api/stock/{productId} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetStock(c.UserContext(), c.Params("productId"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Movements godoc
// @Summary      Libro de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id      query  string  false  "Producto"
// @Param        reference_type  query  string  false  "purchase_order | delivery_note | delivery_note_cancellation"
// @Param        reference_id    query  string  false  "Documento"
// @Param        movement_type   query  string  false  "in | out"
// @Param        from            query  string  false  "YYYY-MM-DD"
// @Param        to              query  string  false  "YYYY-MM-DD"
// @Success      200             {object}  dto.Result{data=dto.MovementListResponse}
// @Failure      400             {object}  dto.Result
// @Router       /api/stock/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	var q dto.MovementQuery
	if err := c.QueryParser(&q); err != nil {
		return fail(c, invalidBody())
	}
	out, err := h.uc.ListMovements(c.UserContext(), q)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}
