package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
)

// StatusFor traduce un error de dominio al código HTTP.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrNoStockRecord):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// fail responde {"data": null, "error": "..."} con el código del error.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(dto.Fail(domain.UserMessage(err)))
}

// ok responde {"data": ..., "error": null}.
func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dto.OK(data))
}

func invalidBody() error {
	return domain.NewValidation("", "corps de requête invalide")
}

// ErrorHandler manejador de errores de Fiber: rutas inexistentes, métodos no permitidos y pánicos recuperados.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.Fail(fe.Message))
	}
	return fail(c, err)
}
