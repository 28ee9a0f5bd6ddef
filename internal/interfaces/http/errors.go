package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
)

// respondError clasifica un error de dominio y responde con el status y
// código correspondientes. El mensaje conserva el detalle del wrap
// (producto/lote afectado) para que el UI pueda mostrarlo.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return respond(c, fiber.StatusBadRequest, "VALIDATION", err)
	case errors.Is(err, domain.ErrProductNotFound):
		return respond(c, fiber.StatusNotFound, "PRODUCT_NOT_FOUND", err)
	case errors.Is(err, domain.ErrBatchNotFound):
		return respond(c, fiber.StatusNotFound, "BATCH_NOT_FOUND", err)
	case errors.Is(err, domain.ErrSaleNotFound):
		return respond(c, fiber.StatusNotFound, "SALE_NOT_FOUND", err)
	case errors.Is(err, domain.ErrOrderNotFound):
		return respond(c, fiber.StatusNotFound, "ORDER_NOT_FOUND", err)
	case errors.Is(err, domain.ErrNotFound):
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", err)
	case errors.Is(err, domain.ErrInsufficientStock):
		return respond(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", err)
	case errors.Is(err, domain.ErrReturnExceedsSold):
		return respond(c, fiber.StatusConflict, "RETURN_EXCEEDS_SOLD", err)
	case errors.Is(err, domain.ErrDuplicateNumber):
		return respond(c, fiber.StatusConflict, "DUPLICATE_NUMBER", err)
	case errors.Is(err, domain.ErrBatchHasStock):
		return respond(c, fiber.StatusConflict, "BATCH_HAS_STOCK", err)
	case errors.Is(err, domain.ErrProductHasStock):
		return respond(c, fiber.StatusConflict, "PRODUCT_HAS_STOCK", err)
	case errors.Is(err, domain.ErrOrderNotPending):
		return respond(c, fiber.StatusConflict, "ORDER_NOT_PENDING", err)
	case errors.Is(err, domain.ErrConflict):
		return respond(c, fiber.StatusConflict, "CONFLICT", err)
	case errors.Is(err, domain.ErrUnauthorized):
		return respond(c, fiber.StatusUnauthorized, "UNAUTHORIZED", err)
	default:
		return respond(c, fiber.StatusInternalServerError, "INTERNAL", err)
	}
}

func respond(c *fiber.Ctx, status int, code string, err error) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

// badRequest respuesta 400 con mensaje fijo (cuerpo o query ilegibles).
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: message})
}
