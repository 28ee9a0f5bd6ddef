package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	appinventory "github.com/tu-usuario/farmacia-pro/internal/application/inventory"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
	"github.com/tu-usuario/farmacia-pro/pkg/validate"
)

// MovementHandler maneja ajustes y traslados manuales de stock y la consulta
// del diario (protegido).
type MovementHandler struct {
	uc *appinventory.MovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *appinventory.MovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar ajuste o traslado manual
// @Description  adjust mueve un delta con signo sobre un lote; transfer mueve
//
//	cantidad entre lotes del mismo producto. Requiere reason.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "type, product_id, lote(s), delta o quantity, reason"
// @Success      201   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	actor := GetUserID(c)
	var in dto.StockMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return badRequest(c, err.Error())
	}
	out, err := h.uc.RegisterMovement(c.Context(), actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movements": out})
}

// List godoc
// @Summary      Consultar el diario de movimientos
// @Tags         inventory
// @Security     Bearer
// @Param        product_id    query  string  false  "filtrar por producto"
// @Param        batch_number  query  string  false  "filtrar por lote"
// @Param        type          query  string  false  "RECEIVE | DISPENSE | RETURN | ADJUST | TRANSFER"
// @Router       /api/stock-movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "paginación inválida")
	}
	page.DefaultPage()
	filter := repository.MovementFilter{
		ProductID:   c.Query("product_id"),
		BatchNumber: c.Query("batch_number"),
		Type:        c.Query("type"),
		From:        from,
		To:          to,
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	out, err := h.uc.ListMovements(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}
