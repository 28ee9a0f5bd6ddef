package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/application/purchasing"
	"github.com/tu-usuario/farmacia-pro/pkg/validate"
)

// GRNHandler maneja las peticiones HTTP de recepciones de mercancía (protegido).
type GRNHandler struct {
	uc *purchasing.GRNUseCase
}

// NewGRNHandler construye el handler.
func NewGRNHandler(uc *purchasing.GRNUseCase) *GRNHandler {
	return &GRNHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar recepción de mercancía (GRN)
// @Description  Crea el documento y aplica las entradas de stock por lote en
//
//	una sola transacción. Repetir la misma factura devuelve 409.
//
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateGRNRequest  true  "invoice_no, vendor, líneas con lote y cantidades"
// @Success      201   {object}  dto.GRNResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/grns [post]
func (h *GRNHandler) Create(c *fiber.Ctx) error {
	actor := GetUserID(c)
	var in dto.CreateGRNRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return badRequest(c, err.Error())
	}
	out, err := h.uc.CreateGRN(c.Context(), actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Consultar una recepción
// @Tags         purchasing
// @Security     Bearer
// @Router       /api/grns/{id} [get]
func (h *GRNHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetGRN(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar recepciones por rango de fechas
// @Tags         purchasing
// @Security     Bearer
// @Router       /api/grns [get]
func (h *GRNHandler) List(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "paginación inválida")
	}
	page.DefaultPage()
	out, err := h.uc.ListGRNs(c.Context(), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "grns": out})
}
