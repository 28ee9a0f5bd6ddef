package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/application/sales"
	"github.com/tu-usuario/farmacia-pro/pkg/validate"
)

// SalesOrderHandler maneja pedidos de venta (protegido).
type SalesOrderHandler struct {
	uc *sales.SalesOrderUseCase
}

// NewSalesOrderHandler construye el handler.
func NewSalesOrderHandler(uc *sales.SalesOrderUseCase) *SalesOrderHandler {
	return &SalesOrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear pedido de venta (no reserva stock)
// @Tags         sales-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSalesOrderRequest  true  "cliente y líneas"
// @Success      201   {object}  dto.SalesOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sales-orders [post]
func (h *SalesOrderHandler) Create(c *fiber.Ctx) error {
	actor := GetUserID(c)
	var in dto.CreateSalesOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return badRequest(c, err.Error())
	}
	out, err := h.uc.CreateOrder(c.Context(), actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Fulfill godoc
// @Summary      Cumplir un pedido: genera la venta y marca FULFILLED
// @Description  Venta y cambio de estado se confirman en la misma
//
//	transacción; si la venta falla, el pedido sigue PENDING.
//
// @Tags         sales-orders
// @Security     Bearer
// @Router       /api/sales-orders/{id}/fulfill [post]
func (h *SalesOrderHandler) Fulfill(c *fiber.Ctx) error {
	actor := GetUserID(c)
	out, err := h.uc.FulfillOrder(c.Context(), actor, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar un pedido PENDING
// @Tags         sales-orders
// @Security     Bearer
// @Router       /api/sales-orders/{id}/cancel [post]
func (h *SalesOrderHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.CancelOrder(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Consultar un pedido
// @Tags         sales-orders
// @Security     Bearer
// @Router       /api/sales-orders/{id} [get]
func (h *SalesOrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetOrder(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pedidos por estado
// @Tags         sales-orders
// @Security     Bearer
// @Param        status  query  string  false  "PENDING | FULFILLED | CANCELLED"
// @Router       /api/sales-orders [get]
func (h *SalesOrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "paginación inválida")
	}
	page.DefaultPage()
	out, err := h.uc.ListOrders(c.Context(), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "orders": out})
}
