package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/application/purchasing"
	"github.com/tu-usuario/farmacia-pro/internal/application/sales"
	"github.com/tu-usuario/farmacia-pro/pkg/validate"
)

// SalesReturnHandler maneja devoluciones de clientes (protegido).
type SalesReturnHandler struct {
	uc *sales.SalesReturnUseCase
}

// NewSalesReturnHandler construye el handler.
func NewSalesReturnHandler(uc *sales.SalesReturnUseCase) *SalesReturnHandler {
	return &SalesReturnHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar devolución de cliente
// @Description  Reingresa las unidades al lote original. La suma acumulada de
//
//	devoluciones por línea nunca excede lo vendido; el exceso responde 409.
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSalesReturnRequest  true  "venta original (id o tirilla) y líneas"
// @Success      201   {object}  dto.SalesReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales-returns [post]
func (h *SalesReturnHandler) Create(c *fiber.Ctx) error {
	actor := GetUserID(c)
	var in dto.CreateSalesReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return badRequest(c, err.Error())
	}
	out, err := h.uc.CreateSalesReturn(c.Context(), actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar devoluciones de clientes
// @Tags         sales
// @Security     Bearer
// @Router       /api/sales-returns [get]
func (h *SalesReturnHandler) List(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "paginación inválida")
	}
	page.DefaultPage()
	list, err := h.uc.ListSalesReturns(c.Context(), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.SalesReturnResponse, 0, len(list))
	for _, ret := range list {
		out = append(out, dto.SalesReturnResponse{
			ID:       ret.ID,
			ReturnNo: ret.ReturnNo,
			SaleID:   ret.SaleID,
			BillNo:   ret.BillNo,
			Total:    ret.Total,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "returns": out})
}

// PurchaseReturnHandler maneja devoluciones a proveedores (protegido).
type PurchaseReturnHandler struct {
	uc *purchasing.PurchaseReturnUseCase
}

// NewPurchaseReturnHandler construye el handler.
func NewPurchaseReturnHandler(uc *purchasing.PurchaseReturnUseCase) *PurchaseReturnHandler {
	return &PurchaseReturnHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar devolución a proveedor
// @Description  Descuenta stock del lote devuelto; si el lote no cubre la
//
//	cantidad responde 409 y no cambia nada.
//
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseReturnRequest  true  "proveedor y líneas con lote"
// @Success      201   {object}  dto.PurchaseReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-returns [post]
func (h *PurchaseReturnHandler) Create(c *fiber.Ctx) error {
	actor := GetUserID(c)
	var in dto.CreatePurchaseReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return badRequest(c, err.Error())
	}
	out, err := h.uc.CreatePurchaseReturn(c.Context(), actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar devoluciones a proveedores
// @Tags         purchasing
// @Security     Bearer
// @Router       /api/purchase-returns [get]
func (h *PurchaseReturnHandler) List(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "paginación inválida")
	}
	page.DefaultPage()
	list, err := h.uc.ListPurchaseReturns(c.Context(), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PurchaseReturnResponse, 0, len(list))
	for _, ret := range list {
		out = append(out, dto.PurchaseReturnResponse{
			ID:       ret.ID,
			ReturnNo: ret.ReturnNo,
			Supplier: ret.Supplier,
			Total:    ret.Total,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "returns": out})
}
