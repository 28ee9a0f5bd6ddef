package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/application/usecase"
	"github.com/tu-usuario/farmacia-pro/pkg/validate"
)

// ProductHandler maneja las peticiones HTTP del catálogo (protegido).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "code, name, unit, precios"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return badRequest(c, err.Error())
	}
	out, err := h.uc.CreateProduct(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar producto (no toca stock)
// @Tags         products
// @Security     Bearer
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return badRequest(c, err.Error())
	}
	out, err := h.uc.UpdateProduct(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Consultar producto
// @Tags         products
// @Security     Bearer
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos con búsqueda opcional
// @Tags         products
// @Security     Bearer
// @Param        search  query  string  false  "código, nombre o genérico"
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "paginación inválida")
	}
	page.DefaultPage()
	out, err := h.uc.ListProducts(c.Context(), c.Query("search"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

// ListBatches godoc
// @Summary      Lotes de un producto, incluidos los agotados
// @Tags         products
// @Security     Bearer
// @Router       /api/products/{id}/batches [get]
func (h *ProductHandler) ListBatches(c *fiber.Ctx) error {
	out, err := h.uc.ListBatches(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "batches": out})
}

// DeleteBatch godoc
// @Summary      Eliminar un lote agotado
// @Tags         products
// @Security     Bearer
// @Router       /api/products/{id}/batches/{batchNumber} [delete]
func (h *ProductHandler) DeleteBatch(c *fiber.Ctx) error {
	if err := h.uc.DeleteBatch(c.Context(), c.Params("id"), c.Params("batchNumber")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "lote eliminado"})
}

// Delete godoc
// @Summary      Eliminar un producto sin stock
// @Tags         products
// @Security     Bearer
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteProduct(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "producto eliminado"})
}
