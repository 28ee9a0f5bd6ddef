package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/application/reports"
)

// ReportHandler reportes de solo lectura (protegido).
type ReportHandler struct {
	uc *reports.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// StockLedger godoc
// @Summary      Kardex de un lote con verificación de replay
// @Tags         reports
// @Security     Bearer
// @Success      200  {object}  dto.StockLedgerDTO
// @Router       /api/reports/stock-ledger/{productID}/{batchNumber} [get]
func (h *ReportHandler) StockLedger(c *fiber.Ctx) error {
	out, err := h.uc.StockLedger(c.Context(), c.Params("productID"), c.Params("batchNumber"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos en o bajo su umbral de reorden
// @Tags         reports
// @Security     Bearer
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

// ExpiringBatches godoc
// @Summary      Lotes con stock que vencen dentro del horizonte
// @Tags         reports
// @Security     Bearer
// @Param        days  query  int  false  "horizonte en días (defecto 90)"
// @Router       /api/reports/expiring-batches [get]
func (h *ReportHandler) ExpiringBatches(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "90"))
	out, err := h.uc.ExpiringBatches(c.Context(), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "batches": out})
}

// ComplianceRegister godoc
// @Summary      Registro de sustancias controladas por rango de fechas
// @Tags         reports
// @Security     Bearer
// @Router       /api/reports/compliance-register [get]
func (h *ReportHandler) ComplianceRegister(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "paginación inválida")
	}
	page.DefaultPage()
	out, err := h.uc.ComplianceRegister(c.Context(), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "entries": out})
}
