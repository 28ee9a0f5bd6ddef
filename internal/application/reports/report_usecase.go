package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

// ReportUseCase proyecciones de solo lectura: kardex por lote, stock bajo,
// lotes por vencer y registro de controlados. Lee fuera de transacción; las
// decisiones de stock siguen pasando por el libro, nunca por estos reportes.
type ReportUseCase struct {
	batches    repository.BatchRepository
	movements  repository.MovementRepository
	reports    repository.ReportRepository
	compliance repository.ComplianceRepository
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	batches repository.BatchRepository,
	movements repository.MovementRepository,
	reports repository.ReportRepository,
	compliance repository.ComplianceRepository,
) *ReportUseCase {
	return &ReportUseCase{batches: batches, movements: movements, reports: reports, compliance: compliance}
}

// StockLedger arma el kardex de un lote: cada asiento con su saldo corrido.
// Además verifica el replay del diario: sumar los deltas desde cero debe
// reproducir el stock registrado del lote; si no, Consistent queda en false.
func (uc *ReportUseCase) StockLedger(ctx context.Context, productID, batchNumber string) (*dto.StockLedgerDTO, error) {
	batch, err := uc.batches.Get(productID, batchNumber)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: producto %s lote %s", domain.ErrBatchNotFound, productID, batchNumber)
	}

	movements, err := uc.movements.ListByBatchAsc(productID, batchNumber)
	if err != nil {
		return nil, err
	}

	out := &dto.StockLedgerDTO{
		ProductID:   productID,
		BatchNumber: batchNumber,
		OnHand:      batch.OnHand,
		Rows:        make([]dto.LedgerRowDTO, 0, len(movements)),
	}
	var balance int64
	consistent := true
	for _, m := range movements {
		balance += m.Quantity
		if balance != m.BalanceAfter {
			consistent = false
		}
		out.Rows = append(out.Rows, dto.LedgerRowDTO{
			Type:         m.Type,
			Quantity:     m.Quantity,
			Balance:      m.BalanceAfter,
			RefType:      m.RefType,
			RefID:        m.RefID,
			Reason:       m.Reason,
			CreatedBy:    m.CreatedBy,
			CreatedAt:    m.CreatedAt,
			ReplayedFrom: balance,
		})
	}
	out.Consistent = consistent && balance == batch.OnHand
	return out, nil
}

// LowStock productos en o bajo su umbral de reorden.
func (uc *ReportUseCase) LowStock(ctx context.Context) ([]dto.LowStockDTO, error) {
	rows, err := uc.reports.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LowStockDTO{
			ProductID: r.ProductID,
			Code:      r.Code,
			Name:      r.Name,
			OnHand:    r.OnHand,
			MinStock:  r.MinStock,
		})
	}
	return out, nil
}

// ExpiringBatches lotes con stock que vencen dentro de los próximos days días.
// Incluye los ya vencidos: siguen ocupando estantería hasta que se ajusten.
func (uc *ReportUseCase) ExpiringBatches(ctx context.Context, days int) ([]dto.ExpiringBatchDTO, error) {
	if days <= 0 {
		days = 90
	}
	before := time.Now().AddDate(0, 0, days)
	rows, err := uc.reports.ExpiringBatches(ctx, before)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpiringBatchDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ExpiringBatchDTO{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			BatchNumber: r.BatchNumber,
			Expiry:      r.Expiry,
			OnHand:      r.OnHand,
			MRP:         r.MRP,
		})
	}
	return out, nil
}

// ComplianceRegister asientos del registro de controlados por rango de fechas.
func (uc *ReportUseCase) ComplianceRegister(ctx context.Context, from, to *time.Time, limit, offset int) ([]dto.ComplianceEntryDTO, error) {
	entries, err := uc.compliance.List(from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ComplianceEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ComplianceEntryDTO{
			BillNo:      e.BillNo,
			ProductName: e.ProductName,
			BatchNumber: e.BatchNumber,
			Quantity:    e.Quantity,
			Customer:    e.Customer,
			DoctorName:  e.DoctorName,
			CreatedBy:   e.CreatedBy,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out, nil
}
