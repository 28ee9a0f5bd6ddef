package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes. Lee con el pool, fuera
// de transacción: los reportes toleran lecturas ligeramente desfasadas.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// LowStock productos en o por debajo de su umbral de reorden.
func (r *ReportRepo) LowStock(ctx context.Context) ([]repository.LowStockRow, error) {
	query := `
		SELECT id, code, name, on_hand, min_stock
		FROM products
		WHERE min_stock > 0 AND on_hand <= min_stock
		ORDER BY on_hand - min_stock ASC, name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("low stock report: %w", err)
	}
	defer rows.Close()
	var list []repository.LowStockRow
	for rows.Next() {
		var row repository.LowStockRow
		if err := rows.Scan(&row.ProductID, &row.Code, &row.Name, &row.OnHand, &row.MinStock); err != nil {
			return nil, fmt.Errorf("scan low stock row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// ExpiringBatches lotes con stock cuyo vencimiento cae antes del horizonte,
// incluidos los ya vencidos. Próximos a vencer primero.
func (r *ReportRepo) ExpiringBatches(ctx context.Context, before time.Time) ([]repository.ExpiringBatchRow, error) {
	query := `
		SELECT b.product_id, p.name, b.batch_number, b.expiry, b.on_hand, b.mrp
		FROM batches b
		JOIN products p ON p.id = b.product_id
		WHERE b.on_hand > 0 AND b.expiry IS NOT NULL AND b.expiry < $1
		ORDER BY b.expiry ASC, p.name`
	rows, err := r.q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("expiring batches report: %w", err)
	}
	defer rows.Close()
	var list []repository.ExpiringBatchRow
	for rows.Next() {
		var row repository.ExpiringBatchRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.BatchNumber,
			&row.Expiry, &row.OnHand, &row.MRP); err != nil {
			return nil, fmt.Errorf("scan expiring batch row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
