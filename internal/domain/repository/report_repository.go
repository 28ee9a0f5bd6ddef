package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LowStockRow producto en o por debajo de su umbral de reorden.
type LowStockRow struct {
	ProductID string
	Code      string
	Name      string
	OnHand    int64
	MinStock  int64
}

// ExpiringBatchRow lote próximo a vencer (o ya vencido) con stock.
type ExpiringBatchRow struct {
	ProductID   string
	ProductName string
	BatchNumber string
	Expiry      time.Time
	OnHand      int64
	MRP         decimal.Decimal
}

// ReportRepository consultas de solo lectura sobre catálogo y lotes.
// Leen fuera de transacción: alimentan reportes, nunca decisiones de stock.
type ReportRepository interface {
	LowStock(ctx context.Context) ([]LowStockRow, error)
	ExpiringBatches(ctx context.Context, before time.Time) ([]ExpiringBatchRow, error)
}
