package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/application/purchasing"
	"github.com/tu-usuario/farmacia-pro/internal/application/sales"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
)

// Ensure TxRunner implements los tres puertos transaccionales.
var _ ledger.TxRunner = (*TxRunner)(nil)
var _ purchasing.TxRunner = (*TxRunner)(nil)
var _ sales.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repos del libro de stock
// atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(l ledger.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ledgerRepos(tx)); err != nil {
		return mapTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", mapTxError(err))
	}
	return nil
}

// RunPurchasing inicia una transacción con repos del libro y de compras
// (GRN y devoluciones a proveedor).
func (r *TxRunner) RunPurchasing(ctx context.Context, fn func(l ledger.Repos, d purchasing.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	d := purchasing.Repos{
		GRNs:            NewGRNRepository(tx),
		PurchaseReturns: NewPurchaseReturnRepository(tx),
	}
	if err := fn(ledgerRepos(tx), d); err != nil {
		return mapTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", mapTxError(err))
	}
	return nil
}

// RunSales inicia una transacción con repos del libro y de ventas (ventas,
// devoluciones de clientes, pedidos y registro de controlados).
func (r *TxRunner) RunSales(ctx context.Context, fn func(l ledger.Repos, d sales.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	d := sales.Repos{
		Sales:        NewSaleRepository(tx),
		SalesReturns: NewSalesReturnRepository(tx),
		Orders:       NewSalesOrderRepository(tx),
		Compliance:   NewComplianceRepository(tx),
	}
	if err := fn(ledgerRepos(tx), d); err != nil {
		return mapTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", mapTxError(err))
	}
	return nil
}

func ledgerRepos(q Querier) ledger.Repos {
	return ledger.Repos{
		Products:  NewProductRepository(q),
		Batches:   NewBatchRepository(q),
		Movements: NewMovementRepository(q),
	}
}

// mapTxError convierte deadlocks y fallos de serialización en ErrConflict
// para que el caller los reintente igual que una violación de unicidad.
func mapTxError(err error) error {
	if isSerializationFailure(err) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}
