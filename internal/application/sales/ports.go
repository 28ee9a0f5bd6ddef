package sales

import (
	"context"

	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

// Repos repositorios de documentos de venta atados a la transacción.
// Compliance es el registro de controlados: se escribe en la misma
// transacción que la venta que lo origina.
type Repos struct {
	Sales        repository.SaleRepository
	SalesReturns repository.SalesReturnRepository
	Orders       repository.SalesOrderRepository
	Compliance   repository.ComplianceRepository
}

// TxRunner ejecuta fn en una transacción con los repos del motor de
// inventario y los de documentos de venta.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(l ledger.Repos, d Repos) error) error
}
