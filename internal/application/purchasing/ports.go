package purchasing

import (
	"context"

	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

// Repos repositorios de documentos de compra atados a la transacción.
type Repos struct {
	GRNs            repository.GRNRepository
	PurchaseReturns repository.PurchaseReturnRepository
}

// TxRunner ejecuta fn en una transacción con los repos del motor de
// inventario y los de documentos de compra: el documento y sus efectos en
// stock se confirman o revierten juntos.
type TxRunner interface {
	RunPurchasing(ctx context.Context, fn func(l ledger.Repos, d Repos) error) error
}
