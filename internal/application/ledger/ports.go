package ledger

import (
	"context"

	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción, provistos por el
// TxRunner. El motor los recibe en cada llamada en lugar de resolverlos en
// caliente: la inyección es explícita y la atomicidad la define el caller.
type Repos struct {
	Products  repository.ProductRepository
	Batches   repository.BatchRepository
	Movements repository.MovementRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Si fn retorna error se hace Rollback; si no, Commit.
// Garantiza la disciplina de atomicidad de todas las operaciones del motor.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
