package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
	domaininv "github.com/tu-usuario/farmacia-pro/internal/domain/inventory"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

// PurchaseReturnUseCase devuelve mercancía al proveedor: descuenta stock del
// lote por cada línea y persiste el documento en la misma transacción.
type PurchaseReturnUseCase struct {
	txRunner TxRunner
	engine   *ledger.Engine
	products repository.ProductRepository
	batches  repository.BatchRepository
	returns  repository.PurchaseReturnRepository
}

// NewPurchaseReturnUseCase construye el caso de uso.
func NewPurchaseReturnUseCase(
	txRunner TxRunner,
	engine *ledger.Engine,
	products repository.ProductRepository,
	batches repository.BatchRepository,
	returns repository.PurchaseReturnRepository,
) *PurchaseReturnUseCase {
	return &PurchaseReturnUseCase{
		txRunner: txRunner,
		engine:   engine,
		products: products,
		batches:  batches,
		returns:  returns,
	}
}

// CreatePurchaseReturn valida que cada lote cubra la cantidad devuelta y
// aplica una salida por línea. La validación definitiva ocurre dentro de la
// transacción sobre la fila bloqueada: el chequeo previo solo corta temprano
// con un mensaje claro.
func (uc *PurchaseReturnUseCase) CreatePurchaseReturn(ctx context.Context, actor string, in dto.CreatePurchaseReturnRequest) (*dto.PurchaseReturnResponse, error) {
	if in.Supplier == "" || len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: proveedor y al menos una línea son requeridos", domain.ErrInvalidInput)
	}

	productsByID := make(map[string]*entity.Product, len(in.Lines))
	for i := range in.Lines {
		line := &in.Lines[i]
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d: cantidad debe ser positiva", domain.ErrInvalidInput, i+1)
		}
		product, err := uc.products.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: línea %d: %s", domain.ErrProductNotFound, i+1, line.ProductID)
		}
		productsByID[line.ProductID] = product

		batch, err := uc.batches.Get(line.ProductID, line.BatchNumber)
		if err != nil {
			return nil, err
		}
		if batch == nil {
			return nil, fmt.Errorf("%w: línea %d: producto %s lote %s",
				domain.ErrBatchNotFound, i+1, line.ProductID, line.BatchNumber)
		}
		if batch.OnHand < line.Quantity {
			return nil, fmt.Errorf("%w en lote %s: devolver %d, disponible %d",
				domain.ErrInsufficientStock, line.BatchNumber, line.Quantity, batch.OnHand)
		}
	}

	var ret *entity.PurchaseReturn
	err := ledger.RetryConflict(3, func() error {
		return uc.txRunner.RunPurchasing(ctx, func(l ledger.Repos, d Repos) error {
			now := time.Now()
			seq, err := d.PurchaseReturns.CountByDay(now)
			if err != nil {
				return err
			}
			ret = &entity.PurchaseReturn{
				ID:           uuid.New().String(),
				ReturnNo:     domaininv.FormatDocNumber(domaininv.PrefixPurchaseReturn, now, seq),
				Supplier:     in.Supplier,
				RefInvoiceNo: in.RefInvoiceNo,
				Date:         now,
				Reason:       in.Reason,
				CreatedBy:    actor,
				CreatedAt:    now,
			}

			var total decimal.Decimal
			for i := range in.Lines {
				line := &in.Lines[i]
				product := productsByID[line.ProductID]
				batch, err := l.Batches.Get(line.ProductID, line.BatchNumber)
				if err != nil {
					return err
				}
				if batch == nil {
					return fmt.Errorf("%w: producto %s lote %s",
						domain.ErrBatchNotFound, line.ProductID, line.BatchNumber)
				}
				price := batch.PurchasePrice
				if line.PurchasePrice != nil {
					price = *line.PurchasePrice
				}
				if _, err := uc.engine.Dispense(l, ledger.DispenseInput{
					ProductID:   line.ProductID,
					BatchNumber: line.BatchNumber,
					Quantity:    line.Quantity,
					Reason:      in.Reason,
					RefType:     entity.RefTypePurchaseReturn,
					RefID:       ret.ID,
					Actor:       actor,
				}); err != nil {
					return err
				}

				amount := decimal.NewFromInt(line.Quantity).Mul(price)
				total = total.Add(amount)
				ret.Lines = append(ret.Lines, entity.PurchaseReturnLine{
					ID:            uuid.New().String(),
					ReturnID:      ret.ID,
					ProductID:     line.ProductID,
					ProductName:   product.Name,
					BatchNumber:   line.BatchNumber,
					Quantity:      line.Quantity,
					PurchasePrice: price,
					Amount:        amount,
				})
			}
			ret.Total = total
			return d.PurchaseReturns.Create(ret)
		})
	})
	if err != nil {
		return nil, err
	}

	return &dto.PurchaseReturnResponse{
		ID:       ret.ID,
		ReturnNo: ret.ReturnNo,
		Supplier: ret.Supplier,
		Total:    ret.Total,
	}, nil
}

// ListPurchaseReturns lista devoluciones a proveedor por rango de fechas.
func (uc *PurchaseReturnUseCase) ListPurchaseReturns(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.PurchaseReturn, error) {
	return uc.returns.List(from, to, limit, offset)
}
