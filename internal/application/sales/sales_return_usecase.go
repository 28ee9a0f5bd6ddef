package sales

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

// SalesReturnUseCase devuelve unidades de una venta: valida la cota
// acumulada contra lo vendido por línea (producto, lote) antes de tocar
// stock y reingresa al lote original en una sola transacción.
type SalesReturnUseCase struct {
	txRunner TxRunner
	engine   *ledger.Engine
	sales    repository.SaleRepository
	returns  repository.SalesReturnRepository
}

// NewSalesReturnUseCase construye el caso de uso.
func NewSalesReturnUseCase(
	txRunner TxRunner,
	engine *ledger.Engine,
	sales repository.SaleRepository,
	returns repository.SalesReturnRepository,
) *SalesReturnUseCase {
	return &SalesReturnUseCase{txRunner: txRunner, engine: engine, sales: sales, returns: returns}
}

// CreateSalesReturn resuelve la venta original por id o número de tirilla,
// valida todas las líneas contra lo vendido menos lo ya devuelto y aplica
// los reingresos. Una línea en exceso aborta la petición completa antes de
// cualquier mutación: no hay crédito parcial.
func (uc *SalesReturnUseCase) CreateSalesReturn(ctx context.Context, actor string, in dto.CreateSalesReturnRequest) (*dto.SalesReturnResponse, error) {
	if (in.SaleID == "" && in.BillNo == "") || len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: referencia a la venta y al menos una línea son requeridos", domain.ErrInvalidInput)
	}
	for i := range in.Lines {
		if in.Lines[i].Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d: cantidad debe ser positiva", domain.ErrInvalidInput, i+1)
		}
	}

	var ret *entity.SalesReturn
	err := ledger.RetryConflict(3, func() error {
		return uc.txRunner.RunSales(ctx, func(l ledger.Repos, d Repos) error {
			sale, err := uc.resolveSale(d, in.SaleID, in.BillNo)
			if err != nil {
				return err
			}

			// Cantidad vendida por (producto, lote) en la venta original
			soldByLine := make(map[string]int64)
			priceByLine := make(map[string]decimal.Decimal)
			nameByLine := make(map[string]string)
			for _, line := range sale.Lines {
				key := line.ProductID + "|" + line.BatchNumber
				soldByLine[key] += line.Quantity
				priceByLine[key] = line.SalePrice
				nameByLine[key] = line.ProductName
			}

			// Fase de validación: toda línea en exceso aborta sin mutar nada
			requested := make(map[string]int64)
			for i := range in.Lines {
				line := &in.Lines[i]
				key := line.ProductID + "|" + line.BatchNumber
				sold, ok := soldByLine[key]
				if !ok {
					return fmt.Errorf("%w: línea %d: la venta %s no incluye producto %s lote %s",
						domain.ErrInvalidInput, i+1, sale.BillNo, line.ProductID, line.BatchNumber)
				}
				already, err := d.SalesReturns.ReturnedQuantity(sale.ID, line.ProductID, line.BatchNumber)
				if err != nil {
					return err
				}
				requested[key] += line.Quantity
				if already+requested[key] > sold {
					return fmt.Errorf("%w: línea %d: vendido %d, ya devuelto %d, solicitado %d (exceso %d)",
						domain.ErrReturnExceedsSold, i+1, sold, already, requested[key],
						already+requested[key]-sold)
				}
			}

			now := time.Now()
			seq, err := d.SalesReturns.CountByDay(now)
			if err != nil {
				return err
			}
			ret = &entity.SalesReturn{
				ID:        uuid.New().String(),
				ReturnNo:  domaininv.FormatDocNumber(domaininv.PrefixSalesReturn, now, seq),
				SaleID:    sale.ID,
				BillNo:    sale.BillNo,
				Date:      now,
				Reason:    in.Reason,
				CreatedBy: actor,
				CreatedAt: now,
			}

			var total decimal.Decimal
			for i := range in.Lines {
				line := &in.Lines[i]
				key := line.ProductID + "|" + line.BatchNumber
				if _, err := uc.engine.ReturnCredit(l, ledger.ReturnCreditInput{
					ProductID:   line.ProductID,
					BatchNumber: line.BatchNumber,
					Quantity:    line.Quantity,
					Reason:      in.Reason,
					RefType:     entity.RefTypeSalesReturn,
					RefID:       ret.ID,
					Actor:       actor,
				}); err != nil {
					return err
				}

				price := priceByLine[key]
				if line.SalePrice != nil {
					price = *line.SalePrice
				}
				amount := decimal.NewFromInt(line.Quantity).Mul(price)
				total = total.Add(amount)
				ret.Lines = append(ret.Lines, entity.SalesReturnLine{
					ID:          uuid.New().String(),
					ReturnID:    ret.ID,
					ProductID:   line.ProductID,
					ProductName: nameByLine[key],
					BatchNumber: line.BatchNumber,
					Quantity:    line.Quantity,
					SalePrice:   price,
					Amount:      amount,
				})
			}
			ret.Total = total
			return d.SalesReturns.Create(ret)
		})
	})
	if err != nil {
		return nil, err
	}

	return &dto.SalesReturnResponse{
		ID:       ret.ID,
		ReturnNo: ret.ReturnNo,
		SaleID:   ret.SaleID,
		BillNo:   ret.BillNo,
		Total:    ret.Total,
	}, nil
}

// ListSalesReturns lista devoluciones de venta por rango de fechas.
func (uc *SalesReturnUseCase) ListSalesReturns(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.SalesReturn, error) {
	return uc.returns.List(from, to, limit, offset)
}

// resolveSale obtiene la venta original bloqueando su fila: dos devoluciones
// concurrentes contra la misma venta se serializan antes de leer lo ya
// devuelto, así la cota acumulada se valida sobre datos confirmados.
func (uc *SalesReturnUseCase) resolveSale(d Repos, saleID, billNo string) (*entity.Sale, error) {
	if saleID == "" {
		sale, err := d.Sales.GetByBillNo(billNo)
		if err != nil {
			return nil, err
		}
		if sale == nil {
			return nil, fmt.Errorf("%w: tirilla %s", domain.ErrSaleNotFound, billNo)
		}
		saleID = sale.ID
	}
	sale, err := d.Sales.GetForUpdate(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSaleNotFound, saleID)
	}
	return sale, nil
}
