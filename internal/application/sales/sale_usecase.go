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

// SaleUseCase crea ventas de mostrador: una transacción por tirilla, una
// salida de stock por lote despachado. Las líneas sin lote explícito se
// asignan con la política de dispensación configurada (FEFO por defecto).
type SaleUseCase struct {
	txRunner TxRunner
	engine   *ledger.Engine
	sales    repository.SaleRepository
	policy   domaininv.Policy
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	txRunner TxRunner,
	engine *ledger.Engine,
	sales repository.SaleRepository,
	policy domaininv.Policy,
) *SaleUseCase {
	return &SaleUseCase{txRunner: txRunner, engine: engine, sales: sales, policy: policy}
}

// CreateSale crea la venta completa o nada: si cualquier línea no puede
// despacharse, toda la transacción se revierte, incluidas las salidas ya
// aplicadas de líneas anteriores, y el error nombra la línea que falló.
func (uc *SaleUseCase) CreateSale(ctx context.Context, actor string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: la venta requiere al menos una línea", domain.ErrInvalidInput)
	}
	if in.Discount.IsNegative() {
		return nil, fmt.Errorf("%w: descuento negativo", domain.ErrInvalidInput)
	}
	for i := range in.Lines {
		if in.Lines[i].Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d: cantidad debe ser positiva", domain.ErrInvalidInput, i+1)
		}
		if in.Lines[i].SalePrice != nil && in.Lines[i].SalePrice.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d: precio negativo", domain.ErrInvalidInput, i+1)
		}
	}

	var sale *entity.Sale
	err := ledger.RetryConflict(3, func() error {
		return uc.txRunner.RunSales(ctx, func(l ledger.Repos, d Repos) error {
			var err error
			sale, err = uc.CreateSaleInTx(l, d, actor, in, time.Now())
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}

// CreateSaleInTx ejecuta la creación de la venta con los repositorios de la
// transacción del caller. Lo usan CreateSale y el cumplimiento de pedidos,
// que necesita la venta y el cambio de estado del pedido en la misma tx.
func (uc *SaleUseCase) CreateSaleInTx(l ledger.Repos, d Repos, actor string, in dto.CreateSaleRequest, now time.Time) (*entity.Sale, error) {
	saleID := uuid.New().String()

	var (
		lines      []entity.SaleLine
		subtotal   decimal.Decimal
		taxTotal   decimal.Decimal
		controlled []entity.SaleLine // líneas de productos Schedule H
	)

	for i := range in.Lines {
		req := &in.Lines[i]
		product, err := l.Products.GetByID(req.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: línea %d: %s", domain.ErrProductNotFound, i+1, req.ProductID)
		}

		// Lote explícito o asignación por política de dispensación
		var allocs []domaininv.Allocation
		if req.BatchNumber != "" {
			allocs = []domaininv.Allocation{{BatchNumber: req.BatchNumber, Quantity: req.Quantity}}
		} else {
			batches, err := l.Batches.ListByProduct(req.ProductID)
			if err != nil {
				return nil, err
			}
			allocs, err = domaininv.Allocate(req.ProductID, batches, req.Quantity, uc.policy)
			if err != nil {
				return nil, fmt.Errorf("línea %d: %w", i+1, err)
			}
		}

		for _, alloc := range allocs {
			if _, err := uc.engine.Dispense(l, ledger.DispenseInput{
				ProductID:   req.ProductID,
				BatchNumber: alloc.BatchNumber,
				Quantity:    alloc.Quantity,
				RefType:     entity.RefTypeSale,
				RefID:       saleID,
				Actor:       actor,
			}); err != nil {
				return nil, fmt.Errorf("línea %d: %w", i+1, err)
			}

			price := productSalePrice(product, req.SalePrice)
			amount := decimal.NewFromInt(alloc.Quantity).Mul(price)
			rate := normalizeRate(product.GSTRate)
			subtotal = subtotal.Add(amount)
			taxTotal = taxTotal.Add(amount.Mul(rate))

			line := entity.SaleLine{
				ID:          uuid.New().String(),
				SaleID:      saleID,
				ProductID:   product.ID,
				ProductName: product.Name,
				BatchNumber: alloc.BatchNumber,
				Quantity:    alloc.Quantity,
				SalePrice:   price,
				GSTRate:     rate,
				Amount:      amount,
			}
			lines = append(lines, line)
			if product.Controlled {
				controlled = append(controlled, line)
			}
		}
	}

	seq, err := d.Sales.CountByDay(now)
	if err != nil {
		return nil, err
	}
	sale := &entity.Sale{
		ID:         saleID,
		BillNo:     domaininv.FormatDocNumber(domaininv.PrefixSale, now, seq),
		Date:       now,
		Customer:   in.Customer,
		DoctorName: in.DoctorName,
		Subtotal:   subtotal,
		Discount:   in.Discount,
		TaxTotal:   taxTotal,
		GrandTotal: subtotal.Sub(in.Discount).Add(taxTotal),
		Lines:      lines,
		CreatedBy:  actor,
		CreatedAt:  now,
	}
	if err := d.Sales.Create(sale); err != nil {
		return nil, err
	}

	// Registro de controlados: misma transacción que la venta
	for _, line := range controlled {
		if err := d.Compliance.Create(&entity.ComplianceEntry{
			ID:          uuid.New().String(),
			SaleID:      sale.ID,
			BillNo:      sale.BillNo,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			BatchNumber: line.BatchNumber,
			Quantity:    line.Quantity,
			Customer:    sale.Customer,
			DoctorName:  sale.DoctorName,
			CreatedBy:   actor,
			CreatedAt:   now,
		}); err != nil {
			return nil, err
		}
	}
	return sale, nil
}

// GetSale obtiene una venta por id.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSaleNotFound, id)
	}
	return toSaleResponse(sale), nil
}

// ListSales lista ventas por rango de fechas.
func (uc *SaleUseCase) ListSales(ctx context.Context, from, to *time.Time, limit, offset int) ([]*dto.SaleResponse, error) {
	sales, err := uc.sales.List(from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSaleResponse(s))
	}
	return out, nil
}

// productSalePrice devuelve el precio pedido o el de lista del producto.
func productSalePrice(product *entity.Product, override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return product.SalePrice
}

// normalizeRate acepta la tasa como fracción (0.12) o porcentaje (12).
func normalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(decimal.NewFromInt(100))
	}
	return rate
}

func toSaleResponse(sale *entity.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:         sale.ID,
		BillNo:     sale.BillNo,
		Date:       sale.Date.Format("2006-01-02"),
		Customer:   sale.Customer,
		Subtotal:   sale.Subtotal,
		Discount:   sale.Discount,
		TaxTotal:   sale.TaxTotal,
		GrandTotal: sale.GrandTotal,
		Lines:      make([]dto.SaleLineResponse, 0, len(sale.Lines)),
	}
	for _, l := range sale.Lines {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			BatchNumber: l.BatchNumber,
			Quantity:    l.Quantity,
			SalePrice:   l.SalePrice,
			GSTRate:     l.GSTRate,
			Amount:      l.Amount,
		})
	}
	return resp
}
