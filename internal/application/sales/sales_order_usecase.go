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

// SalesOrderUseCase gestiona pedidos de venta. Crear un pedido no reserva
// stock; el stock se compromete al cumplirlo, cuando la venta y el cambio de
// estado del pedido se confirman en la misma transacción.
type SalesOrderUseCase struct {
	txRunner TxRunner
	saleUC   *SaleUseCase
	products repository.ProductRepository
	orders   repository.SalesOrderRepository
}

// NewSalesOrderUseCase construye el caso de uso.
func NewSalesOrderUseCase(
	txRunner TxRunner,
	saleUC *SaleUseCase,
	products repository.ProductRepository,
	orders repository.SalesOrderRepository,
) *SalesOrderUseCase {
	return &SalesOrderUseCase{txRunner: txRunner, saleUC: saleUC, products: products, orders: orders}
}

// CreateOrder registra un pedido PENDING con número SO-YYYYMMDD-NNNN.
func (uc *SalesOrderUseCase) CreateOrder(ctx context.Context, actor string, in dto.CreateSalesOrderRequest) (*dto.SalesOrderResponse, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: el pedido requiere al menos una línea", domain.ErrInvalidInput)
	}

	type resolved struct {
		product *entity.Product
		price   decimal.Decimal
	}
	lines := make([]resolved, len(in.Lines))
	for i := range in.Lines {
		req := &in.Lines[i]
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d: cantidad debe ser positiva", domain.ErrInvalidInput, i+1)
		}
		product, err := uc.products.GetByID(req.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: línea %d: %s", domain.ErrProductNotFound, i+1, req.ProductID)
		}
		lines[i] = resolved{product: product, price: productSalePrice(product, req.SalePrice)}
	}

	var order *entity.SalesOrder
	err := ledger.RetryConflict(3, func() error {
		return uc.txRunner.RunSales(ctx, func(_ ledger.Repos, d Repos) error {
			now := time.Now()
			seq, err := d.Orders.CountByDay(now)
			if err != nil {
				return err
			}
			order = &entity.SalesOrder{
				ID:        uuid.New().String(),
				OrderNo:   domaininv.FormatDocNumber(domaininv.PrefixSalesOrder, now, seq),
				Customer:  in.Customer,
				Date:      now,
				Status:    entity.OrderStatusPending,
				CreatedBy: actor,
				CreatedAt: now,
				UpdatedAt: now,
			}
			var total decimal.Decimal
			for i := range in.Lines {
				req := &in.Lines[i]
				total = total.Add(decimal.NewFromInt(req.Quantity).Mul(lines[i].price))
				order.Lines = append(order.Lines, entity.SalesOrderLine{
					ID:          uuid.New().String(),
					OrderID:     order.ID,
					ProductID:   req.ProductID,
					ProductName: lines[i].product.Name,
					BatchNumber: req.BatchNumber,
					Quantity:    req.Quantity,
					SalePrice:   lines[i].price,
				})
			}
			order.Total = total
			return d.Orders.Create(order)
		})
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// FulfillOrder convierte un pedido PENDING en venta. La venta y el paso a
// FULFILLED se confirman juntos; si la venta falla (p. ej. sin stock), el
// rollback deja el pedido PENDING y se propaga el error de la venta.
func (uc *SalesOrderUseCase) FulfillOrder(ctx context.Context, actor, orderID string) (*dto.SalesOrderResponse, error) {
	var order *entity.SalesOrder
	err := ledger.RetryConflict(3, func() error {
		return uc.txRunner.RunSales(ctx, func(l ledger.Repos, d Repos) error {
			var err error
			order, err = d.Orders.GetForUpdate(orderID)
			if err != nil {
				return err
			}
			if order == nil {
				return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
			}
			if order.Status != entity.OrderStatusPending {
				return fmt.Errorf("%w: pedido %s en estado %s", domain.ErrOrderNotPending, order.OrderNo, order.Status)
			}

			saleReq := dto.CreateSaleRequest{Customer: order.Customer}
			for _, line := range order.Lines {
				price := line.SalePrice
				saleReq.Lines = append(saleReq.Lines, dto.SaleLineRequest{
					ProductID:   line.ProductID,
					BatchNumber: line.BatchNumber,
					Quantity:    line.Quantity,
					SalePrice:   &price,
				})
			}
			sale, err := uc.saleUC.CreateSaleInTx(l, d, actor, saleReq, time.Now())
			if err != nil {
				return err
			}
			if err := d.Orders.SetStatus(order.ID, entity.OrderStatusFulfilled, sale.ID); err != nil {
				return err
			}
			order.Status = entity.OrderStatusFulfilled
			order.SaleID = sale.ID
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// CancelOrder cancela un pedido que sigue PENDING.
func (uc *SalesOrderUseCase) CancelOrder(ctx context.Context, orderID string) (*dto.SalesOrderResponse, error) {
	var order *entity.SalesOrder
	err := uc.txRunner.RunSales(ctx, func(_ ledger.Repos, d Repos) error {
		var err error
		order, err = d.Orders.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
		}
		if order.Status != entity.OrderStatusPending {
			return fmt.Errorf("%w: pedido %s en estado %s", domain.ErrOrderNotPending, order.OrderNo, order.Status)
		}
		if err := d.Orders.SetStatus(order.ID, entity.OrderStatusCancelled, ""); err != nil {
			return err
		}
		order.Status = entity.OrderStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// GetOrder busca un pedido por id.
func (uc *SalesOrderUseCase) GetOrder(ctx context.Context, id string) (*dto.SalesOrderResponse, error) {
	order, err := uc.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return toOrderResponse(order), nil
}

// ListOrders lista pedidos por estado (vacío = todos).
func (uc *SalesOrderUseCase) ListOrders(ctx context.Context, status string, limit, offset int) ([]*dto.SalesOrderResponse, error) {
	orders, err := uc.orders.List(status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SalesOrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out, nil
}

func toOrderResponse(order *entity.SalesOrder) *dto.SalesOrderResponse {
	return &dto.SalesOrderResponse{
		ID:       order.ID,
		OrderNo:  order.OrderNo,
		Customer: order.Customer,
		Status:   order.Status,
		SaleID:   order.SaleID,
		Total:    order.Total,
	}
}
