package sales_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger/ledgertest"
	"github.com/tu-usuario/farmacia-pro/internal/application/sales"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
)

func newOrderUC(store *ledgertest.Store) *sales.SalesOrderUseCase {
	return sales.NewSalesOrderUseCase(store, newSaleUC(store), store.LedgerRepos().Products, nil)
}

// Crear un pedido no reserva stock: solo registra las líneas PENDING.
func TestCreateOrder_PendienteSinReservarStock(t *testing.T) {
	store := ledgertest.NewStore()
	seedParacetamol(store)
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "B1", OnHand: 10})

	uc := newOrderUC(store)
	resp, err := uc.CreateOrder(context.Background(), testActor, dto.CreateSalesOrderRequest{
		Customer: "Ana",
		Lines:    []dto.SalesOrderLineRequest{{ProductID: "prod-1", Quantity: 4}},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.OrderNo, "SO-"))
	assert.Equal(t, entity.OrderStatusPending, resp.Status)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(40)))
	// El stock sigue intacto
	assert.Equal(t, int64(10), store.Batch("prod-1", "B1").OnHand)
	assert.Empty(t, store.Movements())
}

// Cumplir un pedido crea la venta y marca FULFILLED en la misma transacción.
func TestFulfillOrder_CreaVentaYMarcaCumplido(t *testing.T) {
	store := ledgertest.NewStore()
	seedParacetamol(store)
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "B1", OnHand: 10})

	uc := newOrderUC(store)
	created, err := uc.CreateOrder(context.Background(), testActor, dto.CreateSalesOrderRequest{
		Lines: []dto.SalesOrderLineRequest{{ProductID: "prod-1", Quantity: 4}},
	})
	require.NoError(t, err)

	fulfilled, err := uc.FulfillOrder(context.Background(), testActor, created.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusFulfilled, fulfilled.Status)
	require.NotEmpty(t, fulfilled.SaleID)
	assert.Equal(t, int64(6), store.Batch("prod-1", "B1").OnHand)

	sale := store.Sales()[fulfilled.SaleID]
	require.NotNil(t, sale, "la venta generada quedó persistida")
	assert.True(t, strings.HasPrefix(sale.BillNo, "INV-"))

	// El pedido persistido quedó enlazado a la venta
	stored := store.Order(created.ID)
	assert.Equal(t, entity.OrderStatusFulfilled, stored.Status)
	assert.Equal(t, fulfilled.SaleID, stored.SaleID)
}

// Una venta fallida por falta de stock revierte todo y deja el pedido
// PENDING, listo para reintentar cuando llegue mercancía.
func TestFulfillOrder_SinStockDejaPedidoPendiente(t *testing.T) {
	store := ledgertest.NewStore()
	seedParacetamol(store)
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "B1", OnHand: 2})

	uc := newOrderUC(store)
	created, err := uc.CreateOrder(context.Background(), testActor, dto.CreateSalesOrderRequest{
		Lines: []dto.SalesOrderLineRequest{{ProductID: "prod-1", Quantity: 5}},
	})
	require.NoError(t, err)

	_, err = uc.FulfillOrder(context.Background(), testActor, created.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.Equal(t, entity.OrderStatusPending, store.Order(created.ID).Status)
	assert.Equal(t, int64(2), store.Batch("prod-1", "B1").OnHand)
	assert.Empty(t, store.Sales())
}

// Un pedido ya cumplido no puede cumplirse otra vez.
func TestFulfillOrder_RechazaPedidoNoPendiente(t *testing.T) {
	store := ledgertest.NewStore()
	seedParacetamol(store)
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "B1", OnHand: 10})

	uc := newOrderUC(store)
	created, err := uc.CreateOrder(context.Background(), testActor, dto.CreateSalesOrderRequest{
		Lines: []dto.SalesOrderLineRequest{{ProductID: "prod-1", Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = uc.FulfillOrder(context.Background(), testActor, created.ID)
	require.NoError(t, err)

	_, err = uc.FulfillOrder(context.Background(), testActor, created.ID)
	assert.True(t, errors.Is(err, domain.ErrOrderNotPending))
}

func TestCancelOrder(t *testing.T) {
	store := ledgertest.NewStore()
	seedParacetamol(store)
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "B1", OnHand: 10})

	uc := newOrderUC(store)
	created, err := uc.CreateOrder(context.Background(), testActor, dto.CreateSalesOrderRequest{
		Lines: []dto.SalesOrderLineRequest{{ProductID: "prod-1", Quantity: 1}},
	})
	require.NoError(t, err)

	cancelled, err := uc.CancelOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)

	// Un pedido cancelado ya no puede cumplirse
	_, err = uc.FulfillOrder(context.Background(), testActor, created.ID)
	assert.True(t, errors.Is(err, domain.ErrOrderNotPending))
}

func TestFulfillOrder_PedidoInexistente(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newOrderUC(store)

	_, err := uc.FulfillOrder(context.Background(), testActor, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrOrderNotFound))
}
