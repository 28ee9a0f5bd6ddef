package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger/ledgertest"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testProductID = "prod-1"
	testActor     = "user-1"
)

func newStoreWithProduct(t *testing.T) *ledgertest.Store {
	t.Helper()
	store := ledgertest.NewStore()
	store.SeedProduct(&entity.Product{
		ID:            testProductID,
		Code:          "PARA-500",
		Name:          "Paracetamol 500mg",
		Unit:          "tableta",
		MRP:           decimal.NewFromInt(30),
		PurchasePrice: decimal.NewFromInt(10),
		SalePrice:     decimal.NewFromInt(25),
	})
	return store
}

// assertAggregate verifica el invariante: el stock cacheado del producto es
// la suma del stock de sus lotes.
func assertAggregate(t *testing.T, store *ledgertest.Store, batchNumbers ...string) {
	t.Helper()
	var sum int64
	for _, n := range batchNumbers {
		if b := store.Batch(testProductID, n); b != nil {
			sum += b.OnHand
		}
	}
	require.NotNil(t, store.Product(testProductID))
	assert.Equal(t, sum, store.Product(testProductID).OnHand, "on_hand del producto debe ser la suma de sus lotes")
}

func receive(t *testing.T, store *ledgertest.Store, engine *ledger.Engine, batchNumber string, qty int64, expiry *time.Time) {
	t.Helper()
	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Receive(r, ledger.ReceiveInput{
			ProductID:   testProductID,
			BatchNumber: batchNumber,
			Quantity:    qty,
			Expiry:      expiry,
			RefType:     entity.RefTypeGRN,
			RefID:       "grn-1",
			Actor:       testActor,
		})
		return err
	})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Receive
// ──────────────────────────────────────────────────────────────────────────────

// Lote nuevo: se crea con el total recibido y hereda los precios del producto.
func TestEngine_ReceiveCreaLoteNuevo(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		mov, err := engine.Receive(r, ledger.ReceiveInput{
			ProductID:    testProductID,
			BatchNumber:  "B1",
			Quantity:     10,
			FreeQuantity: 2,
			RefType:      entity.RefTypeGRN,
			RefID:        "grn-1",
			Actor:        testActor,
		})
		require.NoError(t, err)
		assert.Equal(t, entity.MovementTypeReceive, mov.Type)
		assert.Equal(t, int64(12), mov.Quantity)
		assert.Equal(t, int64(12), mov.BalanceAfter)
		assert.Equal(t, testActor, mov.CreatedBy)
		return nil
	})
	require.NoError(t, err)

	b := store.Batch(testProductID, "B1")
	require.NotNil(t, b)
	assert.Equal(t, int64(12), b.OnHand)
	// Sin precios explícitos, el lote hereda los del producto
	assert.True(t, b.SalePrice.Equal(decimal.NewFromInt(25)))
	assert.True(t, b.PurchasePrice.Equal(decimal.NewFromInt(10)))
	assertAggregate(t, store, "B1")
}

// Lote existente: recepciones sucesivas acumulan; es la ruta normal, no error.
func TestEngine_ReceiveAcumulaEnLoteExistente(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()

	receive(t, store, engine, "B1", 10, nil)
	receive(t, store, engine, "B1", 5, nil)

	assert.Equal(t, int64(15), store.Batch(testProductID, "B1").OnHand)
	assertAggregate(t, store, "B1")
	require.Len(t, store.Movements(), 2)
	assert.Equal(t, int64(15), store.Movements()[1].BalanceAfter)
}

// Precios ausentes en una recepción posterior no pisan los del lote.
func TestEngine_ReceiveNoPisaPreciosSinValorExplicito(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()

	precio := decimal.NewFromInt(40)
	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Receive(r, ledger.ReceiveInput{
			ProductID:   testProductID,
			BatchNumber: "B1",
			Quantity:    10,
			SalePrice:   &precio,
			Actor:       testActor,
		})
		return err
	})
	require.NoError(t, err)

	// Segunda recepción sin precios
	receive(t, store, engine, "B1", 5, nil)

	assert.True(t, store.Batch(testProductID, "B1").SalePrice.Equal(precio))
}

func TestEngine_ReceiveRechazaEntradaInvalida(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Receive(r, ledger.ReceiveInput{ProductID: testProductID, BatchNumber: "B1", Quantity: 0})
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	err = store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Receive(r, ledger.ReceiveInput{ProductID: "no-existe", BatchNumber: "B1", Quantity: 1})
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Dispense
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_DispenseDescuentaYRegistra(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()
	receive(t, store, engine, "B1", 10, nil)

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		mov, err := engine.Dispense(r, ledger.DispenseInput{
			ProductID:   testProductID,
			BatchNumber: "B1",
			Quantity:    4,
			RefType:     entity.RefTypeSale,
			RefID:       "sale-1",
			Actor:       testActor,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(-4), mov.Quantity)
		assert.Equal(t, int64(6), mov.BalanceAfter)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, int64(6), store.Batch(testProductID, "B1").OnHand)
	assertAggregate(t, store, "B1")
}

// Pedir más de lo disponible falla y el rollback deja el stock intacto.
func TestEngine_DispenseInsuficienteNoTocaStock(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()
	receive(t, store, engine, "B1", 3, nil)
	journalLen := len(store.Movements())

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Dispense(r, ledger.DispenseInput{
			ProductID: testProductID, BatchNumber: "B1", Quantity: 5, Actor: testActor,
		})
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.Equal(t, int64(3), store.Batch(testProductID, "B1").OnHand)
	assert.Equal(t, int64(3), store.Product(testProductID).OnHand)
	assert.Len(t, store.Movements(), journalLen, "un despacho fallido no deja asiento")
}

func TestEngine_DispenseLoteInexistente(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Dispense(r, ledger.DispenseInput{
			ProductID: testProductID, BatchNumber: "NO-EXISTE", Quantity: 1,
		})
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrBatchNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// ReturnCredit
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_ReturnCreditReingresaAlLote(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()
	receive(t, store, engine, "B1", 10, nil)

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Dispense(r, ledger.DispenseInput{ProductID: testProductID, BatchNumber: "B1", Quantity: 10})
		if err != nil {
			return err
		}
		_, err = engine.ReturnCredit(r, ledger.ReturnCreditInput{
			ProductID: testProductID, BatchNumber: "B1", Quantity: 3,
			RefType: entity.RefTypeSalesReturn, RefID: "sr-1", Actor: testActor,
		})
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), store.Batch(testProductID, "B1").OnHand)
	assertAggregate(t, store, "B1")
}

// Si el lote fue eliminado tras agotarse, la devolución lo recrea con la
// cantidad devuelta y sin datos de costo.
func TestEngine_ReturnCreditRecreaLoteEliminado(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.ReturnCredit(r, ledger.ReturnCreditInput{
			ProductID: testProductID, BatchNumber: "B-BORRADO", Quantity: 2, Actor: testActor,
		})
		return err
	})
	require.NoError(t, err)

	b := store.Batch(testProductID, "B-BORRADO")
	require.NotNil(t, b)
	assert.Equal(t, int64(2), b.OnHand)
	assert.True(t, b.PurchasePrice.IsZero())
	assertAggregate(t, store, "B-BORRADO")
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjust
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_AdjustAplicaDeltaConSigno(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()
	receive(t, store, engine, "B1", 10, nil)

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Adjust(r, ledger.AdjustInput{
			ProductID: testProductID, BatchNumber: "B1", Delta: -4,
			Reason: "daño en bodega", RefType: entity.RefTypeManual, Actor: testActor,
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), store.Batch(testProductID, "B1").OnHand)
	assertAggregate(t, store, "B1")
}

func TestEngine_AdjustRechazaStockNegativo(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()
	receive(t, store, engine, "B1", 3, nil)

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Adjust(r, ledger.AdjustInput{
			ProductID: testProductID, BatchNumber: "B1", Delta: -5, Reason: "conteo",
		})
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, int64(3), store.Batch(testProductID, "B1").OnHand)
}

func TestEngine_AdjustRechazaDeltaCero(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Adjust(r, ledger.AdjustInput{ProductID: testProductID, BatchNumber: "B1", Delta: 0})
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Transfer
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_TransferEntreLotesExistentes(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()
	receive(t, store, engine, "B1", 10, nil)
	receive(t, store, engine, "B2", 2, nil)

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		movs, err := engine.Transfer(r, ledger.TransferInput{
			ProductID: testProductID, FromBatch: "B1", ToBatchNumber: "B2", Quantity: 4,
			Reason: "reempaque", RefType: entity.RefTypeManual, Actor: testActor,
		})
		require.NoError(t, err)
		// Dos asientos: salida del origen y entrada al destino
		require.Len(t, movs, 2)
		assert.Equal(t, int64(-4), movs[0].Quantity)
		assert.Equal(t, "B2", movs[0].ToBatchNumber)
		assert.Equal(t, int64(4), movs[1].Quantity)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, int64(6), store.Batch(testProductID, "B1").OnHand)
	assert.Equal(t, int64(6), store.Batch(testProductID, "B2").OnHand)
	// El agregado del producto no cambia con un traslado
	assert.Equal(t, int64(12), store.Product(testProductID).OnHand)
}

func TestEngine_TransferCreaLoteDestino(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()
	expiry := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	receive(t, store, engine, "B1", 10, nil)

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Transfer(r, ledger.TransferInput{
			ProductID: testProductID,
			FromBatch: "B1",
			NewBatch:  &ledger.NewBatchSpec{BatchNumber: "B-NUEVO", Expiry: &expiry},
			Quantity:  4,
			Actor:     testActor,
		})
		return err
	})
	require.NoError(t, err)

	dest := store.Batch(testProductID, "B-NUEVO")
	require.NotNil(t, dest)
	assert.Equal(t, int64(4), dest.OnHand)
	require.NotNil(t, dest.Expiry)
	assert.True(t, dest.Expiry.Equal(expiry))
	assert.Equal(t, int64(10), store.Product(testProductID).OnHand)
}

// Si la pata de acreditación falla, el rollback revierte también el descuento
// del origen: nunca queda un traslado a medias.
func TestEngine_TransferAtomicoAnteFalla(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()
	receive(t, store, engine, "B1", 10, nil)
	receive(t, store, engine, "B2", 2, nil)

	boom := errors.New("falla inyectada")
	store.BatchSaveHook = func(b *entity.Batch) error {
		if b.BatchNumber == "B2" {
			return boom
		}
		return nil
	}
	defer func() { store.BatchSaveHook = nil }()

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Transfer(r, ledger.TransferInput{
			ProductID: testProductID, FromBatch: "B1", ToBatchNumber: "B2", Quantity: 4,
		})
		return err
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, int64(10), store.Batch(testProductID, "B1").OnHand)
	assert.Equal(t, int64(2), store.Batch(testProductID, "B2").OnHand)
	assert.Equal(t, int64(12), store.Product(testProductID).OnHand)
}

func TestEngine_TransferRechazaMismoLote(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		_, err := engine.Transfer(r, ledger.TransferInput{
			ProductID: testProductID, FromBatch: "B1", ToBatchNumber: "B1", Quantity: 1,
		})
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Diario
// ──────────────────────────────────────────────────────────────────────────────

// Reproducir el diario de un lote desde cero llega al stock actual: el diario
// es la fuente de verdad y los saldos cacheados son derivables.
func TestEngine_DiarioReproduceElSaldo(t *testing.T) {
	store := newStoreWithProduct(t)
	engine := ledger.NewEngine()

	receive(t, store, engine, "B1", 10, nil)
	err := store.Run(context.Background(), func(r ledger.Repos) error {
		if _, err := engine.Dispense(r, ledger.DispenseInput{ProductID: testProductID, BatchNumber: "B1", Quantity: 4}); err != nil {
			return err
		}
		if _, err := engine.ReturnCredit(r, ledger.ReturnCreditInput{ProductID: testProductID, BatchNumber: "B1", Quantity: 1}); err != nil {
			return err
		}
		_, err := engine.Adjust(r, ledger.AdjustInput{ProductID: testProductID, BatchNumber: "B1", Delta: -2, Reason: "daño"})
		return err
	})
	require.NoError(t, err)

	var balance int64
	for _, m := range store.Movements() {
		if m.BatchNumber != "B1" {
			continue
		}
		balance += m.Quantity
		assert.Equal(t, m.BalanceAfter, balance, "el saldo registrado de cada asiento coincide con la reproducción")
	}
	assert.Equal(t, store.Batch(testProductID, "B1").OnHand, balance)
}
