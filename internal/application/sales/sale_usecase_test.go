package sales_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger/ledgertest"
	"github.com/tu-usuario/farmacia-pro/internal/application/sales"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
	domaininv "github.com/tu-usuario/farmacia-pro/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testActor = "user-1"

func expiryAt(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func seedParacetamol(store *ledgertest.Store) {
	store.SeedProduct(&entity.Product{
		ID:        "prod-1",
		Code:      "PARA-500",
		Name:      "Paracetamol 500mg",
		Unit:      "tableta",
		GSTRate:   decimal.NewFromFloat(0.12),
		SalePrice: decimal.NewFromInt(10),
	})
}

func seedCodeina(store *ledgertest.Store) {
	store.SeedProduct(&entity.Product{
		ID:         "prod-ctrl",
		Code:       "COD-30",
		Name:       "Codeína 30mg",
		Unit:       "tableta",
		SalePrice:  decimal.NewFromInt(50),
		Controlled: true,
	})
}

func newSaleUC(store *ledgertest.Store) *sales.SaleUseCase {
	return sales.NewSaleUseCase(store, ledger.NewEngine(), nil, domaininv.PolicyFEFO)
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateSale
// ──────────────────────────────────────────────────────────────────────────────

// Una línea sin lote explícito se parte entre lotes en orden de vencimiento.
func TestCreateSale_FEFOParteLaLineaEntreLotes(t *testing.T) {
	store := ledgertest.NewStore()
	seedParacetamol(store)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SeedBatch(&entity.Batch{
		ProductID: "prod-1", BatchNumber: "B-PRONTO", OnHand: 5,
		Expiry: expiryAt(2026, 10, 1), SalePrice: decimal.NewFromInt(10), CreatedAt: base,
	})
	store.SeedBatch(&entity.Batch{
		ProductID: "prod-1", BatchNumber: "B-TARDE", OnHand: 10,
		Expiry: expiryAt(2027, 10, 1), SalePrice: decimal.NewFromInt(10), CreatedAt: base,
	})

	uc := newSaleUC(store)
	resp, err := uc.CreateSale(context.Background(), testActor, dto.CreateSaleRequest{
		Customer: "Ana",
		Lines:    []dto.SaleLineRequest{{ProductID: "prod-1", Quantity: 8}},
	})
	require.NoError(t, err)

	// Dos líneas persistidas: 5 del lote próximo a vencer y 3 del siguiente
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, "B-PRONTO", resp.Lines[0].BatchNumber)
	assert.Equal(t, int64(5), resp.Lines[0].Quantity)
	assert.Equal(t, "B-TARDE", resp.Lines[1].BatchNumber)
	assert.Equal(t, int64(3), resp.Lines[1].Quantity)

	assert.Equal(t, int64(0), store.Batch("prod-1", "B-PRONTO").OnHand)
	assert.Equal(t, int64(7), store.Batch("prod-1", "B-TARDE").OnHand)
	assert.Equal(t, int64(7), store.Product("prod-1").OnHand)

	// Numeración con alcance diario y totales con impuesto
	assert.True(t, strings.HasPrefix(resp.BillNo, "INV-"))
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(80)))
	assert.True(t, resp.TaxTotal.Equal(decimal.NewFromFloat(9.6)))
	assert.True(t, resp.GrandTotal.Equal(decimal.NewFromFloat(89.6)))
}

// Si cualquier línea no puede despacharse, la venta completa se revierte,
// incluidas las salidas ya aplicadas de líneas anteriores.
func TestCreateSale_RollbackCompletoAnteLineaSinStock(t *testing.T) {
	store := ledgertest.NewStore()
	seedParacetamol(store)
	seedCodeina(store)
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "B1", OnHand: 10})
	store.SeedBatch(&entity.Batch{ProductID: "prod-ctrl", BatchNumber: "C1", OnHand: 2})

	uc := newSaleUC(store)
	_, err := uc.CreateSale(context.Background(), testActor, dto.CreateSaleRequest{
		Lines: []dto.SaleLineRequest{
			{ProductID: "prod-1", Quantity: 4},
			{ProductID: "prod-ctrl", Quantity: 5}, // solo hay 2
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "línea 2")

	// Nada quedó a medias: ni stock, ni venta, ni diario, ni controlados
	assert.Equal(t, int64(10), store.Batch("prod-1", "B1").OnHand)
	assert.Equal(t, int64(2), store.Batch("prod-ctrl", "C1").OnHand)
	assert.Empty(t, store.Sales())
	assert.Empty(t, store.Movements())
	assert.Empty(t, store.ComplianceEntries())
}

// Cada línea de producto controlado queda en el registro de dispensación en
// la misma transacción que la venta.
func TestCreateSale_ControladoVaAlRegistro(t *testing.T) {
	store := ledgertest.NewStore()
	seedParacetamol(store)
	seedCodeina(store)
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "B1", OnHand: 10})
	store.SeedBatch(&entity.Batch{ProductID: "prod-ctrl", BatchNumber: "C1", OnHand: 10})

	uc := newSaleUC(store)
	resp, err := uc.CreateSale(context.Background(), testActor, dto.CreateSaleRequest{
		Customer:   "Pedro Pérez",
		DoctorName: "Dra. Gómez",
		Lines: []dto.SaleLineRequest{
			{ProductID: "prod-1", Quantity: 2},
			{ProductID: "prod-ctrl", BatchNumber: "C1", Quantity: 3},
		},
	})
	require.NoError(t, err)

	entries := store.ComplianceEntries()
	require.Len(t, entries, 1, "solo la línea controlada va al registro")
	assert.Equal(t, resp.ID, entries[0].SaleID)
	assert.Equal(t, resp.BillNo, entries[0].BillNo)
	assert.Equal(t, "prod-ctrl", entries[0].ProductID)
	assert.Equal(t, "C1", entries[0].BatchNumber)
	assert.Equal(t, int64(3), entries[0].Quantity)
	assert.Equal(t, "Pedro Pérez", entries[0].Customer)
	assert.Equal(t, "Dra. Gómez", entries[0].DoctorName)
}

// El lote explícito se respeta aunque FEFO hubiera elegido otro.
func TestCreateSale_LoteExplicitoSeRespeta(t *testing.T) {
	store := ledgertest.NewStore()
	seedParacetamol(store)
	store.SeedBatch(&entity.Batch{
		ProductID: "prod-1", BatchNumber: "B-PRONTO", OnHand: 10, Expiry: expiryAt(2026, 10, 1),
	})
	store.SeedBatch(&entity.Batch{
		ProductID: "prod-1", BatchNumber: "B-TARDE", OnHand: 10, Expiry: expiryAt(2027, 10, 1),
	})

	uc := newSaleUC(store)
	resp, err := uc.CreateSale(context.Background(), testActor, dto.CreateSaleRequest{
		Lines: []dto.SaleLineRequest{{ProductID: "prod-1", BatchNumber: "B-TARDE", Quantity: 4}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "B-TARDE", resp.Lines[0].BatchNumber)
	assert.Equal(t, int64(10), store.Batch("prod-1", "B-PRONTO").OnHand)
}

func TestCreateSale_ValidacionesDeEntrada(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newSaleUC(store)

	_, err := uc.CreateSale(context.Background(), testActor, dto.CreateSaleRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.CreateSale(context.Background(), testActor, dto.CreateSaleRequest{
		Lines: []dto.SaleLineRequest{{ProductID: "prod-1", Quantity: -1}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.CreateSale(context.Background(), testActor, dto.CreateSaleRequest{
		Lines: []dto.SaleLineRequest{{ProductID: "no-existe", Quantity: 1}},
	})
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
}
