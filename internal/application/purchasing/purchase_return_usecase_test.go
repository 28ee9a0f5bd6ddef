package purchasing_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger/ledgertest"
	"github.com/tu-usuario/farmacia-pro/internal/application/purchasing"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
)

func newPurchaseReturnUC(store *ledgertest.Store) *purchasing.PurchaseReturnUseCase {
	repos := store.LedgerRepos()
	return purchasing.NewPurchaseReturnUseCase(store, ledger.NewEngine(), repos.Products, repos.Batches, nil)
}

// La devolución a proveedor descuenta del lote indicado y numera con PR.
func TestCreatePurchaseReturn_DescuentaDelLote(t *testing.T) {
	store := ledgertest.NewStore()
	seedAmoxicilina(store)
	store.SeedBatch(&entity.Batch{
		ProductID: "prod-1", BatchNumber: "L-100", OnHand: 20,
		PurchasePrice: decimal.NewFromInt(20),
	})

	uc := newPurchaseReturnUC(store)
	resp, err := uc.CreatePurchaseReturn(context.Background(), testActor, dto.CreatePurchaseReturnRequest{
		Supplier:     "Droguería Central",
		RefInvoiceNo: "FAC-001",
		Reason:       "lote próximo a vencer",
		Lines: []dto.PurchaseReturnLineRequest{
			{ProductID: "prod-1", BatchNumber: "L-100", Quantity: 5},
		},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.ReturnNo, "PR-"))
	// Sin precio explícito, el importe usa el costo del lote
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(15), store.Batch("prod-1", "L-100").OnHand)
	assert.Equal(t, int64(15), store.Product("prod-1").OnHand)

	movs := store.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeDispense, movs[0].Type)
	assert.Equal(t, entity.RefTypePurchaseReturn, movs[0].RefType)
}

// Devolver más de lo disponible en el lote se rechaza sin mutar nada.
func TestCreatePurchaseReturn_ExcedeDisponible(t *testing.T) {
	store := ledgertest.NewStore()
	seedAmoxicilina(store)
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "L-100", OnHand: 3})

	uc := newPurchaseReturnUC(store)
	_, err := uc.CreatePurchaseReturn(context.Background(), testActor, dto.CreatePurchaseReturnRequest{
		Supplier: "Droguería Central",
		Lines: []dto.PurchaseReturnLineRequest{
			{ProductID: "prod-1", BatchNumber: "L-100", Quantity: 5},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, int64(3), store.Batch("prod-1", "L-100").OnHand)
	assert.Empty(t, store.Movements())
}

func TestCreatePurchaseReturn_Validaciones(t *testing.T) {
	store := ledgertest.NewStore()
	seedAmoxicilina(store)
	uc := newPurchaseReturnUC(store)

	_, err := uc.CreatePurchaseReturn(context.Background(), testActor, dto.CreatePurchaseReturnRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.CreatePurchaseReturn(context.Background(), testActor, dto.CreatePurchaseReturnRequest{
		Supplier: "Proveedor",
		Lines:    []dto.PurchaseReturnLineRequest{{ProductID: "prod-1", BatchNumber: "NO-EXISTE", Quantity: 1}},
	})
	assert.True(t, errors.Is(err, domain.ErrBatchNotFound))
}
