package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger/ledgertest"
	"github.com/tu-usuario/farmacia-pro/internal/application/usecase"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
)

func newProductUC(store *ledgertest.Store) *usecase.ProductUseCase {
	repos := store.LedgerRepos()
	return usecase.NewProductUseCase(repos.Products, repos.Batches)
}

func TestCreateProduct(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newProductUC(store)

	resp, err := uc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Code:       "IBU-400",
		Name:       "Ibuprofeno 400mg",
		Unit:       "tableta",
		GSTRate:    decimal.NewFromFloat(0.12),
		MinStock:   20,
		SalePrice:  decimal.NewFromInt(15),
		Controlled: false,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "IBU-400", resp.Code)
	// El alta siempre parte de stock cero
	assert.Equal(t, int64(0), resp.OnHand)
}

func TestCreateProduct_CodigoDuplicado(t *testing.T) {
	store := ledgertest.NewStore()
	uc := newProductUC(store)

	req := dto.CreateProductRequest{Code: "IBU-400", Name: "Ibuprofeno 400mg", Unit: "tableta"}
	_, err := uc.CreateProduct(context.Background(), req)
	require.NoError(t, err)

	_, err = uc.CreateProduct(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateNumber))
}

// Update parcial: solo los campos presentes cambian y el stock nunca.
func TestUpdateProduct_ParcialSinTocarStock(t *testing.T) {
	store := ledgertest.NewStore()
	store.SeedProduct(&entity.Product{
		ID: "prod-1", Code: "IBU-400", Name: "Ibuprofeno 400mg",
		Unit: "tableta", SalePrice: decimal.NewFromInt(15), OnHand: 30,
	})
	uc := newProductUC(store)

	newPrice := decimal.NewFromInt(18)
	resp, err := uc.UpdateProduct(context.Background(), "prod-1", dto.UpdateProductRequest{
		SalePrice: &newPrice,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ibuprofeno 400mg", resp.Name, "los campos ausentes no cambian")
	assert.True(t, resp.SalePrice.Equal(newPrice))
	assert.Equal(t, int64(30), store.Product("prod-1").OnHand)
}

func TestUpdateProduct_NoEncontrado(t *testing.T) {
	uc := newProductUC(ledgertest.NewStore())
	_, err := uc.UpdateProduct(context.Background(), "no-existe", dto.UpdateProductRequest{})
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
}

func TestDeleteBatch_SoloSinStock(t *testing.T) {
	store := ledgertest.NewStore()
	store.SeedProduct(&entity.Product{ID: "prod-1", Code: "IBU-400", Name: "Ibuprofeno"})
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "B-CON", OnHand: 5})
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "B-SIN", OnHand: 0})
	uc := newProductUC(store)

	err := uc.DeleteBatch(context.Background(), "prod-1", "B-CON")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBatchHasStock))
	assert.NotNil(t, store.Batch("prod-1", "B-CON"))

	err = uc.DeleteBatch(context.Background(), "prod-1", "B-SIN")
	require.NoError(t, err)
	assert.Nil(t, store.Batch("prod-1", "B-SIN"))

	err = uc.DeleteBatch(context.Background(), "prod-1", "B-SIN")
	assert.True(t, errors.Is(err, domain.ErrBatchNotFound))
}

func TestDeleteProduct_SoloSinStock(t *testing.T) {
	store := ledgertest.NewStore()
	store.SeedProduct(&entity.Product{ID: "prod-1", Code: "IBU-400", Name: "Ibuprofeno"})
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "B1", OnHand: 5})
	uc := newProductUC(store)

	err := uc.DeleteProduct(context.Background(), "prod-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProductHasStock))
	assert.NotNil(t, store.Product("prod-1"))

	store.SeedProduct(&entity.Product{ID: "prod-2", Code: "OTRO", Name: "Otro"})
	require.NoError(t, uc.DeleteProduct(context.Background(), "prod-2"))
	assert.Nil(t, store.Product("prod-2"))
}

func TestListBatches_IncluyeAgotados(t *testing.T) {
	store := ledgertest.NewStore()
	store.SeedProduct(&entity.Product{ID: "prod-1", Code: "IBU-400", Name: "Ibuprofeno"})
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "B1", OnHand: 5})
	store.SeedBatch(&entity.Batch{ProductID: "prod-1", BatchNumber: "B2", OnHand: 0})
	uc := newProductUC(store)

	batches, err := uc.ListBatches(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Len(t, batches, 2)

	_, err = uc.ListBatches(context.Background(), "no-existe")
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
}
