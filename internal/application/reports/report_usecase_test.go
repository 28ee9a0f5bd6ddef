package reports_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger/ledgertest"
	"github.com/tu-usuario/farmacia-pro/internal/application/reports"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
)

func newReportUC(store *ledgertest.Store) *reports.ReportUseCase {
	repos := store.LedgerRepos()
	return reports.NewReportUseCase(repos.Batches, repos.Movements, nil, nil)
}

// El kardex reproduce el diario desde cero y confirma que los saldos
// registrados y el stock actual del lote coinciden.
func TestStockLedger_ReproduccionConsistente(t *testing.T) {
	store := ledgertest.NewStore()
	store.SeedProduct(&entity.Product{ID: "prod-1", Code: "PARA-500", Name: "Paracetamol 500mg"})
	engine := ledger.NewEngine()

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		if _, err := engine.Receive(r, ledger.ReceiveInput{
			ProductID: "prod-1", BatchNumber: "B1", Quantity: 10, RefType: entity.RefTypeGRN, RefID: "grn-1",
		}); err != nil {
			return err
		}
		if _, err := engine.Dispense(r, ledger.DispenseInput{
			ProductID: "prod-1", BatchNumber: "B1", Quantity: 4, RefType: entity.RefTypeSale, RefID: "sale-1",
		}); err != nil {
			return err
		}
		_, err := engine.Adjust(r, ledger.AdjustInput{
			ProductID: "prod-1", BatchNumber: "B1", Delta: -1, Reason: "daño", RefType: entity.RefTypeManual,
		})
		return err
	})
	require.NoError(t, err)

	uc := newReportUC(store)
	out, err := uc.StockLedger(context.Background(), "prod-1", "B1")
	require.NoError(t, err)

	assert.True(t, out.Consistent)
	assert.Equal(t, int64(5), out.OnHand)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, entity.MovementTypeReceive, out.Rows[0].Type)
	assert.Equal(t, int64(10), out.Rows[0].Balance)
	assert.Equal(t, int64(6), out.Rows[1].Balance)
	assert.Equal(t, int64(5), out.Rows[2].Balance)
}

// Un asiento con saldo registrado que no cuadra con la reproducción marca el
// kardex como inconsistente sin ocultar las filas.
func TestStockLedger_DetectaInconsistencia(t *testing.T) {
	store := ledgertest.NewStore()
	store.SeedProduct(&entity.Product{ID: "prod-1", Code: "PARA-500", Name: "Paracetamol 500mg"})
	engine := ledger.NewEngine()

	err := store.Run(context.Background(), func(r ledger.Repos) error {
		if _, err := engine.Receive(r, ledger.ReceiveInput{
			ProductID: "prod-1", BatchNumber: "B1", Quantity: 10,
		}); err != nil {
			return err
		}
		// Asiento corrupto insertado por fuera del motor
		return r.Movements.Create(&entity.Movement{
			ID: "corrupto", Type: entity.MovementTypeAdjust,
			ProductID: "prod-1", BatchNumber: "B1",
			Quantity: -2, BalanceAfter: 99,
		})
	})
	require.NoError(t, err)

	uc := newReportUC(store)
	out, err := uc.StockLedger(context.Background(), "prod-1", "B1")
	require.NoError(t, err)

	assert.False(t, out.Consistent)
	assert.Len(t, out.Rows, 2)
}

func TestStockLedger_LoteInexistente(t *testing.T) {
	uc := newReportUC(ledgertest.NewStore())

	_, err := uc.StockLedger(context.Background(), "prod-1", "NO-EXISTE")
	assert.True(t, errors.Is(err, domain.ErrBatchNotFound))
}
