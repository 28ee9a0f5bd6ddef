package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pro/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func batch(number string, onHand int64, expiry *time.Time, createdAt time.Time) *entity.Batch {
	return &entity.Batch{
		ProductID:   "prod-1",
		BatchNumber: number,
		Expiry:      expiry,
		OnHand:      onHand,
		CreatedAt:   createdAt,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Allocate FEFO
// ──────────────────────────────────────────────────────────────────────────────

// El lote que vence antes se consume primero aunque esté declarado al final.
func TestAllocate_FEFOPrimeroElQueVenceAntes(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	batches := []*entity.Batch{
		batch("B-TARDE", 10, datePtr(2027, 6, 1), base),
		batch("B-PRONTO", 10, datePtr(2026, 9, 1), base.Add(time.Hour)),
	}

	allocs, err := inventory.Allocate("prod-1", batches, 4, inventory.PolicyFEFO)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, "B-PRONTO", allocs[0].BatchNumber)
	assert.Equal(t, int64(4), allocs[0].Quantity)
}

// Una cantidad mayor al primer lote se parte entre varios, en orden FEFO.
func TestAllocate_ParteLaCantidadEntreLotes(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	batches := []*entity.Batch{
		batch("B2", 7, datePtr(2027, 1, 1), base),
		batch("B1", 5, datePtr(2026, 6, 1), base),
	}

	allocs, err := inventory.Allocate("prod-1", batches, 8, inventory.PolicyFEFO)
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, inventory.Allocation{BatchNumber: "B1", Quantity: 5}, allocs[0])
	assert.Equal(t, inventory.Allocation{BatchNumber: "B2", Quantity: 3}, allocs[1])
}

// Lotes sin fecha de vencimiento van al final bajo FEFO.
func TestAllocate_SinVencimientoAlFinal(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	batches := []*entity.Batch{
		batch("B-SINFECHA", 10, nil, base),
		batch("B-CONFECHA", 3, datePtr(2027, 1, 1), base.Add(time.Hour)),
	}

	allocs, err := inventory.Allocate("prod-1", batches, 5, inventory.PolicyFEFO)
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, "B-CONFECHA", allocs[0].BatchNumber)
	assert.Equal(t, int64(3), allocs[0].Quantity)
	assert.Equal(t, "B-SINFECHA", allocs[1].BatchNumber)
	assert.Equal(t, int64(2), allocs[1].Quantity)
}

// Empate de vencimiento y creación: desempata el número de lote, para que la
// asignación sea determinista sin importar el orden de entrada.
func TestAllocate_EmpateDeterministaPorNumeroDeLote(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := datePtr(2026, 12, 1)
	forward := []*entity.Batch{
		batch("A", 5, expiry, base),
		batch("B", 5, expiry, base),
	}
	reversed := []*entity.Batch{
		batch("B", 5, expiry, base),
		batch("A", 5, expiry, base),
	}

	a1, err := inventory.Allocate("prod-1", forward, 6, inventory.PolicyFEFO)
	require.NoError(t, err)
	a2, err := inventory.Allocate("prod-1", reversed, 6, inventory.PolicyFEFO)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, "A", a1[0].BatchNumber)
}

// Lotes en cero no participan de la asignación.
func TestAllocate_IgnoraLotesEnCero(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	batches := []*entity.Batch{
		batch("B-VACIO", 0, datePtr(2026, 3, 1), base),
		batch("B-LLENO", 10, datePtr(2026, 9, 1), base),
	}

	allocs, err := inventory.Allocate("prod-1", batches, 10, inventory.PolicyFEFO)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, "B-LLENO", allocs[0].BatchNumber)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Allocate FIFO
// ──────────────────────────────────────────────────────────────────────────────

// FIFO ignora el vencimiento y usa el orden de creación.
func TestAllocate_FIFOPorOrdenDeCreacion(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	batches := []*entity.Batch{
		// Vence antes pero se creó después: bajo FIFO no gana
		batch("B-NUEVO", 10, datePtr(2026, 3, 1), base.Add(time.Hour)),
		batch("B-VIEJO", 10, datePtr(2027, 3, 1), base),
	}

	allocs, err := inventory.Allocate("prod-1", batches, 4, inventory.PolicyFIFO)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, "B-VIEJO", allocs[0].BatchNumber)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de errores
// ──────────────────────────────────────────────────────────────────────────────

// El total disponible no cubre lo pedido: ShortageError con el faltante.
func TestAllocate_StockInsuficiente(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	batches := []*entity.Batch{
		batch("B1", 3, datePtr(2026, 6, 1), base),
		batch("B2", 2, datePtr(2026, 9, 1), base),
	}

	allocs, err := inventory.Allocate("prod-1", batches, 8, inventory.PolicyFEFO)
	require.Error(t, err)
	assert.Nil(t, allocs)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var shortage *inventory.ShortageError
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, int64(8), shortage.Requested)
	assert.Equal(t, int64(5), shortage.Available)
	assert.Equal(t, int64(3), shortage.Missing())
}

func TestAllocate_CantidadInvalida(t *testing.T) {
	_, err := inventory.Allocate("prod-1", nil, 0, inventory.PolicyFEFO)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = inventory.Allocate("prod-1", nil, -3, inventory.PolicyFEFO)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ParsePolicy
// ──────────────────────────────────────────────────────────────────────────────

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, inventory.PolicyFIFO, inventory.ParsePolicy("fifo"))
	assert.Equal(t, inventory.PolicyFEFO, inventory.ParsePolicy("fefo"))
	// Valor desconocido cae al default
	assert.Equal(t, inventory.PolicyFEFO, inventory.ParsePolicy("lifo"))
	assert.Equal(t, inventory.PolicyFEFO, inventory.ParsePolicy(""))
}
