package ledger_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
)

func TestRetryConflict_ReintentaSoloConflictos(t *testing.T) {
	calls := 0
	err := ledger.RetryConflict(3, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: numeración", domain.ErrConflict)
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryConflict_AgotaIntentos(t *testing.T) {
	calls := 0
	err := ledger.RetryConflict(3, func() error {
		calls++
		return domain.ErrConflict
	})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, 3, calls)
}

// Los errores de invariante no son reintentables: cortan al primer intento.
func TestRetryConflict_NoReintentaOtrosErrores(t *testing.T) {
	calls := 0
	err := ledger.RetryConflict(3, func() error {
		calls++
		return domain.ErrInsufficientStock
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 1, calls)
}
