package ledger

import (
	"errors"

	"github.com/tu-usuario/farmacia-pro/internal/domain"
)

// RetryConflict ejecuta fn hasta attempts veces mientras retorne
// domain.ErrConflict (carrera de numeración o aborto de serialización).
// Cualquier otro error corta de inmediato: los errores de invariante no son
// reintentables. La política de backoff queda en el caller de la API; aquí
// el reintento es inmediato porque la transacción perdedora ya esperó el
// lock de la ganadora.
func RetryConflict(attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return err
}
