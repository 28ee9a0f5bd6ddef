package inventory

import (
	"fmt"
	"sort"

	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
)

// Policy política de dispensación: qué lote se consume primero.
type Policy string

const (
	// PolicyFEFO primero el lote que vence antes (first-expired, first-out).
	PolicyFEFO Policy = "fefo"
	// PolicyFIFO primero el lote creado antes.
	PolicyFIFO Policy = "fifo"
)

// ParsePolicy normaliza el valor de configuración; desconocido cae a FEFO.
func ParsePolicy(s string) Policy {
	if Policy(s) == PolicyFIFO {
		return PolicyFIFO
	}
	return PolicyFEFO
}

// Allocation indica cuántas unidades tomar de un lote.
type Allocation struct {
	BatchNumber string
	Quantity    int64
}

// ShortageError indica que los lotes disponibles no cubren la cantidad pedida.
type ShortageError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("%v: producto %s: solicitado %d, disponible %d",
		domain.ErrInsufficientStock, e.ProductID, e.Requested, e.Available)
}

// Unwrap permite clasificar con errors.Is(err, domain.ErrInsufficientStock).
func (e *ShortageError) Unwrap() error { return domain.ErrInsufficientStock }

// Missing devuelve las unidades que faltaron para cubrir la solicitud.
func (e *ShortageError) Missing() int64 { return e.Requested - e.Available }

// Allocate decide de qué lotes tomar qty unidades de un producto. Función
// pura: no toca stock; el caller aplica las asignaciones vía el motor de
// inventario dentro de su transacción.
//
// FEFO ordena por vencimiento ascendente (lotes sin vencimiento al final);
// FIFO por orden de creación. Empates se resuelven por fecha de creación y
// luego por número de lote, para que la asignación sea determinista.
func Allocate(productID string, batches []*entity.Batch, qty int64, policy Policy) ([]Allocation, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: cantidad debe ser positiva", domain.ErrInvalidInput)
	}

	available := make([]*entity.Batch, 0, len(batches))
	var total int64
	for _, b := range batches {
		if b.HasStock() {
			available = append(available, b)
			total += b.OnHand
		}
	}
	if total < qty {
		return nil, &ShortageError{ProductID: productID, Requested: qty, Available: total}
	}

	sort.SliceStable(available, func(i, j int) bool {
		a, b := available[i], available[j]
		if policy == PolicyFEFO {
			switch {
			case a.Expiry == nil && b.Expiry == nil:
				// sin vencimiento: cae al orden de creación
			case a.Expiry == nil:
				return false
			case b.Expiry == nil:
				return true
			case !a.Expiry.Equal(*b.Expiry):
				return a.Expiry.Before(*b.Expiry)
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.BatchNumber < b.BatchNumber
	})

	var allocs []Allocation
	remaining := qty
	for _, b := range available {
		take := b.OnHand
		if take > remaining {
			take = remaining
		}
		allocs = append(allocs, Allocation{BatchNumber: b.BatchNumber, Quantity: take})
		remaining -= take
		if remaining == 0 {
			break
		}
	}
	return allocs, nil
}
