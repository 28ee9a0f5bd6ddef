package repository

import (
	"time"

	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
)

// MovementFilter criterios de consulta del diario de movimientos.
type MovementFilter struct {
	ProductID   string
	BatchNumber string
	Type        string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// MovementRepository puerto del diario de inventario: solo inserción y
// consulta. No existen Update ni Delete; el diario es inmutable.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	List(filter MovementFilter) ([]*entity.Movement, error)
	// ListByBatchAsc devuelve todos los asientos de un lote en orden de
	// inserción, para el reporte de kardex y la verificación de replay.
	ListByBatchAsc(productID, batchNumber string) ([]*entity.Movement, error)
}
