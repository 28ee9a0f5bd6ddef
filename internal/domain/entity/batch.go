package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote de un producto: clave (ProductID, BatchNumber) única.
// OnHand nunca es negativo; solo lo mutan las operaciones del motor de
// inventario dentro de una transacción. Un lote en cero puede eliminarse;
// uno con stock no.
type Batch struct {
	ID            string
	ProductID     string
	BatchNumber   string
	Expiry        *time.Time // requerido para dispensar con política FEFO
	OnHand        int64
	PurchasePrice decimal.Decimal
	MRP           decimal.Decimal
	SalePrice     decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasStock indica si el lote tiene unidades disponibles.
func (b *Batch) HasStock() bool {
	return b.OnHand > 0
}
