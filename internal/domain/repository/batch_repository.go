package repository

import "github.com/tu-usuario/farmacia-pro/internal/domain/entity"

// BatchRepository puerto de persistencia de lotes. Los lotes son filas de
// primera clase con clave (product_id, batch_number), de modo que dos
// transacciones sobre lotes distintos del mismo producto no se bloquean
// entre sí más allá de la fila del producto.
type BatchRepository interface {
	Create(batch *entity.Batch) error
	Get(productID, batchNumber string) (*entity.Batch, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE). Devuelve
	// nil sin error si el lote no existe.
	GetForUpdate(productID, batchNumber string) (*entity.Batch, error)
	// Save persiste OnHand y precios de un lote ya bloqueado.
	Save(batch *entity.Batch) error
	ListByProduct(productID string) ([]*entity.Batch, error)
	Delete(productID, batchNumber string) error
}
