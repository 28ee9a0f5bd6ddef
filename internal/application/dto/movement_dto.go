package dto

import "time"

// Tipos aceptados en POST /api/stock-movements.
const (
	MovementRequestAdjust   = "adjust"
	MovementRequestTransfer = "transfer"
)

// NewBatchSpecRequest especificación de lote destino nuevo en un traslado.
type NewBatchSpecRequest struct {
	BatchNumber string     `json:"batch_number" validate:"required"`
	Expiry      *time.Time `json:"expiry,omitempty"`
}

// StockMovementRequest body para POST /api/stock-movements.
// adjust: ProductID, BatchNumber, Delta != 0, Reason.
// transfer: ProductID, FromBatch, Quantity > 0 y ToBatchNumber o NewBatch.
type StockMovementRequest struct {
	Type        string               `json:"type" validate:"required,oneof=adjust transfer"`
	ProductID   string               `json:"product_id" validate:"required"`
	BatchNumber string               `json:"batch_number,omitempty"`
	Delta       int64                `json:"delta,omitempty"`
	FromBatch   string               `json:"from_batch,omitempty"`
	ToBatch     string               `json:"to_batch,omitempty"`
	NewBatch    *NewBatchSpecRequest `json:"new_batch,omitempty"`
	Quantity    int64                `json:"quantity,omitempty"`
	Reason      string               `json:"reason" validate:"required"`
}

// MovementResponse asiento del diario expuesto al UI como historial.
type MovementResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	ProductID     string    `json:"product_id"`
	BatchNumber   string    `json:"batch_number"`
	ToBatchNumber string    `json:"to_batch_number,omitempty"`
	Quantity      int64     `json:"quantity"`
	BalanceAfter  int64     `json:"balance_after"`
	Reason        string    `json:"reason,omitempty"`
	RefType       string    `json:"ref_type,omitempty"`
	RefID         string    `json:"ref_id,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
