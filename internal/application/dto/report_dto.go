package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRowDTO fila del kardex de un lote: asiento más saldo corrido.
type LedgerRowDTO struct {
	Type         string    `json:"type"`
	Quantity     int64     `json:"quantity"`
	Balance      int64     `json:"balance"`
	RefType      string    `json:"ref_type,omitempty"`
	RefID        string    `json:"ref_id,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ReplayedFrom int64     `json:"-"`
}

// StockLedgerDTO kardex de un lote con verificación de replay: Consistent
// es false si la cadena de deltas no reproduce el saldo registrado.
type StockLedgerDTO struct {
	ProductID   string         `json:"product_id"`
	BatchNumber string         `json:"batch_number"`
	OnHand      int64          `json:"on_hand"`
	Consistent  bool           `json:"consistent"`
	Rows        []LedgerRowDTO `json:"rows"`
}

// LowStockDTO producto en o bajo su umbral de reorden.
type LowStockDTO struct {
	ProductID string `json:"product_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	OnHand    int64  `json:"on_hand"`
	MinStock  int64  `json:"min_stock"`
}

// ExpiringBatchDTO lote con stock que vence dentro del horizonte pedido.
type ExpiringBatchDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	BatchNumber string          `json:"batch_number"`
	Expiry      time.Time       `json:"expiry"`
	OnHand      int64           `json:"on_hand"`
	MRP         decimal.Decimal `json:"mrp"`
}

// ComplianceEntryDTO asiento del registro de controlados.
type ComplianceEntryDTO struct {
	BillNo      string    `json:"bill_no"`
	ProductName string    `json:"product_name"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int64     `json:"quantity"`
	Customer    string    `json:"customer,omitempty"`
	DoctorName  string    `json:"doctor_name,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
