package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale representa una venta de mostrador (POS). BillNo es único, con secuencia
// por día (INV-YYYYMMDD-NNNN). Las líneas guardan la foto del producto y lote
// al momento de la venta.
type Sale struct {
	ID         string
	BillNo     string
	Date       time.Time
	Customer   string
	DoctorName string // prescriptor, requerido en el registro de controlados
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
	Lines      []SaleLine
	CreatedBy  string
	CreatedAt  time.Time
}

// SaleLine línea de venta contra un lote concreto. Una línea pedida sin lote
// explícito puede partirse en varias líneas por la asignación FEFO.
type SaleLine struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string
	BatchNumber string
	Quantity    int64
	SalePrice   decimal.Decimal
	GSTRate     decimal.Decimal
	Amount      decimal.Decimal // Quantity * SalePrice
}
