package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesReturn registra la devolución de un cliente contra una venta original.
// La suma de devoluciones por línea (producto, lote) nunca excede la cantidad
// vendida en esa línea; el caso de uso lo valida antes de tocar stock.
type SalesReturn struct {
	ID        string
	ReturnNo  string
	SaleID    string
	BillNo    string // foto del número de la venta original
	Date      time.Time
	Reason    string
	Total     decimal.Decimal
	Lines     []SalesReturnLine
	CreatedBy string
	CreatedAt time.Time
}

// SalesReturnLine línea devuelta: reingresa al lote original.
type SalesReturnLine struct {
	ID          string
	ReturnID    string
	ProductID   string
	ProductName string
	BatchNumber string
	Quantity    int64
	SalePrice   decimal.Decimal
	Amount      decimal.Decimal
}

// PurchaseReturn registra la devolución de mercancía a un proveedor.
// Descuenta stock del lote; falla si el lote no cubre la cantidad.
type PurchaseReturn struct {
	ID           string
	ReturnNo     string
	Supplier     string
	RefInvoiceNo string // GRN de referencia, opcional
	Date         time.Time
	Reason       string
	Total        decimal.Decimal
	Lines        []PurchaseReturnLine
	CreatedBy    string
	CreatedAt    time.Time
}

// PurchaseReturnLine línea devuelta al proveedor.
type PurchaseReturnLine struct {
	ID            string
	ReturnID      string
	ProductID     string
	ProductName   string
	BatchNumber   string
	Quantity      int64
	PurchasePrice decimal.Decimal
	Amount        decimal.Decimal
}
