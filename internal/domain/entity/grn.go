package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// GRN (Goods Received Note) registra la recepción de mercancía de un
// proveedor. InvoiceNo es único; las líneas son una foto desnormalizada
// tomada al momento de la transacción para que el documento histórico no
// cambie si luego se editan precios del catálogo.
type GRN struct {
	ID          string
	InvoiceNo   string
	InvoiceDate time.Time
	Vendor      string
	GrandTotal  decimal.Decimal
	Lines       []GRNLine
	CreatedBy   string
	CreatedAt   time.Time
}

// GRNLine línea de recepción. Quantity paga; FreeQuantity es bonificación
// del proveedor (entra al stock, no al total).
type GRNLine struct {
	ID            string
	GRNID         string
	ProductID     string
	ProductName   string
	BatchNumber   string
	Expiry        *time.Time
	Quantity      int64
	FreeQuantity  int64
	PurchasePrice decimal.Decimal
	MRP           decimal.Decimal
	SalePrice     decimal.Decimal
	Amount        decimal.Decimal // Quantity * PurchasePrice
}
