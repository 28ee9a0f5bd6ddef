package entity

import "time"

// Tipos de movimiento del diario de inventario.
const (
	MovementTypeReceive  = "RECEIVE"  // entrada por GRN o destino de traslado
	MovementTypeDispense = "DISPENSE" // salida por venta o devolución a proveedor
	MovementTypeReturn   = "RETURN"   // reingreso por devolución de venta
	MovementTypeAdjust   = "ADJUST"   // ajuste manual (daño, conteo)
	MovementTypeTransfer = "TRANSFER" // traslado entre lotes del mismo producto
)

// Tipos de documento que originan movimientos (Movement.RefType).
const (
	RefTypeGRN            = "grn"
	RefTypeSale           = "sale"
	RefTypeSalesReturn    = "sales_return"
	RefTypePurchaseReturn = "purchase_return"
	RefTypeManual         = "manual" // ajuste o traslado sin documento comercial
)

// Movement es un asiento inmutable del diario de inventario: un registro por
// lote tocado por operación. Quantity es el delta con signo; BalanceAfter es
// el stock del lote inmediatamente después de aplicarlo, de modo que el
// diario es un log de replay verificable (sumar deltas desde cero reproduce
// BalanceAfter del último asiento).
type Movement struct {
	ID            string
	Type          string
	ProductID     string
	BatchNumber   string
	ToBatchNumber string // solo en la pata de salida de un TRANSFER
	Quantity      int64  // delta con signo
	BalanceAfter  int64
	Reason        string
	RefType       string
	RefID         string
	CreatedBy     string // actor: id de usuario opaco provisto por el caller
	CreatedAt     time.Time
}
