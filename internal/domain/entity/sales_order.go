package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido de venta.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusFulfilled = "FULFILLED"
	OrderStatusCancelled = "CANCELLED"
)

// SalesOrder es un pedido pendiente de despacho. Convertirlo a venta ejecuta
// el caso de uso de venta en la misma transacción y lo marca FULFILLED; si la
// venta falla, el pedido queda PENDING y se propaga el error de la venta.
type SalesOrder struct {
	ID        string
	OrderNo   string
	Customer  string
	Date      time.Time
	Status    string
	SaleID    string // venta generada al cumplir el pedido
	Total     decimal.Decimal
	Lines     []SalesOrderLine
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SalesOrderLine línea del pedido. BatchNumber vacío delega la elección de
// lote a la asignación FEFO al momento de cumplir.
type SalesOrderLine struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	BatchNumber string
	Quantity    int64
	SalePrice   decimal.Decimal
}
