package dto

import "github.com/shopspring/decimal"

// SalesOrderLineRequest línea de pedido. BatchNumber vacío delega a FEFO
// al momento de cumplir el pedido.
type SalesOrderLineRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	BatchNumber string           `json:"batch_number,omitempty"`
	Quantity    int64            `json:"quantity" validate:"required,gt=0"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
}

// CreateSalesOrderRequest body para POST /api/sales-orders.
type CreateSalesOrderRequest struct {
	Customer string                  `json:"customer,omitempty"`
	Lines    []SalesOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SalesOrderResponse pedido con su estado.
type SalesOrderResponse struct {
	ID       string          `json:"id"`
	OrderNo  string          `json:"order_no"`
	Customer string          `json:"customer,omitempty"`
	Status   string          `json:"status"`
	SaleID   string          `json:"sale_id,omitempty"`
	Total    decimal.Decimal `json:"total"`
}
