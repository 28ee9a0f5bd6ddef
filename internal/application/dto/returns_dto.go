package dto

import "github.com/shopspring/decimal"

// SalesReturnLineRequest línea devuelta por el cliente: siempre contra el
// lote de la venta original.
type SalesReturnLineRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	BatchNumber string           `json:"batch_number" validate:"required"`
	Quantity    int64            `json:"quantity" validate:"required,gt=0"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
}

// CreateSalesReturnRequest body para POST /api/sales-returns.
// Referencia la venta original por id o por número de tirilla.
type CreateSalesReturnRequest struct {
	SaleID string                   `json:"sale_id,omitempty"`
	BillNo string                   `json:"bill_no,omitempty"`
	Reason string                   `json:"reason,omitempty"`
	Lines  []SalesReturnLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SalesReturnResponse devolución de venta creada.
type SalesReturnResponse struct {
	ID       string          `json:"id"`
	ReturnNo string          `json:"return_no"`
	SaleID   string          `json:"sale_id"`
	BillNo   string          `json:"bill_no"`
	Total    decimal.Decimal `json:"total"`
}

// PurchaseReturnLineRequest línea devuelta al proveedor.
type PurchaseReturnLineRequest struct {
	ProductID     string           `json:"product_id" validate:"required"`
	BatchNumber   string           `json:"batch_number" validate:"required"`
	Quantity      int64            `json:"quantity" validate:"required,gt=0"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
}

// CreatePurchaseReturnRequest body para POST /api/purchase-returns.
type CreatePurchaseReturnRequest struct {
	Supplier     string                      `json:"supplier" validate:"required"`
	RefInvoiceNo string                      `json:"ref_invoice_no,omitempty"`
	Reason       string                      `json:"reason,omitempty"`
	Lines        []PurchaseReturnLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PurchaseReturnResponse devolución a proveedor creada.
type PurchaseReturnResponse struct {
	ID       string          `json:"id"`
	ReturnNo string          `json:"return_no"`
	Supplier string          `json:"supplier"`
	Total    decimal.Decimal `json:"total"`
}
