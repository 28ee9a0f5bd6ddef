package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// GRNLineRequest línea de recepción. Los precios y el vencimiento son
// opcionales: en lote existente, ausentes significa "no tocar".
type GRNLineRequest struct {
	ProductID     string           `json:"product_id" validate:"required"`
	BatchNumber   string           `json:"batch_number" validate:"required"`
	Expiry        *time.Time       `json:"expiry,omitempty"`
	Quantity      int64            `json:"quantity" validate:"required,gt=0"`
	FreeQuantity  int64            `json:"free_quantity" validate:"min=0"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	MRP           *decimal.Decimal `json:"mrp,omitempty"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
}

// CreateGRNRequest body para POST /api/grns.
type CreateGRNRequest struct {
	InvoiceNo   string           `json:"invoice_no" validate:"required"`
	InvoiceDate time.Time        `json:"invoice_date" validate:"required"`
	Vendor      string           `json:"vendor,omitempty"`
	Lines       []GRNLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// GRNResponse recepción creada.
type GRNResponse struct {
	ID          string            `json:"id"`
	InvoiceNo   string            `json:"invoice_no"`
	InvoiceDate string            `json:"invoice_date"`
	Vendor      string            `json:"vendor,omitempty"`
	GrandTotal  decimal.Decimal   `json:"grand_total"`
	Lines       []GRNLineResponse `json:"lines"`
}

// GRNLineResponse línea persistida con su importe.
type GRNLineResponse struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	BatchNumber   string          `json:"batch_number"`
	Expiry        *time.Time      `json:"expiry,omitempty"`
	Quantity      int64           `json:"quantity"`
	FreeQuantity  int64           `json:"free_quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Amount        decimal.Decimal `json:"amount"`
}
