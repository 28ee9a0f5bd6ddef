package dto

import "github.com/shopspring/decimal"

// SaleLineRequest línea de venta. BatchNumber vacío delega la elección de
// lote a la política de dispensación (FEFO por defecto); la línea puede
// partirse entre varios lotes.
type SaleLineRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	BatchNumber string           `json:"batch_number,omitempty"`
	Quantity    int64            `json:"quantity" validate:"required,gt=0"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	Customer   string            `json:"customer,omitempty"`
	DoctorName string            `json:"doctor_name,omitempty"`
	Discount   decimal.Decimal   `json:"discount"`
	Lines      []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SaleResponse venta creada con su número de tirilla.
type SaleResponse struct {
	ID         string             `json:"id"`
	BillNo     string             `json:"bill_no"`
	Date       string             `json:"date"`
	Customer   string             `json:"customer,omitempty"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	Discount   decimal.Decimal    `json:"discount"`
	TaxTotal   decimal.Decimal    `json:"tax_total"`
	GrandTotal decimal.Decimal    `json:"grand_total"`
	Lines      []SaleLineResponse `json:"lines"`
}

// SaleLineResponse línea persistida, una por lote despachado.
type SaleLineResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	BatchNumber string          `json:"batch_number"`
	Quantity    int64           `json:"quantity"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	Amount      decimal.Decimal `json:"amount"`
}
