package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Code          string          `json:"code" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	GenericName   string          `json:"generic_name,omitempty"`
	Unit          string          `json:"unit" validate:"required"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
	MinStock      int64           `json:"min_stock" validate:"min=0"`
	MRP           decimal.Decimal `json:"mrp"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Controlled    bool            `json:"controlled"`
}

// UpdateProductRequest body para PUT /api/products/:id. No toca stock.
type UpdateProductRequest struct {
	Name          string           `json:"name,omitempty"`
	GenericName   string           `json:"generic_name,omitempty"`
	Unit          string           `json:"unit,omitempty"`
	GSTRate       *decimal.Decimal `json:"gst_rate,omitempty"`
	MinStock      *int64           `json:"min_stock,omitempty" validate:"omitempty,min=0"`
	MRP           *decimal.Decimal `json:"mrp,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
	Controlled    *bool            `json:"controlled,omitempty"`
}

// ProductResponse respuesta de catálogo.
type ProductResponse struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	GenericName   string          `json:"generic_name,omitempty"`
	Unit          string          `json:"unit"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
	MinStock      int64           `json:"min_stock"`
	MRP           decimal.Decimal `json:"mrp"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Controlled    bool            `json:"controlled"`
	OnHand        int64           `json:"on_hand"`
}

// BatchResponse lote de un producto.
type BatchResponse struct {
	BatchNumber   string          `json:"batch_number"`
	Expiry        *time.Time      `json:"expiry,omitempty"`
	OnHand        int64           `json:"on_hand"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	MRP           decimal.Decimal `json:"mrp"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}
