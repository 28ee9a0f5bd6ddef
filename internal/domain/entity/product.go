package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un medicamento o artículo del catálogo de la farmacia.
// OnHand es la suma cacheada del stock de sus lotes y solo lo mutan las
// operaciones del motor de inventario (invariante: OnHand == Σ Batch.OnHand).
// Los precios por defecto se copian al lote en la recepción si el GRN no
// trae precios propios.
type Product struct {
	ID            string
	Code          string // código único (SKU interno o EAN)
	Name          string
	GenericName   string
	Unit          string          // unidad de medida: tableta, frasco, ampolla...
	GSTRate       decimal.Decimal // tasa de impuesto GST: 0, 0.05, 0.12, 0.18
	MinStock      int64           // umbral de reorden
	MRP           decimal.Decimal // precio máximo de venta al público
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Controlled    bool // Schedule H: cada dispensación va al registro de control
	OnHand        int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
