package repository

import (
	"time"

	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
)

// Puertos de persistencia de los documentos comerciales. Cada Create guarda
// cabecera y líneas; corre dentro de la transacción del caso de uso para que
// el documento nunca quede a medias respecto a sus efectos en stock.
// CountByDay alimenta la numeración con secuencia diaria.

// GRNRepository recepciones de mercancía.
type GRNRepository interface {
	Create(grn *entity.GRN) error
	GetByID(id string) (*entity.GRN, error)
	GetByInvoiceNo(invoiceNo string) (*entity.GRN, error)
	List(from, to *time.Time, limit, offset int) ([]*entity.GRN, error)
	CountByDay(day time.Time) (int64, error)
}

// SaleRepository ventas de mostrador.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	GetByID(id string) (*entity.Sale, error)
	// GetForUpdate bloquea la venta para que dos devoluciones
	// concurrentes contra la misma venta se serialicen antes de
	// validar la cota acumulada.
	GetForUpdate(id string) (*entity.Sale, error)
	GetByBillNo(billNo string) (*entity.Sale, error)
	List(from, to *time.Time, limit, offset int) ([]*entity.Sale, error)
	CountByDay(day time.Time) (int64, error)
}

// SalesReturnRepository devoluciones de clientes.
type SalesReturnRepository interface {
	Create(ret *entity.SalesReturn) error
	GetByID(id string) (*entity.SalesReturn, error)
	List(from, to *time.Time, limit, offset int) ([]*entity.SalesReturn, error)
	// ReturnedQuantity suma lo ya devuelto contra una línea (producto, lote)
	// de una venta, para acotar devoluciones acumuladas.
	ReturnedQuantity(saleID, productID, batchNumber string) (int64, error)
	CountByDay(day time.Time) (int64, error)
}

// PurchaseReturnRepository devoluciones a proveedores.
type PurchaseReturnRepository interface {
	Create(ret *entity.PurchaseReturn) error
	GetByID(id string) (*entity.PurchaseReturn, error)
	List(from, to *time.Time, limit, offset int) ([]*entity.PurchaseReturn, error)
	CountByDay(day time.Time) (int64, error)
}

// SalesOrderRepository pedidos de venta.
type SalesOrderRepository interface {
	Create(order *entity.SalesOrder) error
	GetByID(id string) (*entity.SalesOrder, error)
	// GetForUpdate bloquea el pedido para que dos cumplimientos
	// concurrentes no generen dos ventas.
	GetForUpdate(id string) (*entity.SalesOrder, error)
	List(status string, limit, offset int) ([]*entity.SalesOrder, error)
	// SetStatus actualiza estado y venta asociada del pedido.
	SetStatus(id, status, saleID string) error
	CountByDay(day time.Time) (int64, error)
}

// ComplianceRepository registro de sustancias controladas. Solo inserción
// y consulta por rango de fechas.
type ComplianceRepository interface {
	Create(entry *entity.ComplianceEntry) error
	List(from, to *time.Time, limit, offset int) ([]*entity.ComplianceEntry, error)
}
