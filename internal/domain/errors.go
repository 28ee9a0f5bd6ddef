package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso envuelven estos sentinelas con fmt.Errorf("%w: detalle")
// para que el mensaje nombre el producto/lote afectado; los handlers HTTP
// los clasifican con errors.Is.
var (
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrBatchNotFound     = errors.New("lote no encontrado")
	ErrSaleNotFound      = errors.New("venta no encontrada")
	ErrOrderNotFound     = errors.New("pedido no encontrado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrReturnExceedsSold = errors.New("la devolución excede la cantidad vendida")
	ErrDuplicateNumber   = errors.New("número de documento duplicado")
	ErrBatchHasStock     = errors.New("el lote tiene stock; no se puede eliminar")
	ErrProductHasStock   = errors.New("el producto tiene stock; no se puede eliminar")
	ErrOrderNotPending   = errors.New("el pedido no está pendiente")
	ErrUnauthorized      = errors.New("no autorizado")

	// ErrConflict señala una carrera de escritura detectada por el almacén
	// (violación de unicidad en números generados o aborto de serialización).
	// Es reintentable: el caller puede repetir la operación sin revalidar
	// reglas de negocio, a diferencia del resto de errores de invariante.
	ErrConflict = errors.New("conflicto de concurrencia, reintentar")
)
