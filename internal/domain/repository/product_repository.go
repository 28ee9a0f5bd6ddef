package repository

import "github.com/tu-usuario/farmacia-pro/internal/domain/entity"

// ProductRepository puerto de persistencia del catálogo de productos.
// OnHand solo se muta con AddOnHand dentro de la transacción del motor de
// inventario; Update no toca stock.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByCode(code string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) para
	// serializar operaciones concurrentes sobre sus lotes.
	GetForUpdate(id string) (*entity.Product, error)
	Update(product *entity.Product) error
	// AddOnHand suma delta (con signo) al stock agregado del producto.
	AddOnHand(productID string, delta int64) error
	List(search string, limit, offset int) ([]*entity.Product, error)
	Delete(id string) error
}
