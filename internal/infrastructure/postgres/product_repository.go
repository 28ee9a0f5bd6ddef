package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, code, name, generic_name, unit, gst_rate, min_stock, mrp, purchase_price, sale_price, controlled, on_hand, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de catálogo. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto nuevo. OnHand inicia en 0.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Code, product.Name, product.GenericName, product.Unit,
		product.GSTRate, product.MinStock, product.MRP, product.PurchasePrice,
		product.SalePrice, product.Controlled, product.OnHand,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código %s", domain.ErrConflict, product.Code)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. Devuelve nil sin error si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.getWhere(`id = $1`, id, "")
}

// GetByCode obtiene un producto por su código único.
func (r *ProductRepo) GetByCode(code string) (*entity.Product, error) {
	return r.getWhere(`code = $1`, code, "")
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.getWhere(`id = $1`, id, " FOR UPDATE")
}

func (r *ProductRepo) getWhere(where, arg, suffix string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE ` + where + suffix
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update actualiza los datos de catálogo. No toca on_hand: el stock solo se
// mueve con AddOnHand dentro de la transacción del motor.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, generic_name = $3, unit = $4, gst_rate = $5,
			min_stock = $6, mrp = $7, purchase_price = $8, sale_price = $9,
			controlled = $10, updated_at = $11
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Name, product.GenericName, product.Unit, product.GSTRate,
		product.MinStock, product.MRP, product.PurchasePrice, product.SalePrice,
		product.Controlled, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// AddOnHand suma delta (con signo) al stock agregado del producto.
func (r *ProductRepo) AddOnHand(productID string, delta int64) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE products SET on_hand = on_hand + $2, updated_at = now() WHERE id = $1`,
		productID, delta,
	)
	if err != nil {
		return fmt.Errorf("add product on_hand: %w", err)
	}
	return nil
}

// List lista productos con búsqueda opcional por código o nombre.
func (r *ProductRepo) List(search string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	pos := 1
	if search != "" {
		query += fmt.Sprintf(" WHERE code ILIKE $%d OR name ILIKE $%d OR generic_name ILIKE $%d", pos, pos, pos)
		args = append(args, "%"+search+"%")
		pos++
	}
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func scanProduct(row pgxScanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.GenericName, &p.Unit, &p.GSTRate, &p.MinStock,
		&p.MRP, &p.PurchasePrice, &p.SalePrice, &p.Controlled, &p.OnHand,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// pgxScanner abstrae pgx.Row y pgx.Rows para reutilizar los scan helpers.
type pgxScanner interface {
	Scan(dest ...any) error
}
