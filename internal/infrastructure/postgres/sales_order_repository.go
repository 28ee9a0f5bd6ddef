package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
	domaininv "github.com/tu-usuario/farmacia-pro/internal/domain/inventory"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// SalesOrderRepo implementación de SalesOrderRepository sobre PostgreSQL
// (usable con pool o tx).
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

// Create persiste cabecera y líneas del pedido.
func (r *SalesOrderRepo) Create(order *entity.SalesOrder) error {
	ctx := context.Background()
	query := `
		INSERT INTO sales_orders (id, order_no, customer, date, status, sale_id, total, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.OrderNo, nullIfEmpty(order.Customer), order.Date, order.Status,
		nullIfEmpty(order.SaleID), order.Total, nullIfEmpty(order.CreatedBy),
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: pedido %s", domain.ErrConflict, order.OrderNo)
		}
		return fmt.Errorf("insert sales order: %w", err)
	}
	lineQuery := `
		INSERT INTO sales_order_lines (id, order_id, product_id, product_name, batch_number, quantity, sale_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, line := range order.Lines {
		_, err := r.q.Exec(ctx, lineQuery,
			line.ID, order.ID, line.ProductID, line.ProductName,
			nullIfEmpty(line.BatchNumber), line.Quantity, line.SalePrice,
		)
		if err != nil {
			return fmt.Errorf("insert sales order line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un pedido con sus líneas. Devuelve nil sin error si no existe.
func (r *SalesOrderRepo) GetByID(id string) (*entity.SalesOrder, error) {
	return r.get(id, "")
}

// GetForUpdate obtiene el pedido y bloquea la fila para que dos cumplimientos
// concurrentes no generen dos ventas.
func (r *SalesOrderRepo) GetForUpdate(id string) (*entity.SalesOrder, error) {
	return r.get(id, " FOR UPDATE")
}

func (r *SalesOrderRepo) get(id, suffix string) (*entity.SalesOrder, error) {
	ctx := context.Background()
	query := `
		SELECT id, order_no, customer, date, status, sale_id, total, created_by, created_at, updated_at
		FROM sales_orders WHERE id = $1` + suffix
	order, err := scanSalesOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	if err := r.loadLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *SalesOrderRepo) loadLines(ctx context.Context, order *entity.SalesOrder) error {
	query := `
		SELECT id, order_id, product_id, product_name, batch_number, quantity, sale_price
		FROM sales_order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("list sales order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.SalesOrderLine
		var batch *string
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName,
			&batch, &l.Quantity, &l.SalePrice); err != nil {
			return fmt.Errorf("scan sales order line: %w", err)
		}
		l.BatchNumber = deref(batch)
		order.Lines = append(order.Lines, l)
	}
	return rows.Err()
}

// List lista pedidos (solo cabeceras) por estado; vacío lista todos.
func (r *SalesOrderRepo) List(status string, limit, offset int) ([]*entity.SalesOrder, error) {
	query := `
		SELECT id, order_no, customer, date, status, sale_id, total, created_by, created_at, updated_at
		FROM sales_orders`
	args := []any{}
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.SalesOrder
	for rows.Next() {
		order, err := scanSalesOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sales order: %w", err)
		}
		list = append(list, order)
	}
	return list, rows.Err()
}

// SetStatus actualiza estado y venta asociada del pedido.
func (r *SalesOrderRepo) SetStatus(id, status, saleID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE sales_orders SET status = $2, sale_id = $3, updated_at = now() WHERE id = $1`,
		id, status, nullIfEmpty(saleID),
	)
	if err != nil {
		return fmt.Errorf("set sales order status: %w", err)
	}
	return nil
}

// CountByDay cuenta los pedidos creados el día dado, para la numeración.
func (r *SalesOrderRepo) CountByDay(day time.Time) (int64, error) {
	start, end := domaininv.DayRange(day)
	var n int64
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM sales_orders WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sales orders by day: %w", err)
	}
	return n, nil
}

func scanSalesOrder(row pgxScanner) (*entity.SalesOrder, error) {
	var order entity.SalesOrder
	var customer, saleID, createdBy *string
	err := row.Scan(&order.ID, &order.OrderNo, &customer, &order.Date, &order.Status,
		&saleID, &order.Total, &createdBy, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	order.Customer = deref(customer)
	order.SaleID = deref(saleID)
	order.CreatedBy = deref(createdBy)
	return &order, nil
}
