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

var _ repository.SalesReturnRepository = (*SalesReturnRepo)(nil)

// SalesReturnRepo implementación de SalesReturnRepository sobre PostgreSQL
// (usable con pool o tx).
type SalesReturnRepo struct {
	q Querier
}

// NewSalesReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesReturnRepository(q Querier) *SalesReturnRepo {
	return &SalesReturnRepo{q: q}
}

// Create persiste cabecera y líneas de la devolución de cliente.
func (r *SalesReturnRepo) Create(ret *entity.SalesReturn) error {
	ctx := context.Background()
	query := `
		INSERT INTO sales_returns (id, return_no, sale_id, bill_no, date, reason, total, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		ret.ID, ret.ReturnNo, ret.SaleID, ret.BillNo, ret.Date,
		nullIfEmpty(ret.Reason), ret.Total, nullIfEmpty(ret.CreatedBy), ret.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: devolución %s", domain.ErrConflict, ret.ReturnNo)
		}
		return fmt.Errorf("insert sales return: %w", err)
	}
	lineQuery := `
		INSERT INTO sales_return_lines (id, return_id, product_id, product_name, batch_number, quantity, sale_price, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, line := range ret.Lines {
		_, err := r.q.Exec(ctx, lineQuery,
			line.ID, ret.ID, line.ProductID, line.ProductName, line.BatchNumber,
			line.Quantity, line.SalePrice, line.Amount,
		)
		if err != nil {
			return fmt.Errorf("insert sales return line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una devolución con sus líneas. Devuelve nil sin error si no existe.
func (r *SalesReturnRepo) GetByID(id string) (*entity.SalesReturn, error) {
	ctx := context.Background()
	query := `
		SELECT id, return_no, sale_id, bill_no, date, reason, total, created_by, created_at
		FROM sales_returns WHERE id = $1`
	ret, err := scanSalesReturn(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales return: %w", err)
	}
	if err := r.loadLines(ctx, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (r *SalesReturnRepo) loadLines(ctx context.Context, ret *entity.SalesReturn) error {
	query := `
		SELECT id, return_id, product_id, product_name, batch_number, quantity, sale_price, amount
		FROM sales_return_lines WHERE return_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, ret.ID)
	if err != nil {
		return fmt.Errorf("list sales return lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.SalesReturnLine
		if err := rows.Scan(&l.ID, &l.ReturnID, &l.ProductID, &l.ProductName, &l.BatchNumber,
			&l.Quantity, &l.SalePrice, &l.Amount); err != nil {
			return fmt.Errorf("scan sales return line: %w", err)
		}
		ret.Lines = append(ret.Lines, l)
	}
	return rows.Err()
}

// List lista devoluciones (solo cabeceras) en un rango de fechas.
func (r *SalesReturnRepo) List(from, to *time.Time, limit, offset int) ([]*entity.SalesReturn, error) {
	query := `
		SELECT id, return_no, sale_id, bill_no, date, reason, total, created_by, created_at
		FROM sales_returns WHERE 1=1`
	args := []any{}
	pos := 1
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales returns: %w", err)
	}
	defer rows.Close()
	var list []*entity.SalesReturn
	for rows.Next() {
		ret, err := scanSalesReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sales return: %w", err)
		}
		list = append(list, ret)
	}
	return list, rows.Err()
}

// ReturnedQuantity suma lo ya devuelto contra una línea (producto, lote) de
// una venta. Corre dentro de la transacción de la devolución para que dos
// devoluciones concurrentes no excedan lo vendido.
func (r *SalesReturnRepo) ReturnedQuantity(saleID, productID, batchNumber string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(l.quantity), 0)
		FROM sales_return_lines l
		JOIN sales_returns sr ON sr.id = l.return_id
		WHERE sr.sale_id = $1 AND l.product_id = $2 AND l.batch_number = $3`
	var n int64
	err := r.q.QueryRow(context.Background(), query, saleID, productID, batchNumber).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sum returned quantity: %w", err)
	}
	return n, nil
}

// CountByDay cuenta las devoluciones creadas el día dado, para la numeración.
func (r *SalesReturnRepo) CountByDay(day time.Time) (int64, error) {
	start, end := domaininv.DayRange(day)
	var n int64
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM sales_returns WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sales returns by day: %w", err)
	}
	return n, nil
}

func scanSalesReturn(row pgxScanner) (*entity.SalesReturn, error) {
	var ret entity.SalesReturn
	var reason, createdBy *string
	err := row.Scan(&ret.ID, &ret.ReturnNo, &ret.SaleID, &ret.BillNo, &ret.Date,
		&reason, &ret.Total, &createdBy, &ret.CreatedAt)
	if err != nil {
		return nil, err
	}
	ret.Reason = deref(reason)
	ret.CreatedBy = deref(createdBy)
	return &ret, nil
}
