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

var _ repository.PurchaseReturnRepository = (*PurchaseReturnRepo)(nil)

// PurchaseReturnRepo implementación de PurchaseReturnRepository sobre
// PostgreSQL (usable con pool o tx).
type PurchaseReturnRepo struct {
	q Querier
}

// NewPurchaseReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseReturnRepository(q Querier) *PurchaseReturnRepo {
	return &PurchaseReturnRepo{q: q}
}

// Create persiste cabecera y líneas de la devolución a proveedor.
func (r *PurchaseReturnRepo) Create(ret *entity.PurchaseReturn) error {
	ctx := context.Background()
	query := `
		INSERT INTO purchase_returns (id, return_no, supplier, ref_invoice_no, date, reason, total, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		ret.ID, ret.ReturnNo, nullIfEmpty(ret.Supplier), nullIfEmpty(ret.RefInvoiceNo),
		ret.Date, nullIfEmpty(ret.Reason), ret.Total, nullIfEmpty(ret.CreatedBy), ret.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: devolución %s", domain.ErrConflict, ret.ReturnNo)
		}
		return fmt.Errorf("insert purchase return: %w", err)
	}
	lineQuery := `
		INSERT INTO purchase_return_lines (id, return_id, product_id, product_name, batch_number, quantity, purchase_price, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, line := range ret.Lines {
		_, err := r.q.Exec(ctx, lineQuery,
			line.ID, ret.ID, line.ProductID, line.ProductName, line.BatchNumber,
			line.Quantity, line.PurchasePrice, line.Amount,
		)
		if err != nil {
			return fmt.Errorf("insert purchase return line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una devolución con sus líneas. Devuelve nil sin error si no existe.
func (r *PurchaseReturnRepo) GetByID(id string) (*entity.PurchaseReturn, error) {
	ctx := context.Background()
	query := `
		SELECT id, return_no, supplier, ref_invoice_no, date, reason, total, created_by, created_at
		FROM purchase_returns WHERE id = $1`
	ret, err := scanPurchaseReturn(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase return: %w", err)
	}
	if err := r.loadLines(ctx, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (r *PurchaseReturnRepo) loadLines(ctx context.Context, ret *entity.PurchaseReturn) error {
	query := `
		SELECT id, return_id, product_id, product_name, batch_number, quantity, purchase_price, amount
		FROM purchase_return_lines WHERE return_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, ret.ID)
	if err != nil {
		return fmt.Errorf("list purchase return lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PurchaseReturnLine
		if err := rows.Scan(&l.ID, &l.ReturnID, &l.ProductID, &l.ProductName, &l.BatchNumber,
			&l.Quantity, &l.PurchasePrice, &l.Amount); err != nil {
			return fmt.Errorf("scan purchase return line: %w", err)
		}
		ret.Lines = append(ret.Lines, l)
	}
	return rows.Err()
}

// List lista devoluciones (solo cabeceras) en un rango de fechas.
func (r *PurchaseReturnRepo) List(from, to *time.Time, limit, offset int) ([]*entity.PurchaseReturn, error) {
	query := `
		SELECT id, return_no, supplier, ref_invoice_no, date, reason, total, created_by, created_at
		FROM purchase_returns WHERE 1=1`
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
		return nil, fmt.Errorf("list purchase returns: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseReturn
	for rows.Next() {
		ret, err := scanPurchaseReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase return: %w", err)
		}
		list = append(list, ret)
	}
	return list, rows.Err()
}

// CountByDay cuenta las devoluciones creadas el día dado, para la numeración.
func (r *PurchaseReturnRepo) CountByDay(day time.Time) (int64, error) {
	start, end := domaininv.DayRange(day)
	var n int64
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM purchase_returns WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count purchase returns by day: %w", err)
	}
	return n, nil
}

func scanPurchaseReturn(row pgxScanner) (*entity.PurchaseReturn, error) {
	var ret entity.PurchaseReturn
	var supplier, refInvoice, reason, createdBy *string
	err := row.Scan(&ret.ID, &ret.ReturnNo, &supplier, &refInvoice, &ret.Date,
		&reason, &ret.Total, &createdBy, &ret.CreatedAt)
	if err != nil {
		return nil, err
	}
	ret.Supplier = deref(supplier)
	ret.RefInvoiceNo = deref(refInvoice)
	ret.Reason = deref(reason)
	ret.CreatedBy = deref(createdBy)
	return &ret, nil
}
