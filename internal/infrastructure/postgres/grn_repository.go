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

var _ repository.GRNRepository = (*GRNRepo)(nil)

// GRNRepo implementación de GRNRepository sobre PostgreSQL (usable con pool o tx).
type GRNRepo struct {
	q Querier
}

// NewGRNRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGRNRepository(q Querier) *GRNRepo {
	return &GRNRepo{q: q}
}

// Create persiste cabecera y líneas. El índice único sobre invoice_no detecta
// la carrera de dos recepciones con la misma factura.
func (r *GRNRepo) Create(grn *entity.GRN) error {
	ctx := context.Background()
	query := `
		INSERT INTO grns (id, invoice_no, invoice_date, vendor, grand_total, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		grn.ID, grn.InvoiceNo, grn.InvoiceDate, nullIfEmpty(grn.Vendor),
		grn.GrandTotal, nullIfEmpty(grn.CreatedBy), grn.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: factura %s", domain.ErrConflict, grn.InvoiceNo)
		}
		return fmt.Errorf("insert grn: %w", err)
	}
	lineQuery := `
		INSERT INTO grn_lines (id, grn_id, product_id, product_name, batch_number, expiry, quantity, free_quantity, purchase_price, mrp, sale_price, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, line := range grn.Lines {
		_, err := r.q.Exec(ctx, lineQuery,
			line.ID, grn.ID, line.ProductID, line.ProductName, line.BatchNumber,
			line.Expiry, line.Quantity, line.FreeQuantity, line.PurchasePrice,
			line.MRP, line.SalePrice, line.Amount,
		)
		if err != nil {
			return fmt.Errorf("insert grn line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una recepción con sus líneas. Devuelve nil sin error si no existe.
func (r *GRNRepo) GetByID(id string) (*entity.GRN, error) {
	return r.getWhere(`id = $1`, id)
}

// GetByInvoiceNo obtiene una recepción por número de factura del proveedor.
func (r *GRNRepo) GetByInvoiceNo(invoiceNo string) (*entity.GRN, error) {
	return r.getWhere(`invoice_no = $1`, invoiceNo)
}

func (r *GRNRepo) getWhere(where, arg string) (*entity.GRN, error) {
	ctx := context.Background()
	query := `
		SELECT id, invoice_no, invoice_date, vendor, grand_total, created_by, created_at
		FROM grns WHERE ` + where
	g, err := scanGRN(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get grn: %w", err)
	}
	if err := r.loadLines(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GRNRepo) loadLines(ctx context.Context, g *entity.GRN) error {
	query := `
		SELECT id, grn_id, product_id, product_name, batch_number, expiry, quantity, free_quantity, purchase_price, mrp, sale_price, amount
		FROM grn_lines WHERE grn_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, g.ID)
	if err != nil {
		return fmt.Errorf("list grn lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.GRNLine
		if err := rows.Scan(&l.ID, &l.GRNID, &l.ProductID, &l.ProductName, &l.BatchNumber,
			&l.Expiry, &l.Quantity, &l.FreeQuantity, &l.PurchasePrice, &l.MRP, &l.SalePrice, &l.Amount); err != nil {
			return fmt.Errorf("scan grn line: %w", err)
		}
		g.Lines = append(g.Lines, l)
	}
	return rows.Err()
}

// List lista recepciones (solo cabeceras) en un rango de fechas, más reciente primero.
func (r *GRNRepo) List(from, to *time.Time, limit, offset int) ([]*entity.GRN, error) {
	query := `
		SELECT id, invoice_no, invoice_date, vendor, grand_total, created_by, created_at
		FROM grns WHERE 1=1`
	args := []any{}
	pos := 1
	if from != nil {
		query += fmt.Sprintf(" AND invoice_date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND invoice_date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list grns: %w", err)
	}
	defer rows.Close()
	var list []*entity.GRN
	for rows.Next() {
		g, err := scanGRN(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grn: %w", err)
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

// CountByDay cuenta las recepciones creadas el día dado, para la numeración.
func (r *GRNRepo) CountByDay(day time.Time) (int64, error) {
	start, end := domaininv.DayRange(day)
	var n int64
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM grns WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count grns by day: %w", err)
	}
	return n, nil
}

func scanGRN(row pgxScanner) (*entity.GRN, error) {
	var g entity.GRN
	var vendor, createdBy *string
	err := row.Scan(&g.ID, &g.InvoiceNo, &g.InvoiceDate, &vendor, &g.GrandTotal, &createdBy, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	g.Vendor = deref(vendor)
	g.CreatedBy = deref(createdBy)
	return &g, nil
}
