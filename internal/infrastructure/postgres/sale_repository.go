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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste cabecera y líneas. El índice único sobre bill_no detecta la
// carrera de dos ventas generando el mismo número.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	ctx := context.Background()
	query := `
		INSERT INTO sales (id, bill_no, date, customer, doctor_name, subtotal, discount, tax_total, grand_total, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.BillNo, sale.Date, nullIfEmpty(sale.Customer), nullIfEmpty(sale.DoctorName),
		sale.Subtotal, sale.Discount, sale.TaxTotal, sale.GrandTotal,
		nullIfEmpty(sale.CreatedBy), sale.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tirilla %s", domain.ErrConflict, sale.BillNo)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	lineQuery := `
		INSERT INTO sale_lines (id, sale_id, product_id, product_name, batch_number, quantity, sale_price, gst_rate, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, line := range sale.Lines {
		_, err := r.q.Exec(ctx, lineQuery,
			line.ID, sale.ID, line.ProductID, line.ProductName, line.BatchNumber,
			line.Quantity, line.SalePrice, line.GSTRate, line.Amount,
		)
		if err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una venta con sus líneas. Devuelve nil sin error si no existe.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	return r.getWhere(`id = $1`, id)
}

// GetForUpdate obtiene la venta bloqueando su fila. Dos devoluciones
// concurrentes contra la misma venta se serializan aquí, de modo que la
// validación de lo ya devuelto lee lo que la ganadora haya confirmado.
func (r *SaleRepo) GetForUpdate(id string) (*entity.Sale, error) {
	return r.getWhere(`id = $1 FOR UPDATE`, id)
}

// GetByBillNo obtiene una venta por su número de tirilla.
func (r *SaleRepo) GetByBillNo(billNo string) (*entity.Sale, error) {
	return r.getWhere(`bill_no = $1`, billNo)
}

func (r *SaleRepo) getWhere(where, arg string) (*entity.Sale, error) {
	ctx := context.Background()
	query := `
		SELECT id, bill_no, date, customer, doctor_name, subtotal, discount, tax_total, grand_total, created_by, created_at
		FROM sales WHERE ` + where
	s, err := scanSale(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadLines(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SaleRepo) loadLines(ctx context.Context, s *entity.Sale) error {
	query := `
		SELECT id, sale_id, product_id, product_name, batch_number, quantity, sale_price, gst_rate, amount
		FROM sale_lines WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, s.ID)
	if err != nil {
		return fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.ProductName, &l.BatchNumber,
			&l.Quantity, &l.SalePrice, &l.GSTRate, &l.Amount); err != nil {
			return fmt.Errorf("scan sale line: %w", err)
		}
		s.Lines = append(s.Lines, l)
	}
	return rows.Err()
}

// List lista ventas (solo cabeceras) en un rango de fechas, más reciente primero.
func (r *SaleRepo) List(from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	query := `
		SELECT id, bill_no, date, customer, doctor_name, subtotal, discount, tax_total, grand_total, created_by, created_at
		FROM sales WHERE 1=1`
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
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// CountByDay cuenta las ventas creadas el día dado, para la numeración.
func (r *SaleRepo) CountByDay(day time.Time) (int64, error) {
	start, end := domaininv.DayRange(day)
	var n int64
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM sales WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sales by day: %w", err)
	}
	return n, nil
}

func scanSale(row pgxScanner) (*entity.Sale, error) {
	var s entity.Sale
	var customer, doctor, createdBy *string
	err := row.Scan(&s.ID, &s.BillNo, &s.Date, &customer, &doctor,
		&s.Subtotal, &s.Discount, &s.TaxTotal, &s.GrandTotal, &createdBy, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.Customer = deref(customer)
	s.DoctorName = deref(doctor)
	s.CreatedBy = deref(createdBy)
	return &s, nil
}
