package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

var _ repository.ComplianceRepository = (*ComplianceRepo)(nil)

// ComplianceRepo registro de sustancias controladas sobre PostgreSQL
// (usable con pool o tx). Solo inserción y consulta.
type ComplianceRepo struct {
	q Querier
}

// NewComplianceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewComplianceRepository(q Querier) *ComplianceRepo {
	return &ComplianceRepo{q: q}
}

// Create persiste un asiento del registro de controlados.
func (r *ComplianceRepo) Create(entry *entity.ComplianceEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO compliance_entries (id, sale_id, bill_no, product_id, product_name, batch_number, quantity, customer, doctor_name, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.SaleID, entry.BillNo, entry.ProductID, entry.ProductName,
		entry.BatchNumber, entry.Quantity, nullIfEmpty(entry.Customer),
		nullIfEmpty(entry.DoctorName), nullIfEmpty(entry.CreatedBy), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create compliance entry: %w", err)
	}
	return nil
}

// List consulta el registro por rango de fechas, más reciente primero.
func (r *ComplianceRepo) List(from, to *time.Time, limit, offset int) ([]*entity.ComplianceEntry, error) {
	query := `
		SELECT id, sale_id, bill_no, product_id, product_name, batch_number, quantity, customer, doctor_name, created_by, created_at
		FROM compliance_entries WHERE 1=1`
	args := []any{}
	pos := 1
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list compliance entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.ComplianceEntry
	for rows.Next() {
		var e entity.ComplianceEntry
		var customer, doctor, createdBy *string
		if err := rows.Scan(&e.ID, &e.SaleID, &e.BillNo, &e.ProductID, &e.ProductName,
			&e.BatchNumber, &e.Quantity, &customer, &doctor, &createdBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan compliance entry: %w", err)
		}
		e.Customer = deref(customer)
		e.DoctorName = deref(doctor)
		e.CreatedBy = deref(createdBy)
		list = append(list, &e)
	}
	return list, rows.Err()
}
