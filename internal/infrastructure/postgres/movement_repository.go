package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, type, product_id, batch_number, to_batch_number, quantity, balance_after, reason, ref_type, ref_id, created_by, created_at`

// MovementRepo implementación del diario de inventario sobre PostgreSQL
// (usable con pool o tx). Solo inserta y consulta: el diario es inmutable.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un asiento del diario.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.Type, movement.ProductID, movement.BatchNumber,
		nullIfEmpty(movement.ToBatchNumber), movement.Quantity, movement.BalanceAfter,
		nullIfEmpty(movement.Reason), nullIfEmpty(movement.RefType),
		nullIfEmpty(movement.RefID), nullIfEmpty(movement.CreatedBy), movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// List consulta el diario con filtros opcionales, más reciente primero.
func (r *MovementRepo) List(filter repository.MovementFilter) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.BatchNumber != "" {
		query += fmt.Sprintf(" AND batch_number = $%d", pos)
		args = append(args, filter.BatchNumber)
		pos++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// ListByBatchAsc devuelve todos los asientos de un lote en orden de inserción,
// para el kardex y la verificación de replay.
func (r *MovementRepo) ListByBatchAsc(productID, batchNumber string) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements
		WHERE product_id = $1 AND batch_number = $2
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, productID, batchNumber)
	if err != nil {
		return nil, fmt.Errorf("list movements by batch: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgxScanner) (*entity.Movement, error) {
	var m entity.Movement
	var toBatch, reason, refType, refID, createdBy *string
	err := row.Scan(
		&m.ID, &m.Type, &m.ProductID, &m.BatchNumber, &toBatch, &m.Quantity,
		&m.BalanceAfter, &reason, &refType, &refID, &createdBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.ToBatchNumber = deref(toBatch)
	m.Reason = deref(reason)
	m.RefType = deref(refType)
	m.RefID = deref(refID)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
