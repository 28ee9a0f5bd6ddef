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

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, product_id, batch_number, expiry, on_hand, purchase_price, mrp, sale_price, created_at, updated_at`

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un lote nuevo. La clave (product_id, batch_number) es única.
func (r *BatchRepo) Create(batch *entity.Batch) error {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.ProductID, batch.BatchNumber, batch.Expiry, batch.OnHand,
		batch.PurchasePrice, batch.MRP, batch.SalePrice, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lote %s", domain.ErrConflict, batch.BatchNumber)
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// Get obtiene un lote por clave. Devuelve nil sin error si no existe.
func (r *BatchRepo) Get(productID, batchNumber string) (*entity.Batch, error) {
	return r.get(productID, batchNumber, "")
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
// Devuelve nil sin error si el lote no existe.
func (r *BatchRepo) GetForUpdate(productID, batchNumber string) (*entity.Batch, error) {
	return r.get(productID, batchNumber, " FOR UPDATE")
}

func (r *BatchRepo) get(productID, batchNumber, suffix string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE product_id = $1 AND batch_number = $2` + suffix
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, productID, batchNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// Save persiste stock, precios y vencimiento de un lote ya bloqueado.
func (r *BatchRepo) Save(batch *entity.Batch) error {
	query := `
		UPDATE batches SET expiry = $3, on_hand = $4, purchase_price = $5, mrp = $6,
			sale_price = $7, updated_at = $8
		WHERE product_id = $1 AND batch_number = $2`
	_, err := r.q.Exec(context.Background(), query,
		batch.ProductID, batch.BatchNumber, batch.Expiry, batch.OnHand,
		batch.PurchasePrice, batch.MRP, batch.SalePrice, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save batch: %w", err)
	}
	return nil
}

// ListByProduct lista los lotes de un producto, próximos a vencer primero y
// vencimiento nulo al final, el mismo orden que usa la asignación FEFO.
func (r *BatchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + ` FROM batches WHERE product_id = $1
		ORDER BY expiry ASC NULLS LAST, created_at ASC, batch_number ASC`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Delete elimina un lote. El caso de uso ya validó que está en cero.
func (r *BatchRepo) Delete(productID, batchNumber string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM batches WHERE product_id = $1 AND batch_number = $2`,
		productID, batchNumber,
	)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

func scanBatch(row pgxScanner) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.ProductID, &b.BatchNumber, &b.Expiry, &b.OnHand,
		&b.PurchasePrice, &b.MRP, &b.SalePrice, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
