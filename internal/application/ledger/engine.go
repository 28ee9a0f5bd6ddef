package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
)

// Engine es el motor del libro de stock: el único código autorizado a mutar
// Batch.OnHand y Product.OnHand. Es sin estado entre llamadas; cada operación
// es una transición atómica sobre uno o más lotes, ejecutada con los Repos
// atados a la transacción del caller y registrada en el diario de movimientos
// dentro de esa misma transacción.
//
// Disciplina de bloqueo: primero la fila del producto, luego la(s) del lote;
// en Transfer los lotes se bloquean en orden lexicográfico de número de lote
// para evitar interbloqueos entre traslados cruzados.
type Engine struct{}

// NewEngine construye el motor.
func NewEngine() *Engine {
	return &Engine{}
}

// ReceiveInput entrada de una recepción de stock. Los campos de precio y
// vencimiento son punteros: nil significa "no tocar" en un lote existente,
// nunca se sobreescribe con valores por defecto.
type ReceiveInput struct {
	ProductID     string
	BatchNumber   string
	Quantity      int64
	FreeQuantity  int64
	PurchasePrice *decimal.Decimal
	MRP           *decimal.Decimal
	SalePrice     *decimal.Decimal
	Expiry        *time.Time
	Reason        string
	RefType       string
	RefID         string
	Actor         string
}

// DispenseInput entrada de una salida contra un lote concreto.
type DispenseInput struct {
	ProductID   string
	BatchNumber string
	Quantity    int64
	Reason      string
	RefType     string
	RefID       string
	Actor       string
}

// ReturnCreditInput entrada de un reingreso por devolución de venta.
type ReturnCreditInput struct {
	ProductID   string
	BatchNumber string
	Quantity    int64
	Reason      string
	RefType     string
	RefID       string
	Actor       string
}

// AdjustInput entrada de un ajuste manual con delta con signo.
type AdjustInput struct {
	ProductID   string
	BatchNumber string
	Delta       int64
	Reason      string
	RefType     string
	RefID       string
	Actor       string
}

// NewBatchSpec especificación del lote destino cuando un traslado lo crea.
type NewBatchSpec struct {
	BatchNumber string
	Expiry      *time.Time
}

// TransferInput entrada de un traslado entre lotes del mismo producto.
// ToBatchNumber referencia un lote existente; si no existe y NewBatch trae
// una especificación, el destino se crea con stock previo cero.
type TransferInput struct {
	ProductID     string
	FromBatch     string
	ToBatchNumber string
	NewBatch      *NewBatchSpec
	Quantity      int64
	Reason        string
	RefType       string
	RefID         string
	Actor         string
}

// Receive encuentra o crea el lote y suma Quantity+FreeQuantity al stock del
// lote y del producto. En un lote existente, precios y vencimiento solo se
// actualizan si vienen explícitos. Un lote ya existente es la ruta normal de
// actualización, nunca un error.
func (e *Engine) Receive(r Repos, in ReceiveInput) (*entity.Movement, error) {
	if in.Quantity <= 0 || in.FreeQuantity < 0 || in.BatchNumber == "" {
		return nil, fmt.Errorf("%w: recepción requiere lote y cantidad positiva", domain.ErrInvalidInput)
	}
	product, err := r.Products.GetForUpdate(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, in.ProductID)
	}

	total := in.Quantity + in.FreeQuantity
	now := time.Now()

	batch, err := r.Batches.GetForUpdate(in.ProductID, in.BatchNumber)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		batch = &entity.Batch{
			ID:          uuid.New().String(),
			ProductID:   in.ProductID,
			BatchNumber: in.BatchNumber,
			OnHand:      0,
			CreatedAt:   now,
		}
		// Lote nuevo sin precios propios: hereda los del producto
		batch.PurchasePrice = product.PurchasePrice
		batch.MRP = product.MRP
		batch.SalePrice = product.SalePrice
		applyPricing(batch, in)
		batch.OnHand = total
		batch.UpdatedAt = now
		if err := r.Batches.Create(batch); err != nil {
			return nil, err
		}
	} else {
		applyPricing(batch, in)
		batch.OnHand += total
		batch.UpdatedAt = now
		if err := r.Batches.Save(batch); err != nil {
			return nil, err
		}
	}
	if err := r.Products.AddOnHand(in.ProductID, total); err != nil {
		return nil, err
	}

	return e.journal(r, &entity.Movement{
		Type:         entity.MovementTypeReceive,
		ProductID:    in.ProductID,
		BatchNumber:  in.BatchNumber,
		Quantity:     total,
		BalanceAfter: batch.OnHand,
		Reason:       in.Reason,
		RefType:      in.RefType,
		RefID:        in.RefID,
		CreatedBy:    in.Actor,
		CreatedAt:    now,
	})
}

// Dispense descuenta Quantity del lote nombrado. El lote debe existir y
// cubrir la cantidad; el chequeo y el decremento ocurren sobre la fila
// bloqueada, por lo que no hay carrera de doble despacho.
func (e *Engine) Dispense(r Repos, in DispenseInput) (*entity.Movement, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	product, err := r.Products.GetForUpdate(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, in.ProductID)
	}
	batch, err := r.Batches.GetForUpdate(in.ProductID, in.BatchNumber)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: producto %s lote %s", domain.ErrBatchNotFound, in.ProductID, in.BatchNumber)
	}
	if batch.OnHand < in.Quantity {
		return nil, fmt.Errorf("%w en lote %s: solicitado %d, disponible %d",
			domain.ErrInsufficientStock, in.BatchNumber, in.Quantity, batch.OnHand)
	}

	now := time.Now()
	batch.OnHand -= in.Quantity
	batch.UpdatedAt = now
	if err := r.Batches.Save(batch); err != nil {
		return nil, err
	}
	if err := r.Products.AddOnHand(in.ProductID, -in.Quantity); err != nil {
		return nil, err
	}

	return e.journal(r, &entity.Movement{
		Type:         entity.MovementTypeDispense,
		ProductID:    in.ProductID,
		BatchNumber:  in.BatchNumber,
		Quantity:     -in.Quantity,
		BalanceAfter: batch.OnHand,
		Reason:       in.Reason,
		RefType:      in.RefType,
		RefID:        in.RefID,
		CreatedBy:    in.Actor,
		CreatedAt:    now,
	})
}

// ReturnCredit reingresa Quantity al lote. Si el lote fue eliminado tras
// agotarse, se recrea con la cantidad devuelta y sin datos de costo (el
// costo original se perdió con el lote; queda en cero a propósito). La cota
// "devuelto acumulado ≤ vendido" es responsabilidad del caso de uso que
// conoce la venta original.
func (e *Engine) ReturnCredit(r Repos, in ReturnCreditInput) (*entity.Movement, error) {
	if in.Quantity <= 0 || in.BatchNumber == "" {
		return nil, fmt.Errorf("%w: devolución requiere lote y cantidad positiva", domain.ErrInvalidInput)
	}
	product, err := r.Products.GetForUpdate(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, in.ProductID)
	}

	now := time.Now()
	batch, err := r.Batches.GetForUpdate(in.ProductID, in.BatchNumber)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		batch = &entity.Batch{
			ID:          uuid.New().String(),
			ProductID:   in.ProductID,
			BatchNumber: in.BatchNumber,
			OnHand:      in.Quantity,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := r.Batches.Create(batch); err != nil {
			return nil, err
		}
	} else {
		batch.OnHand += in.Quantity
		batch.UpdatedAt = now
		if err := r.Batches.Save(batch); err != nil {
			return nil, err
		}
	}
	if err := r.Products.AddOnHand(in.ProductID, in.Quantity); err != nil {
		return nil, err
	}

	return e.journal(r, &entity.Movement{
		Type:         entity.MovementTypeReturn,
		ProductID:    in.ProductID,
		BatchNumber:  in.BatchNumber,
		Quantity:     in.Quantity,
		BalanceAfter: batch.OnHand,
		Reason:       in.Reason,
		RefType:      in.RefType,
		RefID:        in.RefID,
		CreatedBy:    in.Actor,
		CreatedAt:    now,
	})
}

// Adjust aplica un delta con signo a un lote existente (daño, corrección,
// conteo físico). Rechaza deltas que dejarían el stock negativo.
func (e *Engine) Adjust(r Repos, in AdjustInput) (*entity.Movement, error) {
	if in.Delta == 0 {
		return nil, fmt.Errorf("%w: el delta de ajuste no puede ser cero", domain.ErrInvalidInput)
	}
	product, err := r.Products.GetForUpdate(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, in.ProductID)
	}
	batch, err := r.Batches.GetForUpdate(in.ProductID, in.BatchNumber)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: producto %s lote %s", domain.ErrBatchNotFound, in.ProductID, in.BatchNumber)
	}
	if batch.OnHand+in.Delta < 0 {
		return nil, fmt.Errorf("%w en lote %s: ajuste %d sobre disponible %d",
			domain.ErrInsufficientStock, in.BatchNumber, in.Delta, batch.OnHand)
	}

	now := time.Now()
	batch.OnHand += in.Delta
	batch.UpdatedAt = now
	if err := r.Batches.Save(batch); err != nil {
		return nil, err
	}
	if err := r.Products.AddOnHand(in.ProductID, in.Delta); err != nil {
		return nil, err
	}

	return e.journal(r, &entity.Movement{
		Type:         entity.MovementTypeAdjust,
		ProductID:    in.ProductID,
		BatchNumber:  in.BatchNumber,
		Quantity:     in.Delta,
		BalanceAfter: batch.OnHand,
		Reason:       in.Reason,
		RefType:      in.RefType,
		RefID:        in.RefID,
		CreatedBy:    in.Actor,
		CreatedAt:    now,
	})
}

// Transfer mueve Quantity del lote origen al destino dentro de la misma
// transacción: descuenta el origen y acredita el destino, creándolo desde
// NewBatch si no existe. Si cualquiera de las dos patas falla, el caller
// hace Rollback y no queda traslado a medias. Emite dos asientos: la salida
// del origen (con el lote destino anotado) y la entrada al destino.
func (e *Engine) Transfer(r Repos, in TransferInput) ([]*entity.Movement, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	toNumber := in.ToBatchNumber
	if toNumber == "" && in.NewBatch != nil {
		toNumber = in.NewBatch.BatchNumber
	}
	if toNumber == "" || toNumber == in.FromBatch {
		return nil, fmt.Errorf("%w: traslado requiere lote destino distinto del origen", domain.ErrInvalidInput)
	}

	product, err := r.Products.GetForUpdate(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, in.ProductID)
	}

	// Bloqueo de ambos lotes en orden lexicográfico de número de lote
	numbers := []string{in.FromBatch, toNumber}
	sort.Strings(numbers)
	locked := make(map[string]*entity.Batch, 2)
	for _, n := range numbers {
		b, err := r.Batches.GetForUpdate(in.ProductID, n)
		if err != nil {
			return nil, err
		}
		locked[n] = b
	}

	from := locked[in.FromBatch]
	if from == nil {
		return nil, fmt.Errorf("%w: producto %s lote %s", domain.ErrBatchNotFound, in.ProductID, in.FromBatch)
	}
	if from.OnHand < in.Quantity {
		return nil, fmt.Errorf("%w en lote %s: solicitado %d, disponible %d",
			domain.ErrInsufficientStock, in.FromBatch, in.Quantity, from.OnHand)
	}

	now := time.Now()
	to := locked[toNumber]
	if to == nil {
		if in.NewBatch == nil {
			return nil, fmt.Errorf("%w: producto %s lote %s", domain.ErrBatchNotFound, in.ProductID, toNumber)
		}
		to = &entity.Batch{
			ID:          uuid.New().String(),
			ProductID:   in.ProductID,
			BatchNumber: toNumber,
			Expiry:      in.NewBatch.Expiry,
			OnHand:      0,
			// El destino hereda los precios del origen
			PurchasePrice: from.PurchasePrice,
			MRP:           from.MRP,
			SalePrice:     from.SalePrice,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := r.Batches.Create(to); err != nil {
			return nil, err
		}
	}

	from.OnHand -= in.Quantity
	from.UpdatedAt = now
	if err := r.Batches.Save(from); err != nil {
		return nil, err
	}
	to.OnHand += in.Quantity
	to.UpdatedAt = now
	if err := r.Batches.Save(to); err != nil {
		return nil, err
	}
	// El agregado del producto no cambia: las dos patas se cancelan.

	out, err := e.journal(r, &entity.Movement{
		Type:          entity.MovementTypeTransfer,
		ProductID:     in.ProductID,
		BatchNumber:   in.FromBatch,
		ToBatchNumber: toNumber,
		Quantity:      -in.Quantity,
		BalanceAfter:  from.OnHand,
		Reason:        in.Reason,
		RefType:       in.RefType,
		RefID:         in.RefID,
		CreatedBy:     in.Actor,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, err
	}
	inMov, err := e.journal(r, &entity.Movement{
		Type:         entity.MovementTypeTransfer,
		ProductID:    in.ProductID,
		BatchNumber:  toNumber,
		Quantity:     in.Quantity,
		BalanceAfter: to.OnHand,
		Reason:       in.Reason,
		RefType:      in.RefType,
		RefID:        in.RefID,
		CreatedBy:    in.Actor,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	return []*entity.Movement{out, inMov}, nil
}

// journal escribe el asiento en el diario dentro de la transacción en curso.
func (e *Engine) journal(r Repos, m *entity.Movement) (*entity.Movement, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if err := r.Movements.Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

// applyPricing actualiza los campos de precio/vencimiento del lote solo
// cuando vienen explícitos en la entrada.
func applyPricing(batch *entity.Batch, in ReceiveInput) {
	if in.PurchasePrice != nil {
		batch.PurchasePrice = *in.PurchasePrice
	}
	if in.MRP != nil {
		batch.MRP = *in.MRP
	}
	if in.SalePrice != nil {
		batch.SalePrice = *in.SalePrice
	}
	if in.Expiry != nil {
		batch.Expiry = in.Expiry
	}
}
