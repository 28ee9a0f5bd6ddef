package inventory

import (
	"context"
	"fmt"

	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

// MovementUseCase expone ajustes y traslados manuales sobre el libro de stock
// y la consulta del diario de movimientos.
type MovementUseCase struct {
	txRunner  ledger.TxRunner
	engine    *ledger.Engine
	movements repository.MovementRepository
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(txRunner ledger.TxRunner, engine *ledger.Engine, movements repository.MovementRepository) *MovementUseCase {
	return &MovementUseCase{txRunner: txRunner, engine: engine, movements: movements}
}

// RegisterMovement aplica un movimiento manual. Un adjust mueve el delta con
// signo sobre un lote; un transfer mueve cantidad entre lotes del mismo
// producto sin alterar el total del producto.
func (uc *MovementUseCase) RegisterMovement(ctx context.Context, actor string, in dto.StockMovementRequest) ([]*dto.MovementResponse, error) {
	var created []*entity.Movement

	switch in.Type {
	case dto.MovementRequestAdjust:
		if in.BatchNumber == "" {
			return nil, fmt.Errorf("%w: el ajuste requiere lote", domain.ErrInvalidInput)
		}
		err := uc.txRunner.Run(ctx, func(l ledger.Repos) error {
			m, err := uc.engine.Adjust(l, ledger.AdjustInput{
				ProductID:   in.ProductID,
				BatchNumber: in.BatchNumber,
				Delta:       in.Delta,
				Reason:      in.Reason,
				RefType:     entity.RefTypeManual,
				Actor:       actor,
			})
			if err != nil {
				return err
			}
			created = []*entity.Movement{m}
			return nil
		})
		if err != nil {
			return nil, err
		}

	case dto.MovementRequestTransfer:
		if in.FromBatch == "" {
			return nil, fmt.Errorf("%w: el traslado requiere lote origen", domain.ErrInvalidInput)
		}
		if in.ToBatch == "" && in.NewBatch == nil {
			return nil, fmt.Errorf("%w: el traslado requiere lote destino o especificación de lote nuevo", domain.ErrInvalidInput)
		}
		var newBatch *ledger.NewBatchSpec
		if in.NewBatch != nil {
			newBatch = &ledger.NewBatchSpec{BatchNumber: in.NewBatch.BatchNumber, Expiry: in.NewBatch.Expiry}
		}
		err := uc.txRunner.Run(ctx, func(l ledger.Repos) error {
			ms, err := uc.engine.Transfer(l, ledger.TransferInput{
				ProductID:     in.ProductID,
				FromBatch:     in.FromBatch,
				ToBatchNumber: in.ToBatch,
				NewBatch:      newBatch,
				Quantity:      in.Quantity,
				Reason:        in.Reason,
				RefType:       entity.RefTypeManual,
				Actor:         actor,
			})
			if err != nil {
				return err
			}
			created = ms
			return nil
		})
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: tipo de movimiento desconocido %q", domain.ErrInvalidInput, in.Type)
	}

	out := make([]*dto.MovementResponse, 0, len(created))
	for _, m := range created {
		out = append(out, toMovementResponse(m))
	}
	return out, nil
}

// ListMovements consulta el diario con filtros opcionales.
func (uc *MovementUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*dto.MovementResponse, error) {
	movements, err := uc.movements.List(filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return out, nil
}

func toMovementResponse(m *entity.Movement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:            m.ID,
		Type:          m.Type,
		ProductID:     m.ProductID,
		BatchNumber:   m.BatchNumber,
		ToBatchNumber: m.ToBatchNumber,
		Quantity:      m.Quantity,
		BalanceAfter:  m.BalanceAfter,
		Reason:        m.Reason,
		RefType:       m.RefType,
		RefID:         m.RefID,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}
