package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

// GRNUseCase crea recepciones de mercancía: una transacción por documento,
// una entrada de stock por línea vía el motor de inventario.
type GRNUseCase struct {
	txRunner TxRunner
	engine   *ledger.Engine
	products repository.ProductRepository
	grns     repository.GRNRepository
}

// NewGRNUseCase construye el caso de uso.
func NewGRNUseCase(
	txRunner TxRunner,
	engine *ledger.Engine,
	products repository.ProductRepository,
	grns repository.GRNRepository,
) *GRNUseCase {
	return &GRNUseCase{txRunner: txRunner, engine: engine, products: products, grns: grns}
}

// CreateGRN valida todas las líneas, aplica una recepción por línea y
// persiste el documento, todo en una transacción. Un InvoiceNo repetido se
// rechaza con ErrDuplicateNumber; la carrera de dos peticiones con el mismo
// número la resuelve el índice único: la perdedora reintenta y encuentra el
// duplicado en la revalidación.
func (uc *GRNUseCase) CreateGRN(ctx context.Context, actor string, in dto.CreateGRNRequest) (*dto.GRNResponse, error) {
	if in.InvoiceNo == "" || len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: invoice_no y al menos una línea son requeridos", domain.ErrInvalidInput)
	}

	// Validación estructural y de referencias, antes de abrir la transacción
	productsByID := make(map[string]*entity.Product, len(in.Lines))
	for i := range in.Lines {
		line := &in.Lines[i]
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d: cantidad debe ser positiva", domain.ErrInvalidInput, i+1)
		}
		if line.FreeQuantity < 0 {
			return nil, fmt.Errorf("%w: línea %d: cantidad bonificada negativa", domain.ErrInvalidInput, i+1)
		}
		if line.PurchasePrice.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d: precio de compra negativo", domain.ErrInvalidInput, i+1)
		}
		if line.BatchNumber == "" {
			return nil, fmt.Errorf("%w: línea %d: número de lote requerido", domain.ErrInvalidInput, i+1)
		}
		product, err := uc.products.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: línea %d: %s", domain.ErrProductNotFound, i+1, line.ProductID)
		}
		productsByID[line.ProductID] = product
	}

	if existing, err := uc.grns.GetByInvoiceNo(in.InvoiceNo); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrDuplicateNumber, in.InvoiceNo)
	}

	var grn *entity.GRN
	err := ledger.RetryConflict(3, func() error {
		return uc.txRunner.RunPurchasing(ctx, func(l ledger.Repos, d Repos) error {
			// Revalidar el número dentro de la tx: la precondición pudo envejecer
			if existing, err := d.GRNs.GetByInvoiceNo(in.InvoiceNo); err != nil {
				return err
			} else if existing != nil {
				return fmt.Errorf("%w: factura %s", domain.ErrDuplicateNumber, in.InvoiceNo)
			}

			now := time.Now()
			grn = &entity.GRN{
				ID:          uuid.New().String(),
				InvoiceNo:   in.InvoiceNo,
				InvoiceDate: in.InvoiceDate,
				Vendor:      in.Vendor,
				CreatedBy:   actor,
				CreatedAt:   now,
			}

			var grandTotal decimal.Decimal
			for i := range in.Lines {
				line := &in.Lines[i]
				product := productsByID[line.ProductID]
				purchasePrice := line.PurchasePrice
				if _, err := uc.engine.Receive(l, ledger.ReceiveInput{
					ProductID:     line.ProductID,
					BatchNumber:   line.BatchNumber,
					Quantity:      line.Quantity,
					FreeQuantity:  line.FreeQuantity,
					PurchasePrice: &purchasePrice,
					MRP:           line.MRP,
					SalePrice:     line.SalePrice,
					Expiry:        line.Expiry,
					RefType:       entity.RefTypeGRN,
					RefID:         grn.ID,
					Actor:         actor,
				}); err != nil {
					return err
				}

				amount := decimal.NewFromInt(line.Quantity).Mul(line.PurchasePrice)
				grandTotal = grandTotal.Add(amount)
				grn.Lines = append(grn.Lines, entity.GRNLine{
					ID:            uuid.New().String(),
					GRNID:         grn.ID,
					ProductID:     line.ProductID,
					ProductName:   product.Name,
					BatchNumber:   line.BatchNumber,
					Expiry:        line.Expiry,
					Quantity:      line.Quantity,
					FreeQuantity:  line.FreeQuantity,
					PurchasePrice: line.PurchasePrice,
					MRP:           valueOr(line.MRP, product.MRP),
					SalePrice:     valueOr(line.SalePrice, product.SalePrice),
					Amount:        amount,
				})
			}
			grn.GrandTotal = grandTotal
			return d.GRNs.Create(grn)
		})
	})
	if err != nil {
		return nil, err
	}
	return toGRNResponse(grn), nil
}

// GetGRN obtiene una recepción por id.
func (uc *GRNUseCase) GetGRN(ctx context.Context, id string) (*dto.GRNResponse, error) {
	grn, err := uc.grns.GetByID(id)
	if err != nil {
		return nil, err
	}
	if grn == nil {
		return nil, fmt.Errorf("%w: grn %s", domain.ErrNotFound, id)
	}
	return toGRNResponse(grn), nil
}

// ListGRNs lista recepciones por rango de fechas.
func (uc *GRNUseCase) ListGRNs(ctx context.Context, from, to *time.Time, limit, offset int) ([]*dto.GRNResponse, error) {
	grns, err := uc.grns.List(from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.GRNResponse, 0, len(grns))
	for _, g := range grns {
		out = append(out, toGRNResponse(g))
	}
	return out, nil
}

func valueOr(v *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if v != nil {
		return *v
	}
	return def
}

func toGRNResponse(grn *entity.GRN) *dto.GRNResponse {
	resp := &dto.GRNResponse{
		ID:          grn.ID,
		InvoiceNo:   grn.InvoiceNo,
		InvoiceDate: grn.InvoiceDate.Format("2006-01-02"),
		Vendor:      grn.Vendor,
		GrandTotal:  grn.GrandTotal,
		Lines:       make([]dto.GRNLineResponse, 0, len(grn.Lines)),
	}
	for _, l := range grn.Lines {
		resp.Lines = append(resp.Lines, dto.GRNLineResponse{
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			BatchNumber:   l.BatchNumber,
			Expiry:        l.Expiry,
			Quantity:      l.Quantity,
			FreeQuantity:  l.FreeQuantity,
			PurchasePrice: l.PurchasePrice,
			Amount:        l.Amount,
		})
	}
	return resp
}
