package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/farmacia-pro/internal/application/dto"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

// ProductUseCase CRUD del catálogo de productos y consulta de sus lotes.
// Nunca toca stock: OnHand solo lo mueve el motor de inventario.
type ProductUseCase struct {
	products repository.ProductRepository
	batches  repository.BatchRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(products repository.ProductRepository, batches repository.BatchRepository) *ProductUseCase {
	return &ProductUseCase{products: products, batches: batches}
}

// CreateProduct da de alta un producto con stock cero. El código debe ser
// único; un duplicado devuelve ErrDuplicateNumber.
func (uc *ProductUseCase) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	existing, err := uc.products.GetByCode(in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: código %s", domain.ErrDuplicateNumber, in.Code)
	}

	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Code:          in.Code,
		Name:          in.Name,
		GenericName:   in.GenericName,
		Unit:          in.Unit,
		GSTRate:       in.GSTRate,
		MinStock:      in.MinStock,
		MRP:           in.MRP,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		Controlled:    in.Controlled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.products.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// UpdateProduct actualiza los campos presentes en la petición. OnHand no es
// editable por esta vía.
func (uc *ProductUseCase) UpdateProduct(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}

	if in.Name != "" {
		product.Name = in.Name
	}
	if in.GenericName != "" {
		product.GenericName = in.GenericName
	}
	if in.Unit != "" {
		product.Unit = in.Unit
	}
	if in.GSTRate != nil {
		product.GSTRate = *in.GSTRate
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if in.MRP != nil {
		product.MRP = *in.MRP
	}
	if in.PurchasePrice != nil {
		product.PurchasePrice = *in.PurchasePrice
	}
	if in.SalePrice != nil {
		product.SalePrice = *in.SalePrice
	}
	if in.Controlled != nil {
		product.Controlled = *in.Controlled
	}
	product.UpdatedAt = time.Now()

	if err := uc.products.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetProduct busca por id.
func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return toProductResponse(product), nil
}

// ListProducts lista con búsqueda opcional por código o nombre.
func (uc *ProductUseCase) ListProducts(ctx context.Context, search string, limit, offset int) ([]*dto.ProductResponse, error) {
	products, err := uc.products.List(search, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out, nil
}

// ListBatches lotes de un producto, incluidos los agotados.
func (uc *ProductUseCase) ListBatches(ctx context.Context, productID string) ([]*dto.BatchResponse, error) {
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	batches, err := uc.batches.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, &dto.BatchResponse{
			BatchNumber:   b.BatchNumber,
			Expiry:        b.Expiry,
			OnHand:        b.OnHand,
			PurchasePrice: b.PurchasePrice,
			MRP:           b.MRP,
			SalePrice:     b.SalePrice,
		})
	}
	return out, nil
}

// DeleteBatch elimina un lote agotado. Un lote con stock no se borra: primero
// hay que ajustarlo a cero para que el diario registre la salida.
func (uc *ProductUseCase) DeleteBatch(ctx context.Context, productID, batchNumber string) error {
	batch, err := uc.batches.Get(productID, batchNumber)
	if err != nil {
		return err
	}
	if batch == nil {
		return fmt.Errorf("%w: producto %s lote %s", domain.ErrBatchNotFound, productID, batchNumber)
	}
	if batch.HasStock() {
		return fmt.Errorf("%w: lote %s tiene %d unidades", domain.ErrBatchHasStock, batchNumber, batch.OnHand)
	}
	return uc.batches.Delete(productID, batchNumber)
}

// DeleteProduct elimina un producto sin stock en ningún lote.
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id string) error {
	product, err := uc.products.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	if product.OnHand != 0 {
		return fmt.Errorf("%w: producto %s tiene %d unidades", domain.ErrProductHasStock, product.Code, product.OnHand)
	}
	batches, err := uc.batches.ListByProduct(id)
	if err != nil {
		return err
	}
	for _, b := range batches {
		if b.HasStock() {
			return fmt.Errorf("%w: lote %s tiene %d unidades", domain.ErrProductHasStock, b.BatchNumber, b.OnHand)
		}
	}
	return uc.products.Delete(id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		GenericName:   p.GenericName,
		Unit:          p.Unit,
		GSTRate:       p.GSTRate,
		MinStock:      p.MinStock,
		MRP:           p.MRP,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		Controlled:    p.Controlled,
		OnHand:        p.OnHand,
	}
}
