// Package ledgertest provee un almacén en memoria que implementa los puertos
// de persistencia y los TxRunner de la aplicación, con rollback por snapshot.
// Se usa en los tests del motor y de los casos de uso de documentos; no es
// apto para producción.
package ledgertest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/farmacia-pro/internal/application/ledger"
	"github.com/tu-usuario/farmacia-pro/internal/application/purchasing"
	"github.com/tu-usuario/farmacia-pro/internal/application/sales"
	"github.com/tu-usuario/farmacia-pro/internal/domain"
	"github.com/tu-usuario/farmacia-pro/internal/domain/entity"
	"github.com/tu-usuario/farmacia-pro/internal/domain/repository"
)

var (
	_ ledger.TxRunner     = (*Store)(nil)
	_ purchasing.TxRunner = (*Store)(nil)
	_ sales.TxRunner      = (*Store)(nil)
)

// Store almacén en memoria. Las transacciones se serializan con un mutex y
// el rollback restaura un snapshot tomado al comenzar; las mutaciones son
// copy-on-write, de modo que el snapshot conserva los valores previos.
type Store struct {
	mu              sync.Mutex
	products        map[string]*entity.Product
	batches         map[string]*entity.Batch // clave productID + "|" + batchNumber
	movements       []*entity.Movement
	grns            map[string]*entity.GRN
	sales           map[string]*entity.Sale
	salesReturns    map[string]*entity.SalesReturn
	purchaseReturns map[string]*entity.PurchaseReturn
	orders          map[string]*entity.SalesOrder
	compliance      []*entity.ComplianceEntry

	// Hooks de inyección de fallas para probar atomicidad.
	BatchCreateHook func(*entity.Batch) error
	BatchSaveHook   func(*entity.Batch) error

	// SaleLockHook corre al tomar el bloqueo de una venta. Permite simular
	// lo que otra transacción confirmó mientras esta esperaba el bloqueo.
	SaleLockHook func(saleID string) error
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:        map[string]*entity.Product{},
		batches:         map[string]*entity.Batch{},
		grns:            map[string]*entity.GRN{},
		sales:           map[string]*entity.Sale{},
		salesReturns:    map[string]*entity.SalesReturn{},
		purchaseReturns: map[string]*entity.PurchaseReturn{},
		orders:          map[string]*entity.SalesOrder{},
	}
}

func batchKey(productID, batchNumber string) string {
	return productID + "|" + batchNumber
}

// ── snapshot / rollback ───────────────────────────────────────────────────────

type snapshot struct {
	products        map[string]*entity.Product
	batches         map[string]*entity.Batch
	movements       []*entity.Movement
	grns            map[string]*entity.GRN
	sales           map[string]*entity.Sale
	salesReturns    map[string]*entity.SalesReturn
	purchaseReturns map[string]*entity.PurchaseReturn
	orders          map[string]*entity.SalesOrder
	compliance      []*entity.ComplianceEntry
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) take() snapshot {
	return snapshot{
		products:        copyMap(s.products),
		batches:         copyMap(s.batches),
		movements:       s.movements[:len(s.movements):len(s.movements)],
		grns:            copyMap(s.grns),
		sales:           copyMap(s.sales),
		salesReturns:    copyMap(s.salesReturns),
		purchaseReturns: copyMap(s.purchaseReturns),
		orders:          copyMap(s.orders),
		compliance:      s.compliance[:len(s.compliance):len(s.compliance)],
	}
}

func (s *Store) restore(sn snapshot) {
	s.products = sn.products
	s.batches = sn.batches
	s.movements = sn.movements
	s.grns = sn.grns
	s.sales = sn.sales
	s.salesReturns = sn.salesReturns
	s.purchaseReturns = sn.purchaseReturns
	s.orders = sn.orders
	s.compliance = sn.compliance
}

func (s *Store) inTx(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn := s.take()
	if err := fn(); err != nil {
		s.restore(sn)
		return err
	}
	return nil
}

// LedgerRepos devuelve los repos del motor atados al almacén.
func (s *Store) LedgerRepos() ledger.Repos {
	return ledger.Repos{
		Products:  &productRepo{s},
		Batches:   &batchRepo{s},
		Movements: &movementRepo{s},
	}
}

// Run implementa ledger.TxRunner.
func (s *Store) Run(_ context.Context, fn func(r ledger.Repos) error) error {
	return s.inTx(func() error { return fn(s.LedgerRepos()) })
}

// RunPurchasing implementa purchasing.TxRunner.
func (s *Store) RunPurchasing(_ context.Context, fn func(l ledger.Repos, d purchasing.Repos) error) error {
	return s.inTx(func() error {
		return fn(s.LedgerRepos(), purchasing.Repos{
			GRNs:            &grnRepo{s},
			PurchaseReturns: &purchaseReturnRepo{s},
		})
	})
}

// RunSales implementa sales.TxRunner.
func (s *Store) RunSales(_ context.Context, fn func(l ledger.Repos, d sales.Repos) error) error {
	return s.inTx(func() error {
		return fn(s.LedgerRepos(), sales.Repos{
			Sales:        &saleRepo{s},
			SalesReturns: &salesReturnRepo{s},
			Orders:       &orderRepo{s},
			Compliance:   &complianceRepo{s},
		})
	})
}

// ── siembra y lectura directa para tests ─────────────────────────────────────

// SeedProduct inserta un producto directamente (sin transacción).
func (s *Store) SeedProduct(p *entity.Product) {
	cp := *p
	s.products[p.ID] = &cp
}

// SeedBatch inserta un lote directamente y suma su stock al producto.
func (s *Store) SeedBatch(b *entity.Batch) {
	cp := *b
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	s.batches[batchKey(b.ProductID, b.BatchNumber)] = &cp
	if p, ok := s.products[b.ProductID]; ok {
		pc := *p
		pc.OnHand += b.OnHand
		s.products[b.ProductID] = &pc
	}
}

// SeedSalesReturn inserta una devolución de venta directamente, como si otra
// transacción la hubiera confirmado.
func (s *Store) SeedSalesReturn(ret *entity.SalesReturn) {
	cp := *ret
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	cp.Lines = append([]entity.SalesReturnLine(nil), ret.Lines...)
	s.salesReturns[cp.ID] = &cp
}

// Product devuelve el producto almacenado (o nil).
func (s *Store) Product(id string) *entity.Product { return s.products[id] }

// Batch devuelve el lote almacenado (o nil).
func (s *Store) Batch(productID, batchNumber string) *entity.Batch {
	return s.batches[batchKey(productID, batchNumber)]
}

// Movements devuelve el diario completo en orden de inserción.
func (s *Store) Movements() []*entity.Movement { return s.movements }

// Sales devuelve las ventas persistidas.
func (s *Store) Sales() map[string]*entity.Sale { return s.sales }

// GRNs devuelve las recepciones persistidas.
func (s *Store) GRNs() map[string]*entity.GRN { return s.grns }

// ComplianceEntries devuelve el registro de controlados.
func (s *Store) ComplianceEntries() []*entity.ComplianceEntry { return s.compliance }

// Order devuelve un pedido por id (o nil).
func (s *Store) Order(id string) *entity.SalesOrder { return s.orders[id] }

// ── ProductRepository ────────────────────────────────────────────────────────

type productRepo struct{ s *Store }

func (r *productRepo) Create(p *entity.Product) error {
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrConflict
	}
	for _, existing := range r.s.products {
		if existing.Code == p.Code {
			return domain.ErrConflict
		}
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *productRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *productRepo) GetByCode(code string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *productRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *productRepo) Update(p *entity.Product) error {
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	current := r.s.products[p.ID]
	cp := *p
	cp.OnHand = current.OnHand // Update nunca toca stock
	r.s.products[p.ID] = &cp
	return nil
}

func (r *productRepo) AddOnHand(productID string, delta int64) error {
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	cp := *p
	cp.OnHand += delta
	r.s.products[productID] = &cp
	return nil
}

func (r *productRepo) List(search string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *productRepo) Delete(id string) error {
	delete(r.s.products, id)
	return nil
}

// ── BatchRepository ──────────────────────────────────────────────────────────

type batchRepo struct{ s *Store }

func (r *batchRepo) Create(b *entity.Batch) error {
	if r.s.BatchCreateHook != nil {
		if err := r.s.BatchCreateHook(b); err != nil {
			return err
		}
	}
	key := batchKey(b.ProductID, b.BatchNumber)
	if _, ok := r.s.batches[key]; ok {
		return domain.ErrConflict
	}
	cp := *b
	r.s.batches[key] = &cp
	return nil
}

func (r *batchRepo) Get(productID, batchNumber string) (*entity.Batch, error) {
	b, ok := r.s.batches[batchKey(productID, batchNumber)]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *batchRepo) GetForUpdate(productID, batchNumber string) (*entity.Batch, error) {
	return r.Get(productID, batchNumber)
}

func (r *batchRepo) Save(b *entity.Batch) error {
	if r.s.BatchSaveHook != nil {
		if err := r.s.BatchSaveHook(b); err != nil {
			return err
		}
	}
	key := batchKey(b.ProductID, b.BatchNumber)
	if _, ok := r.s.batches[key]; !ok {
		return domain.ErrBatchNotFound
	}
	cp := *b
	r.s.batches[key] = &cp
	return nil
}

func (r *batchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.s.batches {
		if b.ProductID == productID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *batchRepo) Delete(productID, batchNumber string) error {
	delete(r.s.batches, batchKey(productID, batchNumber))
	return nil
}

// ── MovementRepository ───────────────────────────────────────────────────────

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(m *entity.Movement) error {
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *movementRepo) List(f repository.MovementFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.BatchNumber != "" && m.BatchNumber != f.BatchNumber {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *movementRepo) ListByBatchAsc(productID, batchNumber string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if m.ProductID == productID && m.BatchNumber == batchNumber {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── documentos ───────────────────────────────────────────────────────────────

func countByDay[D any](docs map[string]D, day time.Time, dateOf func(D) time.Time) int64 {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	var n int64
	for _, d := range docs {
		t := dateOf(d)
		if !t.Before(start) && t.Before(end) {
			n++
		}
	}
	return n
}

type grnRepo struct{ s *Store }

func (r *grnRepo) Create(g *entity.GRN) error {
	for _, existing := range r.s.grns {
		if existing.InvoiceNo == g.InvoiceNo {
			return domain.ErrConflict
		}
	}
	cp := *g
	cp.Lines = append([]entity.GRNLine(nil), g.Lines...)
	r.s.grns[g.ID] = &cp
	return nil
}

func (r *grnRepo) GetByID(id string) (*entity.GRN, error) {
	g, ok := r.s.grns[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (r *grnRepo) GetByInvoiceNo(invoiceNo string) (*entity.GRN, error) {
	for _, g := range r.s.grns {
		if g.InvoiceNo == invoiceNo {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *grnRepo) List(from, to *time.Time, limit, offset int) ([]*entity.GRN, error) {
	var out []*entity.GRN
	for _, g := range r.s.grns {
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (r *grnRepo) CountByDay(day time.Time) (int64, error) {
	return countByDay(r.s.grns, day, func(g *entity.GRN) time.Time { return g.CreatedAt }), nil
}

type saleRepo struct{ s *Store }

func (r *saleRepo) Create(sale *entity.Sale) error {
	for _, existing := range r.s.sales {
		if existing.BillNo == sale.BillNo {
			return domain.ErrConflict
		}
	}
	cp := *sale
	cp.Lines = append([]entity.SaleLine(nil), sale.Lines...)
	r.s.sales[sale.ID] = &cp
	return nil
}

func (r *saleRepo) GetByID(id string) (*entity.Sale, error) {
	s, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *saleRepo) GetForUpdate(id string) (*entity.Sale, error) {
	if r.s.SaleLockHook != nil {
		if err := r.s.SaleLockHook(id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(id)
}

func (r *saleRepo) GetByBillNo(billNo string) (*entity.Sale, error) {
	for _, s := range r.s.sales {
		if s.BillNo == billNo {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *saleRepo) List(from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.s.sales {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *saleRepo) CountByDay(day time.Time) (int64, error) {
	return countByDay(r.s.sales, day, func(s *entity.Sale) time.Time { return s.Date }), nil
}

type salesReturnRepo struct{ s *Store }

func (r *salesReturnRepo) Create(ret *entity.SalesReturn) error {
	for _, existing := range r.s.salesReturns {
		if existing.ReturnNo == ret.ReturnNo {
			return domain.ErrConflict
		}
	}
	cp := *ret
	cp.Lines = append([]entity.SalesReturnLine(nil), ret.Lines...)
	r.s.salesReturns[ret.ID] = &cp
	return nil
}

func (r *salesReturnRepo) GetByID(id string) (*entity.SalesReturn, error) {
	ret, ok := r.s.salesReturns[id]
	if !ok {
		return nil, nil
	}
	cp := *ret
	return &cp, nil
}

func (r *salesReturnRepo) List(from, to *time.Time, limit, offset int) ([]*entity.SalesReturn, error) {
	var out []*entity.SalesReturn
	for _, ret := range r.s.salesReturns {
		cp := *ret
		out = append(out, &cp)
	}
	return out, nil
}

func (r *salesReturnRepo) ReturnedQuantity(saleID, productID, batchNumber string) (int64, error) {
	var total int64
	for _, ret := range r.s.salesReturns {
		if ret.SaleID != saleID {
			continue
		}
		for _, line := range ret.Lines {
			if line.ProductID == productID && line.BatchNumber == batchNumber {
				total += line.Quantity
			}
		}
	}
	return total, nil
}

func (r *salesReturnRepo) CountByDay(day time.Time) (int64, error) {
	return countByDay(r.s.salesReturns, day, func(ret *entity.SalesReturn) time.Time { return ret.Date }), nil
}

type purchaseReturnRepo struct{ s *Store }

func (r *purchaseReturnRepo) Create(ret *entity.PurchaseReturn) error {
	for _, existing := range r.s.purchaseReturns {
		if existing.ReturnNo == ret.ReturnNo {
			return domain.ErrConflict
		}
	}
	cp := *ret
	cp.Lines = append([]entity.PurchaseReturnLine(nil), ret.Lines...)
	r.s.purchaseReturns[ret.ID] = &cp
	return nil
}

func (r *purchaseReturnRepo) GetByID(id string) (*entity.PurchaseReturn, error) {
	ret, ok := r.s.purchaseReturns[id]
	if !ok {
		return nil, nil
	}
	cp := *ret
	return &cp, nil
}

func (r *purchaseReturnRepo) List(from, to *time.Time, limit, offset int) ([]*entity.PurchaseReturn, error) {
	var out []*entity.PurchaseReturn
	for _, ret := range r.s.purchaseReturns {
		cp := *ret
		out = append(out, &cp)
	}
	return out, nil
}

func (r *purchaseReturnRepo) CountByDay(day time.Time) (int64, error) {
	return countByDay(r.s.purchaseReturns, day, func(ret *entity.PurchaseReturn) time.Time { return ret.Date }), nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(o *entity.SalesOrder) error {
	for _, existing := range r.s.orders {
		if existing.OrderNo == o.OrderNo {
			return domain.ErrConflict
		}
	}
	cp := *o
	cp.Lines = append([]entity.SalesOrderLine(nil), o.Lines...)
	r.s.orders[o.ID] = &cp
	return nil
}

func (r *orderRepo) GetByID(id string) (*entity.SalesOrder, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *orderRepo) GetForUpdate(id string) (*entity.SalesOrder, error) {
	return r.GetByID(id)
}

func (r *orderRepo) List(status string, limit, offset int) ([]*entity.SalesOrder, error) {
	var out []*entity.SalesOrder
	for _, o := range r.s.orders {
		if status == "" || o.Status == status {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *orderRepo) SetStatus(id, status, saleID string) error {
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	cp := *o
	cp.Status = status
	if saleID != "" {
		cp.SaleID = saleID
	}
	cp.UpdatedAt = time.Now()
	r.s.orders[id] = &cp
	return nil
}

func (r *orderRepo) CountByDay(day time.Time) (int64, error) {
	return countByDay(r.s.orders, day, func(o *entity.SalesOrder) time.Time { return o.Date }), nil
}

type complianceRepo struct{ s *Store }

func (r *complianceRepo) Create(e *entity.ComplianceEntry) error {
	cp := *e
	r.s.compliance = append(r.s.compliance, &cp)
	return nil
}

func (r *complianceRepo) List(from, to *time.Time, limit, offset int) ([]*entity.ComplianceEntry, error) {
	var out []*entity.ComplianceEntry
	for _, e := range r.s.compliance {
		if from != nil && e.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && e.CreatedAt.After(*to) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}
