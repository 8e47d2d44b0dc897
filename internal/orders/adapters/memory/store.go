package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// Store provides an in-memory unit-of-work implementation useful for local
// development and tests. Transactions take a snapshot of the whole dataset
// and restore it when the transaction function returns an error, giving the
// same all-or-nothing semantics as the postgres store. A single mutex
// serializes transactions, which also serializes stock mutation per product.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

type dataset struct {
	orders     map[string]domain.Order
	items      map[string][]domain.OrderItem
	changes    map[string][]domain.StatusChange
	products   map[string]domain.Product
	coupons    map[string]domain.Coupon
	promotions []domain.Promotion
	ledger     map[string][]domain.StockTransaction
	sequences  map[string]int
}

func newDataset() *dataset {
	return &dataset{
		orders:    make(map[string]domain.Order),
		items:     make(map[string][]domain.OrderItem),
		changes:   make(map[string][]domain.StatusChange),
		products:  make(map[string]domain.Product),
		coupons:   make(map[string]domain.Coupon),
		ledger:    make(map[string][]domain.StockTransaction),
		sequences: make(map[string]int),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.items {
		c.items[k] = append([]domain.OrderItem(nil), v...)
	}
	for k, v := range d.changes {
		c.changes[k] = append([]domain.StatusChange(nil), v...)
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.coupons {
		c.coupons[k] = v
	}
	c.promotions = append([]domain.Promotion(nil), d.promotions...)
	for k, v := range d.ledger {
		c.ledger[k] = append([]domain.StockTransaction(nil), v...)
	}
	for k, v := range d.sequences {
		c.sequences[k] = v
	}
	return c
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// WithinTx executes fn against the live dataset and restores the pre-call
// snapshot if fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, &repos{data: s.data}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Repositories returns auto-committing repositories; each call locks the
// store for its duration.
func (s *Store) Repositories() ports.Repositories {
	return &repos{data: s.data, mu: &s.mu, store: s}
}

// SeedProduct inserts or replaces a product.
func (s *Store) SeedProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.ID] = p
}

// SeedCoupon inserts or replaces a coupon.
func (s *Store) SeedCoupon(c domain.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.coupons[c.ID] = c
}

// SeedPromotion appends a promotion.
func (s *Store) SeedPromotion(p domain.Promotion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.promotions = append(s.data.promotions, p)
}

type repos struct {
	data  *dataset
	mu    *sync.Mutex
	store *Store
}

// current returns the dataset to operate on, re-reading from the store when
// outside a transaction so reads observe rolled-back state correctly.
func (r *repos) current() *dataset {
	if r.store != nil {
		return r.store.data
	}
	return r.data
}

func (r *repos) lock() func() {
	if r.mu == nil {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *repos) Orders() ports.OrderRepository            { return &orderRepo{r} }
func (r *repos) Products() ports.ProductRepository        { return &productRepo{r} }
func (r *repos) Coupons() ports.CouponRepository          { return &couponRepo{r} }
func (r *repos) Promotions() ports.PromotionRepository    { return &promotionRepo{r} }
func (r *repos) Stock() ports.StockTransactionRepository  { return &stockRepo{r} }

type orderRepo struct{ r *repos }

func (o *orderRepo) Create(_ context.Context, order domain.Order) error {
	defer o.r.lock()()
	d := o.r.current()
	items := order.Items
	order.Items = nil
	d.orders[order.ID] = order
	d.items[order.ID] = append([]domain.OrderItem(nil), items...)
	return nil
}

func (o *orderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	defer o.r.lock()()
	d := o.r.current()
	order, ok := d.orders[id]
	if !ok || order.DeletedAt != nil {
		return nil, &domain.NotFoundError{Entity: "order", ID: id}
	}
	copied := order
	return &copied, nil
}

func (o *orderRepo) LoadItems(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	defer o.r.lock()()
	d := o.r.current()
	return append([]domain.OrderItem(nil), d.items[orderID]...), nil
}

func (o *orderRepo) List(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	defer o.r.lock()()
	d := o.r.current()

	var result []domain.Order
	for _, order := range d.orders {
		if order.DeletedAt != nil {
			continue
		}
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.Order{}, nil
	}
	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}

	slice := make([]domain.Order, end-start)
	copy(slice, result[start:end])
	return slice, nil
}

func (o *orderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	defer o.r.lock()()
	d := o.r.current()
	order, ok := d.orders[id]
	if !ok || order.DeletedAt != nil {
		return &domain.NotFoundError{Entity: "order", ID: id}
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	d.orders[id] = order
	return nil
}

func (o *orderRepo) UpdateItem(_ context.Context, item domain.OrderItem) error {
	defer o.r.lock()()
	d := o.r.current()
	items := d.items[item.OrderID]
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return nil
		}
	}
	return &domain.NotFoundError{Entity: "order item", ID: item.ID}
}

func (o *orderRepo) UpdateTotals(_ context.Context, order domain.Order) error {
	defer o.r.lock()()
	d := o.r.current()
	stored, ok := d.orders[order.ID]
	if !ok || stored.DeletedAt != nil {
		return &domain.NotFoundError{Entity: "order", ID: order.ID}
	}
	stored.Subtotal = order.Subtotal
	stored.CouponDiscount = order.CouponDiscount
	stored.PromotionDiscount = order.PromotionDiscount
	stored.ShippingFee = order.ShippingFee
	stored.Total = order.Total
	stored.UpdatedAt = time.Now().UTC()
	d.orders[order.ID] = stored
	return nil
}

func (o *orderRepo) AddStatusChange(_ context.Context, change domain.StatusChange) error {
	defer o.r.lock()()
	d := o.r.current()
	d.changes[change.OrderID] = append(d.changes[change.OrderID], change)
	return nil
}

func (o *orderRepo) ListStatusChanges(_ context.Context, orderID string) ([]domain.StatusChange, error) {
	defer o.r.lock()()
	d := o.r.current()
	return append([]domain.StatusChange(nil), d.changes[orderID]...), nil
}

func (o *orderRepo) NextOrderNumber(_ context.Context, day time.Time) (int, error) {
	defer o.r.lock()()
	d := o.r.current()
	key := day.UTC().Format("2006-01-02")
	d.sequences[key]++
	return d.sequences[key], nil
}

func (o *orderRepo) SoftDelete(_ context.Context, id string) error {
	defer o.r.lock()()
	d := o.r.current()
	order, ok := d.orders[id]
	if !ok || order.DeletedAt != nil {
		return &domain.NotFoundError{Entity: "order", ID: id}
	}
	now := time.Now().UTC()
	order.DeletedAt = &now
	d.orders[id] = order
	return nil
}

type productRepo struct{ r *repos }

func (p *productRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	defer p.r.lock()()
	d := p.r.current()
	product, ok := d.products[id]
	if !ok || product.DeletedAt != nil {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}
	copied := product
	return &copied, nil
}

// GetForUpdate has plain read semantics here; the store mutex already
// serializes whole transactions.
func (p *productRepo) GetForUpdate(ctx context.Context, id string) (*domain.Product, error) {
	return p.GetByID(ctx, id)
}

func (p *productRepo) UpdateStock(_ context.Context, id string, stock int) error {
	defer p.r.lock()()
	d := p.r.current()
	product, ok := d.products[id]
	if !ok {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}
	product.Stock = stock
	d.products[id] = product
	return nil
}

type couponRepo struct{ r *repos }

func (c *couponRepo) GetByCode(_ context.Context, code string) (*domain.Coupon, error) {
	defer c.r.lock()()
	d := c.r.current()
	for _, coupon := range d.coupons {
		if coupon.Code == code {
			copied := coupon
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "coupon", ID: code}
}

func (c *couponRepo) IncrementUsage(_ context.Context, id string) error {
	defer c.r.lock()()
	d := c.r.current()
	coupon, ok := d.coupons[id]
	if !ok {
		return &domain.NotFoundError{Entity: "coupon", ID: id}
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return &domain.ConcurrencyConflictError{Entity: "coupon", ID: id}
	}
	coupon.UsedCount++
	d.coupons[id] = coupon
	return nil
}

type promotionRepo struct{ r *repos }

func (p *promotionRepo) ListActive(_ context.Context, now time.Time) ([]domain.Promotion, error) {
	defer p.r.lock()()
	d := p.r.current()

	var result []domain.Promotion
	for _, promo := range d.promotions {
		if !promo.Active || now.Before(promo.ValidFrom) || now.After(promo.ValidUntil) {
			continue
		}
		result = append(result, promo)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (p *promotionRepo) IncrementUsage(_ context.Context, id string) error {
	defer p.r.lock()()
	d := p.r.current()
	for i := range d.promotions {
		if d.promotions[i].ID == id {
			d.promotions[i].UsedCount++
			return nil
		}
	}
	return &domain.NotFoundError{Entity: "promotion", ID: id}
}

type stockRepo struct{ r *repos }

func (s *stockRepo) Append(_ context.Context, tx domain.StockTransaction) (*domain.StockTransaction, error) {
	defer s.r.lock()()
	d := s.r.current()
	d.ledger[tx.ProductID] = append(d.ledger[tx.ProductID], tx)
	copied := tx
	return &copied, nil
}

func (s *stockRepo) ListForProduct(_ context.Context, productID string) ([]domain.StockTransaction, error) {
	defer s.r.lock()()
	d := s.r.current()
	return append([]domain.StockTransaction(nil), d.ledger[productID]...), nil
}
