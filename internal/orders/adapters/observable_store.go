package adapters

import (
	"context"
	"time"

	"github.com/shopworks/fulfillment/internal/database"
	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// ObservableStore decorates a Store so every repository call records its
// duration in the db_query_duration_seconds histogram, labelled by operation.
type ObservableStore struct {
	inner   ports.Store
	metrics *database.Metrics
}

func NewObservableStore(inner ports.Store, metrics *database.Metrics) *ObservableStore {
	return &ObservableStore{
		inner:   inner,
		metrics: metrics,
	}
}

func (s *ObservableStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) error {
	return s.inner.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		return fn(ctx, observableRepos{inner: r, metrics: s.metrics})
	})
}

func (s *ObservableStore) Repositories() ports.Repositories {
	return observableRepos{inner: s.inner.Repositories(), metrics: s.metrics}
}

type observableRepos struct {
	inner   ports.Repositories
	metrics *database.Metrics
}

func (r observableRepos) Orders() ports.OrderRepository {
	return observableOrders{inner: r.inner.Orders(), metrics: r.metrics}
}

func (r observableRepos) Products() ports.ProductRepository {
	return observableProducts{inner: r.inner.Products(), metrics: r.metrics}
}

func (r observableRepos) Coupons() ports.CouponRepository {
	return observableCoupons{inner: r.inner.Coupons(), metrics: r.metrics}
}

func (r observableRepos) Promotions() ports.PromotionRepository {
	return observablePromotions{inner: r.inner.Promotions(), metrics: r.metrics}
}

func (r observableRepos) Stock() ports.StockTransactionRepository {
	return observableStock{inner: r.inner.Stock(), metrics: r.metrics}
}

func record(ctx context.Context, m *database.Metrics, operation string, start time.Time) {
	m.RecordQuery(ctx, operation, time.Since(start).Seconds())
}

type observableOrders struct {
	inner   ports.OrderRepository
	metrics *database.Metrics
}

func (o observableOrders) Create(ctx context.Context, order domain.Order) error {
	defer record(ctx, o.metrics, "create_order", time.Now())
	return o.inner.Create(ctx, order)
}

func (o observableOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	defer record(ctx, o.metrics, "get_order_by_id", time.Now())
	return o.inner.GetByID(ctx, id)
}

func (o observableOrders) LoadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	defer record(ctx, o.metrics, "load_order_items", time.Now())
	return o.inner.LoadItems(ctx, orderID)
}

func (o observableOrders) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	defer record(ctx, o.metrics, "list_orders", time.Now())
	return o.inner.List(ctx, filter)
}

func (o observableOrders) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	defer record(ctx, o.metrics, "update_order_status", time.Now())
	return o.inner.UpdateStatus(ctx, id, status)
}

func (o observableOrders) UpdateItem(ctx context.Context, item domain.OrderItem) error {
	defer record(ctx, o.metrics, "update_order_item", time.Now())
	return o.inner.UpdateItem(ctx, item)
}

func (o observableOrders) UpdateTotals(ctx context.Context, order domain.Order) error {
	defer record(ctx, o.metrics, "update_order_totals", time.Now())
	return o.inner.UpdateTotals(ctx, order)
}

func (o observableOrders) AddStatusChange(ctx context.Context, change domain.StatusChange) error {
	defer record(ctx, o.metrics, "add_order_status_change", time.Now())
	return o.inner.AddStatusChange(ctx, change)
}

func (o observableOrders) ListStatusChanges(ctx context.Context, orderID string) ([]domain.StatusChange, error) {
	defer record(ctx, o.metrics, "list_order_status_changes", time.Now())
	return o.inner.ListStatusChanges(ctx, orderID)
}

func (o observableOrders) NextOrderNumber(ctx context.Context, day time.Time) (int, error) {
	defer record(ctx, o.metrics, "next_order_number", time.Now())
	return o.inner.NextOrderNumber(ctx, day)
}

func (o observableOrders) SoftDelete(ctx context.Context, id string) error {
	defer record(ctx, o.metrics, "soft_delete_order", time.Now())
	return o.inner.SoftDelete(ctx, id)
}

type observableProducts struct {
	inner   ports.ProductRepository
	metrics *database.Metrics
}

func (p observableProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	defer record(ctx, p.metrics, "get_product_by_id", time.Now())
	return p.inner.GetByID(ctx, id)
}

func (p observableProducts) GetForUpdate(ctx context.Context, id string) (*domain.Product, error) {
	defer record(ctx, p.metrics, "lock_product", time.Now())
	return p.inner.GetForUpdate(ctx, id)
}

func (p observableProducts) UpdateStock(ctx context.Context, id string, stock int) error {
	defer record(ctx, p.metrics, "update_product_stock", time.Now())
	return p.inner.UpdateStock(ctx, id, stock)
}

type observableCoupons struct {
	inner   ports.CouponRepository
	metrics *database.Metrics
}

func (c observableCoupons) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	defer record(ctx, c.metrics, "get_coupon_by_code", time.Now())
	return c.inner.GetByCode(ctx, code)
}

func (c observableCoupons) IncrementUsage(ctx context.Context, id string) error {
	defer record(ctx, c.metrics, "increment_coupon_usage", time.Now())
	return c.inner.IncrementUsage(ctx, id)
}

type observablePromotions struct {
	inner   ports.PromotionRepository
	metrics *database.Metrics
}

func (p observablePromotions) ListActive(ctx context.Context, now time.Time) ([]domain.Promotion, error) {
	defer record(ctx, p.metrics, "list_active_promotions", time.Now())
	return p.inner.ListActive(ctx, now)
}

func (p observablePromotions) IncrementUsage(ctx context.Context, id string) error {
	defer record(ctx, p.metrics, "increment_promotion_usage", time.Now())
	return p.inner.IncrementUsage(ctx, id)
}

type observableStock struct {
	inner   ports.StockTransactionRepository
	metrics *database.Metrics
}

func (s observableStock) Append(ctx context.Context, tx domain.StockTransaction) (*domain.StockTransaction, error) {
	defer record(ctx, s.metrics, "append_stock_transaction", time.Now())
	return s.inner.Append(ctx, tx)
}

func (s observableStock) ListForProduct(ctx context.Context, productID string) ([]domain.StockTransaction, error) {
	defer record(ctx, s.metrics, "list_stock_transactions", time.Now())
	return s.inner.ListForProduct(ctx, productID)
}
