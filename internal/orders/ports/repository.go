package ports

import (
	"context"
	"time"

	"github.com/shopworks/fulfillment/internal/orders/domain"
)

// Store is the unit-of-work boundary. WithinTx runs fn against
// transaction-scoped repositories and commits only if fn returns nil;
// any error rolls back every write made inside fn.
type Store interface {
	// WithinTx executes fn inside a single atomic unit of work.
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	// Repositories returns auto-committing repositories for plain reads.
	Repositories() Repositories
}

// Repositories bundles the persistence ports of the fulfillment core.
type Repositories interface {
	Orders() OrderRepository
	Products() ProductRepository
	Coupons() CouponRepository
	Promotions() PromotionRepository
	Stock() StockTransactionRepository
}

// OrderRepository exposes persistence operations required by the application layer.
// Reads exclude soft-deleted orders. Related entities are loaded by explicit
// calls, never by implicit graph traversal.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	LoadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	UpdateItem(ctx context.Context, item domain.OrderItem) error
	UpdateTotals(ctx context.Context, order domain.Order) error
	AddStatusChange(ctx context.Context, change domain.StatusChange) error
	ListStatusChanges(ctx context.Context, orderID string) ([]domain.StatusChange, error)
	// NextOrderNumber returns the next value of the per-day sequence used to
	// build human-readable order numbers.
	NextOrderNumber(ctx context.Context, day time.Time) (int, error)
	SoftDelete(ctx context.Context, id string) error
}

// ProductRepository reads catalog projections and maintains the denormalized
// stock counter. UpdateStock must only ever be called by the stock ledger path.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// GetForUpdate locks the product row for the remainder of the enclosing
	// transaction, serializing concurrent stock mutation per product.
	GetForUpdate(ctx context.Context, id string) (*domain.Product, error)
	UpdateStock(ctx context.Context, id string, stock int) error
}

// CouponRepository resolves coupon codes and tracks redemption.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	IncrementUsage(ctx context.Context, id string) error
}

// PromotionRepository lists candidate promotions for matching.
type PromotionRepository interface {
	// ListActive returns active promotions valid at the given time, ordered
	// most-recently-created first. The matcher relies on that order as its
	// deterministic tie-break.
	ListActive(ctx context.Context, now time.Time) ([]domain.Promotion, error)
	IncrementUsage(ctx context.Context, id string) error
}

// StockTransactionRepository appends to and reads the immutable stock ledger.
type StockTransactionRepository interface {
	Append(ctx context.Context, tx domain.StockTransaction) (*domain.StockTransaction, error)
	ListForProduct(ctx context.Context, productID string) ([]domain.StockTransaction, error)
}

// ListFilter narrows order list queries by user, status and pagination.
type ListFilter struct {
	UserID   string
	Status   *domain.OrderStatus
	Page     int
	PageSize int
}
