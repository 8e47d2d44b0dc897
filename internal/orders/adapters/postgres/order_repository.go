package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// OrderRepository persists orders, their lines and their status history.
// Every read filters soft-deleted rows.
type OrderRepository struct {
	q querier
}

func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, order_number, subtotal, coupon_discount, promotion_discount,
			shipping_fee, total, status, payment_status, coupon_id, address_id,
			payment_method_id, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	couponID := nullable(order.CouponID)
	_, err := r.q.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.OrderNumber,
		order.Subtotal,
		order.CouponDiscount,
		order.PromotionDiscount,
		order.ShippingFee,
		order.Total,
		order.Status,
		order.PaymentStatus,
		couponID,
		order.AddressID,
		order.PaymentMethodID,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (
			id, order_id, product_id, quantity, unit_price, subtotal,
			promotion_id, promotion_discount, free_quantity
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, item := range order.Items {
		_, err := r.q.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
			nullable(item.PromotionID),
			item.PromotionDiscount,
			item.FreeQuantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

const orderColumns = `
	id, user_id, order_number, subtotal, coupon_discount, promotion_discount,
	shipping_fee, total, status, payment_status, coupon_id, address_id,
	payment_method_id, notes, created_at, updated_at
`

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1 AND deleted_at IS NULL
	`

	order, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "order", ID: id}
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) LoadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal,
			promotion_id, promotion_discount, free_quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var promotionID *string
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&promotionID,
			&item.PromotionDiscount,
			&item.FreeQuantity,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if promotionID != nil {
			item.PromotionID = *promotionID
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

func (r *OrderRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE deleted_at IS NULL
			AND ($1::text IS NULL OR user_id = $1)
			AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	var userFilter *string
	if filter.UserID != "" {
		userFilter = &filter.UserID
	}
	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}

	offset := (page - 1) * pageSize

	rows, err := r.q.Query(ctx, query, userFilter, statusFilter, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`

	result, err := r.q.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "order", ID: id}
	}
	return nil
}

func (r *OrderRepository) UpdateItem(ctx context.Context, item domain.OrderItem) error {
	query := `
		UPDATE order_items
		SET quantity = $1, subtotal = $2
		WHERE id = $3 AND order_id = $4
	`

	result, err := r.q.Exec(ctx, query, item.Quantity, item.Subtotal, item.ID, item.OrderID)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "order item", ID: item.ID}
	}
	return nil
}

func (r *OrderRepository) UpdateTotals(ctx context.Context, order domain.Order) error {
	query := `
		UPDATE orders
		SET subtotal = $1, coupon_discount = $2, promotion_discount = $3,
			shipping_fee = $4, total = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`

	result, err := r.q.Exec(ctx, query,
		order.Subtotal,
		order.CouponDiscount,
		order.PromotionDiscount,
		order.ShippingFee,
		order.Total,
		time.Now().UTC(),
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("update order totals: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "order", ID: order.ID}
	}
	return nil
}

func (r *OrderRepository) AddStatusChange(ctx context.Context, change domain.StatusChange) error {
	query := `
		INSERT INTO order_status_history (id, order_id, from_status, to_status, note, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.Exec(ctx, query,
		change.ID,
		change.OrderID,
		nullable(string(change.From)),
		change.To,
		change.Note,
		change.ActorID,
		change.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}
	return nil
}

func (r *OrderRepository) ListStatusChanges(ctx context.Context, orderID string) ([]domain.StatusChange, error) {
	query := `
		SELECT id, order_id, from_status, to_status, note, actor_id, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	defer rows.Close()

	var changes []domain.StatusChange
	for rows.Next() {
		var change domain.StatusChange
		var from *string
		if err := rows.Scan(
			&change.ID,
			&change.OrderID,
			&from,
			&change.To,
			&change.Note,
			&change.ActorID,
			&change.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan status change: %w", err)
		}
		if from != nil {
			change.From = domain.OrderStatus(*from)
		}
		changes = append(changes, change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status history: %w", err)
	}
	return changes, nil
}

// NextOrderNumber bumps and returns the per-day counter behind the
// human-readable order number. The upsert serializes concurrent placements
// on the same day row.
func (r *OrderRepository) NextOrderNumber(ctx context.Context, day time.Time) (int, error) {
	query := `
		INSERT INTO order_sequences (day, last_value)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last_value = order_sequences.last_value + 1
		RETURNING last_value
	`

	var seq int
	if err := r.q.QueryRow(ctx, query, day.UTC().Format("2006-01-02")).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return seq, nil
}

func (r *OrderRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE orders
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.q.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("soft delete order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "order", ID: id}
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	var couponID *string
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.Subtotal,
		&order.CouponDiscount,
		&order.PromotionDiscount,
		&order.ShippingFee,
		&order.Total,
		&order.Status,
		&order.PaymentStatus,
		&couponID,
		&order.AddressID,
		&order.PaymentMethodID,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if couponID != nil {
		order.CouponID = *couponID
	}
	return &order, nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
