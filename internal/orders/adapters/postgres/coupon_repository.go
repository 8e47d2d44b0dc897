package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopworks/fulfillment/internal/orders/domain"
)

type CouponRepository struct {
	q querier
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `
		SELECT id, code, type, value, min_purchase, max_discount,
			valid_from, valid_until, usage_limit, used_count, active
		FROM coupons
		WHERE code = $1
	`

	var coupon domain.Coupon
	err := r.q.QueryRow(ctx, query, code).Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.Type,
		&coupon.Value,
		&coupon.MinPurchase,
		&coupon.MaxDiscount,
		&coupon.ValidFrom,
		&coupon.ValidUntil,
		&coupon.UsageLimit,
		&coupon.UsedCount,
		&coupon.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "coupon", ID: code}
		}
		return nil, fmt.Errorf("select coupon: %w", err)
	}
	return &coupon, nil
}

// IncrementUsage bumps used_count but never past usage_limit. Two placements
// racing on the last redemption both pass Evaluate against the same snapshot;
// the guard makes the loser fail here and roll back.
func (r *CouponRepository) IncrementUsage(ctx context.Context, id string) error {
	query := `
		UPDATE coupons
		SET used_count = used_count + 1
		WHERE id = $1
		  AND (usage_limit = 0 OR used_count < usage_limit)
	`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment coupon usage: %w", err)
	}
	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM coupons WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check coupon existence: %w", err)
		}
		if !exists {
			return &domain.NotFoundError{Entity: "coupon", ID: id}
		}
		return &domain.ConcurrencyConflictError{Entity: "coupon", ID: id}
	}
	return nil
}
