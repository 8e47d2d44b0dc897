package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopworks/fulfillment/internal/orders/domain"
)

type PromotionRepository struct {
	q querier
}

// ListActive returns promotions valid at the given time, newest first.
// The matcher's first-eligible-wins rule depends on this order.
func (r *PromotionRepository) ListActive(ctx context.Context, now time.Time) ([]domain.Promotion, error) {
	query := `
		SELECT id, name, type, scope, buy_quantity, get_quantity, pay_quantity,
			discount_type, discount_value, max_discount, product_ids, category_id,
			valid_from, valid_until, usage_limit, used_count, active, created_at
		FROM promotions
		WHERE active AND valid_from <= $1 AND valid_until >= $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	var promotions []domain.Promotion
	for rows.Next() {
		var promo domain.Promotion
		var discountType, categoryID *string
		if err := rows.Scan(
			&promo.ID,
			&promo.Name,
			&promo.Type,
			&promo.Scope,
			&promo.BuyQuantity,
			&promo.GetQuantity,
			&promo.PayQuantity,
			&discountType,
			&promo.DiscountValue,
			&promo.MaxDiscount,
			&promo.ProductIDs,
			&categoryID,
			&promo.ValidFrom,
			&promo.ValidUntil,
			&promo.UsageLimit,
			&promo.UsedCount,
			&promo.Active,
			&promo.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		if discountType != nil {
			promo.DiscountType = domain.CouponType(*discountType)
		}
		if categoryID != nil {
			promo.CategoryID = *categoryID
		}
		promotions = append(promotions, promo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotions: %w", err)
	}
	return promotions, nil
}

func (r *PromotionRepository) IncrementUsage(ctx context.Context, id string) error {
	query := `
		UPDATE promotions
		SET used_count = used_count + 1
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment promotion usage: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "promotion", ID: id}
	}
	return nil
}
