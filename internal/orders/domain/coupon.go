package domain

import "time"

// CouponType selects the discount arithmetic for a coupon.
type CouponType string

const (
	CouponPercentage  CouponType = "PERCENTAGE"
	CouponFixedAmount CouponType = "FIXED_AMOUNT"
)

// Coupon is an order-wide discount code with a validity window and an
// optional usage limit. UsedCount is the only mutable field and is only
// incremented inside the placement transaction that consumes the coupon.
type Coupon struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Type        CouponType `json:"type"`
	Value       int64      `json:"value"`
	MinPurchase int64      `json:"min_purchase"`
	MaxDiscount int64      `json:"max_discount"`
	ValidFrom   time.Time  `json:"valid_from"`
	ValidUntil  time.Time  `json:"valid_until"`
	UsageLimit  int        `json:"usage_limit"`
	UsedCount   int        `json:"used_count"`
	Active      bool       `json:"active"`
}

// CouponResult is the outcome of evaluating a coupon against a subtotal.
type CouponResult struct {
	Discount int64
	Valid    bool
	Reason   string
}

// Evaluate computes the discount a coupon yields on the given subtotal at
// the given time. It performs no persistence. The checks run in a fixed
// order so the first failing rule determines the reported reason.
func (c Coupon) Evaluate(subtotal int64, now time.Time) CouponResult {
	if !c.Active {
		return CouponResult{Reason: "coupon is disabled"}
	}
	if now.Before(c.ValidFrom) {
		return CouponResult{Reason: "coupon is not yet active"}
	}
	if now.After(c.ValidUntil) {
		return CouponResult{Reason: "coupon has expired"}
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return CouponResult{Reason: "coupon usage limit reached"}
	}
	if c.MinPurchase > 0 && subtotal < c.MinPurchase {
		return CouponResult{Reason: "order subtotal is below the coupon minimum purchase"}
	}

	var discount int64
	switch c.Type {
	case CouponPercentage:
		discount = subtotal * c.Value / 100
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
	case CouponFixedAmount:
		discount = c.Value
	}

	// A coupon can never make the order negative.
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}

	return CouponResult{Discount: discount, Valid: true}
}
