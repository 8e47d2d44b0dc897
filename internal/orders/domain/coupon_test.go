package domain_test

import (
	"testing"
	"time"

	"github.com/shopworks/fulfillment/internal/orders/domain"
)

func TestCouponEvaluate(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	window := func(c domain.Coupon) domain.Coupon {
		if c.ValidFrom.IsZero() {
			c.ValidFrom = now.Add(-24 * time.Hour)
		}
		if c.ValidUntil.IsZero() {
			c.ValidUntil = now.Add(24 * time.Hour)
		}
		return c
	}

	tests := []struct {
		name         string
		coupon       domain.Coupon
		subtotal     int64
		wantValid    bool
		wantDiscount int64
		wantReason   string
	}{
		{
			name: "percentage discount",
			coupon: window(domain.Coupon{
				Type: domain.CouponPercentage, Value: 20, Active: true,
			}),
			subtotal:     300000,
			wantValid:    true,
			wantDiscount: 60000,
		},
		{
			name: "percentage capped by max discount",
			coupon: window(domain.Coupon{
				Type: domain.CouponPercentage, Value: 20, MaxDiscount: 40000, Active: true,
			}),
			subtotal:     300000,
			wantValid:    true,
			wantDiscount: 40000,
		},
		{
			name: "percentage truncates toward zero",
			coupon: window(domain.Coupon{
				Type: domain.CouponPercentage, Value: 33, Active: true,
			}),
			subtotal:     101,
			wantValid:    true,
			wantDiscount: 33,
		},
		{
			name: "fixed amount discount",
			coupon: window(domain.Coupon{
				Type: domain.CouponFixedAmount, Value: 25000, Active: true,
			}),
			subtotal:     300000,
			wantValid:    true,
			wantDiscount: 25000,
		},
		{
			name: "fixed amount clamped to subtotal",
			coupon: window(domain.Coupon{
				Type: domain.CouponFixedAmount, Value: 50000, Active: true,
			}),
			subtotal:     30000,
			wantValid:    true,
			wantDiscount: 30000,
		},
		{
			name: "disabled coupon",
			coupon: window(domain.Coupon{
				Type: domain.CouponPercentage, Value: 20, Active: false,
			}),
			subtotal:   300000,
			wantReason: "coupon is disabled",
		},
		{
			name: "not yet active",
			coupon: domain.Coupon{
				Type: domain.CouponPercentage, Value: 20, Active: true,
				ValidFrom:  now.Add(time.Hour),
				ValidUntil: now.Add(48 * time.Hour),
			},
			subtotal:   300000,
			wantReason: "coupon is not yet active",
		},
		{
			name: "expired",
			coupon: domain.Coupon{
				Type: domain.CouponPercentage, Value: 20, Active: true,
				ValidFrom:  now.Add(-48 * time.Hour),
				ValidUntil: now.Add(-time.Hour),
			},
			subtotal:   300000,
			wantReason: "coupon has expired",
		},
		{
			name: "usage limit reached",
			coupon: window(domain.Coupon{
				Type: domain.CouponPercentage, Value: 20, Active: true,
				UsageLimit: 100, UsedCount: 100,
			}),
			subtotal:   300000,
			wantReason: "coupon usage limit reached",
		},
		{
			name: "under usage limit still valid",
			coupon: window(domain.Coupon{
				Type: domain.CouponPercentage, Value: 20, Active: true,
				UsageLimit: 100, UsedCount: 99,
			}),
			subtotal:     300000,
			wantValid:    true,
			wantDiscount: 60000,
		},
		{
			name: "below minimum purchase",
			coupon: window(domain.Coupon{
				Type: domain.CouponPercentage, Value: 20, MinPurchase: 100000, Active: true,
			}),
			subtotal:   99999,
			wantReason: "order subtotal is below the coupon minimum purchase",
		},
		{
			name: "at minimum purchase is valid",
			coupon: window(domain.Coupon{
				Type: domain.CouponPercentage, Value: 20, MinPurchase: 100000, Active: true,
			}),
			subtotal:     100000,
			wantValid:    true,
			wantDiscount: 20000,
		},
		{
			name: "disabled reported before expiry",
			coupon: domain.Coupon{
				Type: domain.CouponPercentage, Value: 20, Active: false,
				ValidFrom:  now.Add(-48 * time.Hour),
				ValidUntil: now.Add(-time.Hour),
			},
			subtotal:   300000,
			wantReason: "coupon is disabled",
		},
		{
			name: "zero subtotal yields zero discount",
			coupon: window(domain.Coupon{
				Type: domain.CouponFixedAmount, Value: 5000, Active: true,
			}),
			subtotal:     0,
			wantValid:    true,
			wantDiscount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.coupon.Evaluate(tt.subtotal, now)

			if got.Valid != tt.wantValid {
				t.Errorf("Evaluate() valid = %v, want %v", got.Valid, tt.wantValid)
			}
			if got.Discount != tt.wantDiscount {
				t.Errorf("Evaluate() discount = %d, want %d", got.Discount, tt.wantDiscount)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Evaluate() reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}
