package domain

import "time"

// PromotionType selects the benefit arithmetic for a promotion.
type PromotionType string

const (
	PromotionDiscount PromotionType = "DISCOUNT"
	PromotionBOGO     PromotionType = "BOGO"
	PromotionBuyXGetY PromotionType = "BUY_X_GET_Y"
	PromotionBuyXPayY PromotionType = "BUY_X_PAY_Y"
)

// PromotionScope determines which lines a promotion can attach to.
// ORDER scope is reserved for non-discount schemes evaluated at the order
// level; order-wide percentage or fixed reductions are modeled as coupons
// to avoid double-discount ambiguity.
type PromotionScope string

const (
	ScopeOrder    PromotionScope = "ORDER"
	ScopeProduct  PromotionScope = "PRODUCT"
	ScopeCategory PromotionScope = "CATEGORY"
)

// Promotion is a scoped quantity-based or discount-based incentive with the
// same validity-window and usage-limit shape as a coupon.
type Promotion struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Type          PromotionType  `json:"type"`
	Scope         PromotionScope `json:"scope"`
	BuyQuantity   int            `json:"buy_quantity,omitempty"`
	GetQuantity   int            `json:"get_quantity,omitempty"`
	PayQuantity   int            `json:"pay_quantity,omitempty"`
	DiscountType  CouponType     `json:"discount_type,omitempty"`
	DiscountValue int64          `json:"discount_value,omitempty"`
	MaxDiscount   int64          `json:"max_discount,omitempty"`
	ProductIDs    []string       `json:"product_ids,omitempty"`
	CategoryID    string         `json:"category_id,omitempty"`
	ValidFrom     time.Time      `json:"valid_from"`
	ValidUntil    time.Time      `json:"valid_until"`
	UsageLimit    int            `json:"usage_limit"`
	UsedCount     int            `json:"used_count"`
	Active        bool           `json:"active"`
	CreatedAt     time.Time      `json:"created_at"`
}

// CartLine is the per-line context the matcher evaluates against.
type CartLine struct {
	ProductID  string
	CategoryID string
	Quantity   int
	UnitPrice  int64
}

// LineBenefit is the computed effect of one promotion on one line.
// FreeQuantity units still leave the warehouse, so stock checks must cover
// Quantity+FreeQuantity.
type LineBenefit struct {
	FreeQuantity int
	Discount     int64
}

// ValidateConfig checks that the promotion's parameters are internally
// consistent for its type and scope.
func (p Promotion) ValidateConfig() error {
	switch p.Type {
	case PromotionDiscount:
		if p.DiscountValue <= 0 {
			return &InvalidPromotionConfigError{PromotionID: p.ID, Reason: "discount value must be positive"}
		}
		if p.DiscountType != CouponPercentage && p.DiscountType != CouponFixedAmount {
			return &InvalidPromotionConfigError{PromotionID: p.ID, Reason: "unknown discount type"}
		}
	case PromotionBOGO:
		// No parameters: every purchased unit yields one free unit.
	case PromotionBuyXGetY:
		if p.BuyQuantity <= 0 || p.GetQuantity <= 0 {
			return &InvalidPromotionConfigError{PromotionID: p.ID, Reason: "buy and get quantities must be positive"}
		}
	case PromotionBuyXPayY:
		if p.BuyQuantity <= 0 || p.PayQuantity <= 0 {
			return &InvalidPromotionConfigError{PromotionID: p.ID, Reason: "buy and pay quantities must be positive"}
		}
		if p.PayQuantity >= p.BuyQuantity {
			return &InvalidPromotionConfigError{PromotionID: p.ID, Reason: "pay quantity must be less than buy quantity"}
		}
	default:
		return &InvalidPromotionConfigError{PromotionID: p.ID, Reason: "unknown promotion type"}
	}

	switch p.Scope {
	case ScopeProduct:
		if len(p.ProductIDs) == 0 {
			return &InvalidPromotionConfigError{PromotionID: p.ID, Reason: "product scope requires at least one product"}
		}
	case ScopeCategory:
		if p.CategoryID == "" {
			return &InvalidPromotionConfigError{PromotionID: p.ID, Reason: "category scope requires a category"}
		}
	case ScopeOrder:
		if p.Type == PromotionDiscount {
			return &InvalidPromotionConfigError{PromotionID: p.ID, Reason: "order-wide discounts are modeled as coupons"}
		}
	default:
		return &InvalidPromotionConfigError{PromotionID: p.ID, Reason: "unknown promotion scope"}
	}

	return nil
}

// EligibleFor reports whether the promotion can attach to the given line at
// the given time.
func (p Promotion) EligibleFor(line CartLine, now time.Time) bool {
	if !p.Active || now.Before(p.ValidFrom) || now.After(p.ValidUntil) {
		return false
	}
	if p.UsageLimit > 0 && p.UsedCount >= p.UsageLimit {
		return false
	}
	switch p.Scope {
	case ScopeProduct:
		for _, id := range p.ProductIDs {
			if id == line.ProductID {
				return true
			}
		}
		return false
	case ScopeCategory:
		return p.CategoryID != "" && p.CategoryID == line.CategoryID
	default:
		// ORDER scope never matches an individual line.
		return false
	}
}

// ApplyToLine computes the benefit the promotion yields on the line.
func (p Promotion) ApplyToLine(line CartLine) LineBenefit {
	switch p.Type {
	case PromotionBOGO:
		free := line.Quantity
		return LineBenefit{FreeQuantity: free, Discount: int64(free) * line.UnitPrice}
	case PromotionBuyXGetY:
		sets := line.Quantity / (p.BuyQuantity + p.GetQuantity)
		free := sets * p.GetQuantity
		return LineBenefit{FreeQuantity: free, Discount: int64(free) * line.UnitPrice}
	case PromotionBuyXPayY:
		sets := line.Quantity / p.BuyQuantity
		paid := sets * p.PayQuantity
		free := line.Quantity - paid
		if sets == 0 {
			free = 0
		}
		return LineBenefit{FreeQuantity: free, Discount: int64(free) * line.UnitPrice}
	case PromotionDiscount:
		lineSubtotal := int64(line.Quantity) * line.UnitPrice
		var discount int64
		if p.DiscountType == CouponPercentage {
			discount = lineSubtotal * p.DiscountValue / 100
			if p.MaxDiscount > 0 && discount > p.MaxDiscount {
				discount = p.MaxDiscount
			}
		} else {
			discount = p.DiscountValue
		}
		if discount > lineSubtotal {
			discount = lineSubtotal
		}
		return LineBenefit{Discount: discount}
	default:
		return LineBenefit{}
	}
}

// MatchPromotion selects the zero-or-one promotion applying to a line.
// Candidates are expected ordered most-recently-created first; the first
// eligible match wins, which makes overlapping PRODUCT/CATEGORY promotions
// resolve deterministically to the newest one.
func MatchPromotion(candidates []Promotion, line CartLine, now time.Time) (*Promotion, LineBenefit) {
	for i := range candidates {
		if candidates[i].EligibleFor(line, now) {
			benefit := candidates[i].ApplyToLine(line)
			return &candidates[i], benefit
		}
	}
	return nil, LineBenefit{}
}
