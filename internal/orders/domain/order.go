package domain

import (
	"fmt"
	"time"
)

// OrderStatus captures the lifecycle of an order in the system.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// PaymentStatus tracks payment settlement independently of fulfillment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// transitions is the full set of legal status moves. Anything absent is illegal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

// Order represents a committed purchase, created once at checkout and
// mutated only through status transitions and admin line edits.
type Order struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id"`
	OrderNumber       string        `json:"order_number"`
	Subtotal          int64         `json:"subtotal"`
	CouponDiscount    int64         `json:"coupon_discount"`
	PromotionDiscount int64         `json:"promotion_discount"`
	ShippingFee       int64         `json:"shipping_fee"`
	Total             int64         `json:"total"`
	Status            OrderStatus   `json:"status"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	CouponID          string        `json:"coupon_id,omitempty"`
	AddressID         string        `json:"address_id"`
	PaymentMethodID   string        `json:"payment_method_id"`
	Notes             string        `json:"notes,omitempty"`
	Items             []OrderItem   `json:"items,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	DeletedAt         *time.Time    `json:"-"`
}

// OrderItem is a single cart line frozen at purchase time. UnitPrice is a
// snapshot; later catalog price changes never touch it.
type OrderItem struct {
	ID                string `json:"id"`
	OrderID           string `json:"order_id"`
	ProductID         string `json:"product_id"`
	Quantity          int    `json:"quantity"`
	UnitPrice         int64  `json:"unit_price"`
	Subtotal          int64  `json:"subtotal"`
	PromotionID       string `json:"promotion_id,omitempty"`
	PromotionDiscount int64  `json:"promotion_discount"`
	FreeQuantity      int    `json:"free_quantity"`
}

// StatusChange is one entry in the order's append-only status history.
type StatusChange struct {
	ID        string      `json:"id"`
	OrderID   string      `json:"order_id"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	Note      string      `json:"note,omitempty"`
	ActorID   string      `json:"actor_id"`
	CreatedAt time.Time   `json:"created_at"`
}

// CanTransitionTo reports whether moving from s to next is a legal move.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal indicates whether the status permits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// TransitionTo applies a status change, enforcing the state machine.
func (o *Order) TransitionTo(next OrderStatus) error {
	if !o.Status.CanTransitionTo(next) {
		return &InvalidStatusTransitionError{From: o.Status, To: next}
	}
	o.Status = next
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Editable reports whether admin line-quantity edits are still permitted.
func (o *Order) Editable() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// RecalculateTotals re-derives order monetary fields from the current lines
// and the already-fixed coupon discount. The discounted subtotal is floored
// at zero before the shipping fee is added.
func (o *Order) RecalculateTotals(freeShippingThreshold, flatShippingFee int64) {
	var subtotal, promoDiscount int64
	for _, item := range o.Items {
		subtotal += item.Subtotal
		promoDiscount += item.PromotionDiscount
	}
	o.Subtotal = subtotal
	o.PromotionDiscount = promoDiscount

	discounted := subtotal - o.CouponDiscount - o.PromotionDiscount
	if discounted < 0 {
		discounted = 0
	}
	if discounted >= freeShippingThreshold {
		o.ShippingFee = 0
	} else {
		o.ShippingFee = flatShippingFee
	}
	o.Total = discounted + o.ShippingFee
	o.UpdatedAt = time.Now().UTC()
}

// FormatOrderNumber renders the human-readable order number for a given day
// and daily sequence value, e.g. ORD-2026-08-31-007.
func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD-%s-%03d", day.UTC().Format("2006-01-02"), seq)
}
