package domain

import "fmt"

// ValidationError marks malformed or missing caller input. Not retryable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// OwnershipError is returned when an entity exists but belongs to another user.
type OwnershipError struct {
	Entity string
	ID     string
	UserID string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("%s %s does not belong to user %s", e.Entity, e.ID, e.UserID)
}

// InsufficientStockError names the product and the shortfall so callers can
// render an actionable message.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d (short by %d)",
		e.ProductID, e.Requested, e.Available, e.Shortfall())
}

// Shortfall is the number of units missing to satisfy the request.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

// InvalidCouponError carries the business reason a coupon was rejected.
type InvalidCouponError struct {
	Code   string
	Reason string
}

func (e *InvalidCouponError) Error() string {
	return fmt.Sprintf("coupon %s is not valid: %s", e.Code, e.Reason)
}

// InvalidPromotionConfigError marks an internally inconsistent promotion.
type InvalidPromotionConfigError struct {
	PromotionID string
	Reason      string
}

func (e *InvalidPromotionConfigError) Error() string {
	return fmt.Sprintf("promotion %s has invalid configuration: %s", e.PromotionID, e.Reason)
}

// InvalidAdjustmentError is returned when a stock adjustment would drive the
// stock level negative.
type InvalidAdjustmentError struct {
	ProductID string
	Delta     int
	Current   int
}

func (e *InvalidAdjustmentError) Error() string {
	return fmt.Sprintf("adjustment of %+d would make stock negative for product %s (current %d)",
		e.Delta, e.ProductID, e.Current)
}

// InvalidStatusTransitionError names both states of an illegal move.
type InvalidStatusTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// ConcurrencyConflictError signals a lost update; retrying the whole
// operation once is safe.
type ConcurrencyConflictError struct {
	Entity string
	ID     string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrent modification of %s %s detected", e.Entity, e.ID)
}
