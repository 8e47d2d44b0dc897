package ports

import (
	"context"

	"github.com/shopworks/fulfillment/internal/orders/domain"
)

// EventBus defines the contract for publishing order lifecycle events.
// Publishing is best-effort and happens after the placement transaction
// commits; a publish failure never rolls an order back.
type EventBus interface {
	PublishOrderPlaced(ctx context.Context, order domain.Order) error
	PublishOrderStatusChanged(ctx context.Context, userID, orderID string, status domain.OrderStatus) error
}
