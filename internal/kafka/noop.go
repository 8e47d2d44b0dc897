package kafka

import (
	"context"
	"log/slog"

	"github.com/shopworks/fulfillment/internal/orders/domain"
)

// NoopEventBus logs events without sending them to Kafka. Useful for local
// dev before wiring brokers.
type NoopEventBus struct{}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus() *NoopEventBus {
	return &NoopEventBus{}
}

func (n *NoopEventBus) PublishOrderPlaced(_ context.Context, order domain.Order) error {
	slog.Debug("event::order_placed", "order_id", order.ID, "order_number", order.OrderNumber)
	return nil
}

func (n *NoopEventBus) PublishOrderStatusChanged(_ context.Context, userID, orderID string, status domain.OrderStatus) error {
	slog.Debug("event::order_status_changed", "order_id", orderID, "user_id", userID, "status", status)
	return nil
}
