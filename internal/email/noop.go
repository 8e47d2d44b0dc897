package email

import (
	"context"
	"log/slog"

	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// NoopSender logs order confirmations instead of delivering them.
// Delivery is owned by a separate notification system.
type NoopSender struct{}

// NewNoopSender returns a new no-op confirmation sender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) SendOrderConfirmation(_ context.Context, user ports.User, order domain.Order) error {
	slog.Debug("email::order_confirmation", "to", user.Email, "order_number", order.OrderNumber, "total", order.Total)
	return nil
}
