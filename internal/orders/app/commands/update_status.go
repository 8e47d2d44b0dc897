package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// UpdateOrderStatusCommand requests a status transition on an order.
type UpdateOrderStatusCommand struct {
	OrderID string
	Status  domain.OrderStatus
	Note    string
	ActorID string
}

// Validate ensures the command references an order and a known status.
func (c UpdateOrderStatusCommand) Validate() error {
	if c.OrderID == "" {
		return &domain.ValidationError{Field: "order_id", Reason: "required"}
	}
	if !c.Status.IsValid() {
		return &domain.ValidationError{Field: "status", Reason: "unknown order status"}
	}
	if c.ActorID == "" {
		return &domain.ValidationError{Field: "actor_id", Reason: "required"}
	}
	return nil
}

// UpdateOrderStatusCommandHandler applies admin-only, direction-restricted
// status transitions. The transition and its history entry commit together;
// the history records only successful transitions.
type UpdateOrderStatusCommandHandler struct {
	store  ports.Store
	users  ports.UserProvider
	events ports.EventBus
	logger *slog.Logger
}

// NewUpdateOrderStatusCommandHandler wires required dependencies.
func NewUpdateOrderStatusCommandHandler(
	store ports.Store,
	users ports.UserProvider,
	events ports.EventBus,
	logger *slog.Logger,
) *UpdateOrderStatusCommandHandler {
	return &UpdateOrderStatusCommandHandler{
		store:  store,
		users:  users,
		events: events,
		logger: logger,
	}
}

func (h *UpdateOrderStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	actor, err := h.users.GetUser(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin {
		return nil, ErrAdminOnly
	}

	var updated domain.Order
	err = h.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		order, err := r.Orders().GetByID(ctx, cmd.OrderID)
		if err != nil {
			return err
		}

		from := order.Status
		if err := order.TransitionTo(cmd.Status); err != nil {
			return err
		}

		if err := r.Orders().UpdateStatus(ctx, order.ID, order.Status); err != nil {
			return err
		}

		change := domain.StatusChange{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			From:      from,
			To:        order.Status,
			Note:      cmd.Note,
			ActorID:   actor.ID,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.Orders().AddStatusChange(ctx, change); err != nil {
			return err
		}

		updated = *order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := h.events.PublishOrderStatusChanged(ctx, updated.UserID, updated.ID, updated.Status); err != nil {
		h.logger.WarnContext(ctx, "failed to publish status change event",
			"order_id", updated.ID, "status", updated.Status, "error", err)
	}

	return &updated, nil
}
