package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// ErrOrderNotEditable is returned when a line edit is attempted after the
// order has moved past CONFIRMED.
var ErrOrderNotEditable = errors.New("order can no longer be edited")

// AdjustLineQuantityCommand requests an admin edit of one order line's quantity.
type AdjustLineQuantityCommand struct {
	OrderID  string
	ItemID   string
	Quantity int
	ActorID  string
}

// Validate ensures the command is well formed.
func (c AdjustLineQuantityCommand) Validate() error {
	if c.OrderID == "" {
		return &domain.ValidationError{Field: "order_id", Reason: "required"}
	}
	if c.ItemID == "" {
		return &domain.ValidationError{Field: "item_id", Reason: "required"}
	}
	if c.Quantity < 1 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	if c.ActorID == "" {
		return &domain.ValidationError{Field: "actor_id", Reason: "required"}
	}
	return nil
}

// AdjustLineQuantityCommandHandler edits a line quantity while the order is
// still PENDING or CONFIRMED, re-derives the order totals from the sum of
// lines minus the already-fixed discounts, and writes a compensating ledger
// entry for the signed quantity difference.
type AdjustLineQuantityCommandHandler struct {
	store   ports.Store
	users   ports.UserProvider
	pricing Pricing
}

// NewAdjustLineQuantityCommandHandler wires required dependencies.
func NewAdjustLineQuantityCommandHandler(store ports.Store, users ports.UserProvider, pricing Pricing) *AdjustLineQuantityCommandHandler {
	return &AdjustLineQuantityCommandHandler{store: store, users: users, pricing: pricing}
}

func (h *AdjustLineQuantityCommandHandler) Handle(ctx context.Context, cmd AdjustLineQuantityCommand) (*domain.Order, error) {
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
		if !order.Editable() {
			return ErrOrderNotEditable
		}

		items, err := r.Orders().LoadItems(ctx, order.ID)
		if err != nil {
			return err
		}

		idx := -1
		for i := range items {
			if items[i].ID == cmd.ItemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &domain.NotFoundError{Entity: "order item", ID: cmd.ItemID}
		}

		item := items[idx]
		diff := cmd.Quantity - item.Quantity
		if diff != 0 {
			product, err := r.Products().GetForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			txType := domain.StockOut
			units := diff
			if diff < 0 {
				txType = domain.StockIn
				units = -diff
			}
			entry, err := domain.NewStockTransaction(*product, txType, units,
				fmt.Sprintf("order %s line adjustment", order.OrderNumber), actor.ID)
			if err != nil {
				return err
			}
			entry.ID = uuid.NewString()
			if _, err := r.Stock().Append(ctx, entry); err != nil {
				return err
			}
			if err := r.Products().UpdateStock(ctx, product.ID, entry.StockAfter); err != nil {
				return err
			}
		}

		item.Quantity = cmd.Quantity
		item.Subtotal = int64(cmd.Quantity) * item.UnitPrice
		items[idx] = item
		if err := r.Orders().UpdateItem(ctx, item); err != nil {
			return err
		}

		order.Items = items
		order.RecalculateTotals(h.pricing.FreeShippingThreshold, h.pricing.FlatShippingFee)
		if err := r.Orders().UpdateTotals(ctx, *order); err != nil {
			return err
		}

		updated = *order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}
