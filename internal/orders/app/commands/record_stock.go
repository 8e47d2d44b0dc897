package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// RecordStockTransactionCommand requests a manual stock movement: restock
// (IN), warehouse removal (OUT) or inventory correction (ADJUSTMENT).
type RecordStockTransactionCommand struct {
	ProductID string
	Type      domain.StockTransactionType
	Quantity  int
	Note      string
	ActorID   string
}

// Validate ensures the command is well formed. Quantity sign rules are
// enforced per type by the domain when the entry is built.
func (c RecordStockTransactionCommand) Validate() error {
	if c.ProductID == "" {
		return &domain.ValidationError{Field: "product_id", Reason: "required"}
	}
	if !c.Type.IsValid() {
		return &domain.ValidationError{Field: "type", Reason: "unknown stock transaction type"}
	}
	if c.ActorID == "" {
		return &domain.ValidationError{Field: "actor_id", Reason: "required"}
	}
	return nil
}

// RecordStockTransactionCommandHandler is the single entry point for manual
// stock mutation. The ledger append and the denormalized stock update
// commit together or not at all.
type RecordStockTransactionCommandHandler struct {
	store ports.Store
	users ports.UserProvider
}

// NewRecordStockTransactionCommandHandler wires required dependencies.
func NewRecordStockTransactionCommandHandler(store ports.Store, users ports.UserProvider) *RecordStockTransactionCommandHandler {
	return &RecordStockTransactionCommandHandler{store: store, users: users}
}

func (h *RecordStockTransactionCommandHandler) Handle(ctx context.Context, cmd RecordStockTransactionCommand) (*domain.StockTransaction, error) {
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

	var recorded domain.StockTransaction
	err = h.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		product, err := r.Products().GetForUpdate(ctx, cmd.ProductID)
		if err != nil {
			return err
		}

		entry, err := domain.NewStockTransaction(*product, cmd.Type, cmd.Quantity, cmd.Note, actor.ID)
		if err != nil {
			return err
		}
		entry.ID = uuid.NewString()

		appended, err := r.Stock().Append(ctx, entry)
		if err != nil {
			return err
		}
		if err := r.Products().UpdateStock(ctx, product.ID, appended.StockAfter); err != nil {
			return err
		}

		recorded = *appended
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &recorded, nil
}
