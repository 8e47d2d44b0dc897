package queries

import (
	"context"
	"strings"

	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// GetOrderQuery represents a request to retrieve an order by its ID.
type GetOrderQuery struct {
	OrderID string
}

// Validate ensures the query has valid parameters.
func (q GetOrderQuery) Validate() error {
	if strings.TrimSpace(q.OrderID) == "" {
		return &domain.ValidationError{Field: "order_id", Reason: "required"}
	}
	return nil
}

// GetOrderQueryHandler executes GetOrderQuery and returns the order with its
// lines and status history batch-loaded.
type GetOrderQueryHandler struct {
	repos ports.Repositories
}

// NewGetOrderQueryHandler constructs a GetOrderQueryHandler.
func NewGetOrderQueryHandler(repos ports.Repositories) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{repos: repos}
}

// OrderView is an order together with its status history.
type OrderView struct {
	Order   domain.Order          `json:"order"`
	History []domain.StatusChange `json:"history"`
}

// Handle executes the query and retrieves the order.
func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repos.Orders().GetByID(ctx, query.OrderID)
	if err != nil {
		return nil, err
	}

	items, err := h.repos.Orders().LoadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	history, err := h.repos.Orders().ListStatusChanges(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return &OrderView{Order: *order, History: history}, nil
}
