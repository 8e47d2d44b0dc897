package app

import (
	"context"
	"log/slog"

	"github.com/shopworks/fulfillment/internal/orders/app/commands"
	"github.com/shopworks/fulfillment/internal/orders/app/queries"
	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/metrics"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// Service bundles the fulfillment use cases exposed to the API.
type Service struct {
	store             ports.Store
	idemStore         ports.IdempotencyStore
	metrics           *metrics.Metrics
	placeOrderHandler commands.PlaceOrderHandler
	statusHandler     *commands.UpdateOrderStatusCommandHandler
	adjustHandler     *commands.AdjustLineQuantityCommandHandler
	stockHandler      *commands.RecordStockTransactionCommandHandler
	getOrderHandler   *queries.GetOrderQueryHandler
}

// Dependencies carries everything the service needs wired in.
type Dependencies struct {
	Store     ports.Store
	IdemStore ports.IdempotencyStore
	Users     ports.UserProvider
	Carts     ports.CartProvider
	Addresses ports.AddressProvider
	Payments  ports.PaymentMethodProvider
	Events    ports.EventBus
	Email     ports.EmailSender
	Pricing   commands.Pricing
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// NewService wires required dependencies.
func NewService(deps Dependencies) *Service {
	coreHandler := commands.NewPlaceOrderCommandHandler(
		deps.Store, deps.Users, deps.Carts, deps.Addresses, deps.Payments,
		deps.Events, deps.Email, deps.Pricing, deps.Logger,
	)
	observableHandler := commands.NewObservablePlaceOrderHandler(coreHandler, deps.Logger, deps.Metrics)

	return &Service{
		store:             deps.Store,
		idemStore:         deps.IdemStore,
		metrics:           deps.Metrics,
		placeOrderHandler: observableHandler,
		statusHandler:     commands.NewUpdateOrderStatusCommandHandler(deps.Store, deps.Users, deps.Events, deps.Logger),
		adjustHandler:     commands.NewAdjustLineQuantityCommandHandler(deps.Store, deps.Users, deps.Pricing),
		stockHandler:      commands.NewRecordStockTransactionCommandHandler(deps.Store, deps.Users),
		getOrderHandler:   queries.NewGetOrderQueryHandler(deps.Store.Repositories()),
	}
}

// PlaceOrderInput captures payload for placing an order.
type PlaceOrderInput struct {
	UserID          string `json:"user_id"`
	AddressID       string `json:"address_id"`
	PaymentMethodID string `json:"payment_method_id"`
	CouponCode      string `json:"coupon_code,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// PlaceOrder orchestrates checkout: pricing, stock deduction and persistence.
func (s *Service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	cmd := commands.PlaceOrderCommand{
		UserID:          input.UserID,
		AddressID:       input.AddressID,
		PaymentMethodID: input.PaymentMethodID,
		CouponCode:      input.CouponCode,
		Notes:           input.Notes,
	}
	return s.placeOrderHandler.Handle(ctx, cmd)
}

// GetOrder retrieves an order with its lines and status history.
func (s *Service) GetOrder(ctx context.Context, id string) (*queries.OrderView, error) {
	return s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}

// ListOrders returns orders using a filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return s.store.Repositories().Orders().List(ctx, filter)
}

// UpdateStatus applies an admin status transition.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, note, actorID string) (*domain.Order, error) {
	return s.statusHandler.Handle(ctx, commands.UpdateOrderStatusCommand{
		OrderID: orderID,
		Status:  status,
		Note:    note,
		ActorID: actorID,
	})
}

// AdjustLineQuantity applies an admin edit of one order line.
func (s *Service) AdjustLineQuantity(ctx context.Context, orderID, itemID string, quantity int, actorID string) (*domain.Order, error) {
	return s.adjustHandler.Handle(ctx, commands.AdjustLineQuantityCommand{
		OrderID:  orderID,
		ItemID:   itemID,
		Quantity: quantity,
		ActorID:  actorID,
	})
}

// RecordStockTransaction appends a manual entry to the stock ledger.
func (s *Service) RecordStockTransaction(ctx context.Context, productID string, txType domain.StockTransactionType, quantity int, note, actorID string) (*domain.StockTransaction, error) {
	entry, err := s.stockHandler.Handle(ctx, commands.RecordStockTransactionCommand{
		ProductID: productID,
		Type:      txType,
		Quantity:  quantity,
		Note:      note,
		ActorID:   actorID,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordStockTransaction(ctx, string(entry.Type))
	return entry, nil
}

// ListStockTransactions returns the ledger history for a product.
func (s *Service) ListStockTransactions(ctx context.Context, productID string) ([]domain.StockTransaction, error) {
	return s.store.Repositories().Stock().ListForProduct(ctx, productID)
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
