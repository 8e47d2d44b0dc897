package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// ErrAdminOnly guards operations restricted to administrator users.
var ErrAdminOnly = errors.New("operation requires an admin user")

// Pricing carries the shipping rule constants used at checkout.
type Pricing struct {
	FreeShippingThreshold int64
	FlatShippingFee       int64
}

// PlaceOrderCommand captures a checkout request for the acting user's cart.
type PlaceOrderCommand struct {
	UserID          string
	AddressID       string
	PaymentMethodID string
	CouponCode      string
	Notes           string
}

// Validate ensures the command carries the required references.
func (c PlaceOrderCommand) Validate() error {
	if c.UserID == "" {
		return &domain.ValidationError{Field: "user_id", Reason: "required"}
	}
	if c.AddressID == "" {
		return &domain.ValidationError{Field: "address_id", Reason: "required"}
	}
	if c.PaymentMethodID == "" {
		return &domain.ValidationError{Field: "payment_method_id", Reason: "required"}
	}
	return nil
}

// PlaceOrderHandler is the contract the observable wrapper decorates.
type PlaceOrderHandler interface {
	Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error)
}

// PlaceOrderCommandHandler turns a cart into a committed order: it prices
// the cart (coupon, promotions, shipping), writes the order and its lines,
// drives the stock ledger, and bumps usage counters, all in one unit of
// work. Cart clearing, events and email run after commit as best-effort
// side effects.
type PlaceOrderCommandHandler struct {
	store    ports.Store
	users    ports.UserProvider
	carts    ports.CartProvider
	addresses ports.AddressProvider
	payments ports.PaymentMethodProvider
	events   ports.EventBus
	email    ports.EmailSender
	pricing  Pricing
	logger   *slog.Logger
	now      func() time.Time
}

// NewPlaceOrderCommandHandler wires required dependencies.
func NewPlaceOrderCommandHandler(
	store ports.Store,
	users ports.UserProvider,
	carts ports.CartProvider,
	addresses ports.AddressProvider,
	payments ports.PaymentMethodProvider,
	events ports.EventBus,
	email ports.EmailSender,
	pricing Pricing,
	logger *slog.Logger,
) *PlaceOrderCommandHandler {
	return &PlaceOrderCommandHandler{
		store:    store,
		users:    users,
		carts:    carts,
		addresses: addresses,
		payments: payments,
		events:   events,
		email:    email,
		pricing:  pricing,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the handler's clock. Tests use this to pin validity
// windows and order-number dates.
func (h *PlaceOrderCommandHandler) WithClock(now func() time.Time) *PlaceOrderCommandHandler {
	h.now = now
	return h
}

func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	now := h.now()

	user, err := h.users.GetUser(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	cart, err := h.carts.GetCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, &domain.ValidationError{Field: "cart", Reason: "cart is empty"}
	}

	address, err := h.addresses.GetAddress(ctx, cmd.AddressID)
	if err != nil {
		return nil, err
	}
	if address.OwnerID != user.ID {
		return nil, &domain.OwnershipError{Entity: "address", ID: address.ID, UserID: user.ID}
	}

	payment, err := h.payments.GetPaymentMethod(ctx, cmd.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if payment.OwnerID != user.ID {
		return nil, &domain.OwnershipError{Entity: "payment method", ID: payment.ID, UserID: user.ID}
	}

	var placed domain.Order
	err = h.store.WithinTx(ctx, func(ctx context.Context, r ports.Repositories) error {
		order, err := h.buildOrder(ctx, r, cmd, *user, *cart, now)
		if err != nil {
			return err
		}
		placed = *order
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.dispatchSideEffects(ctx, *user, placed)

	return &placed, nil
}

// buildOrder runs the transactional part of placement. Any returned error
// rolls back every write made here.
func (h *PlaceOrderCommandHandler) buildOrder(
	ctx context.Context,
	r ports.Repositories,
	cmd PlaceOrderCommand,
	user ports.User,
	cart ports.Cart,
	now time.Time,
) (*domain.Order, error) {
	// Price snapshot and stock pre-check per line.
	products := make(map[string]domain.Product, len(cart.Items))
	var subtotal int64
	for _, line := range cart.Items {
		if line.Quantity < 1 {
			return nil, &domain.ValidationError{Field: "quantity", Reason: "cart line quantity must be at least 1"}
		}
		product, err := r.Products().GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < line.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID: product.ID,
				Requested: line.Quantity,
				Available: product.Stock,
			}
		}
		products[product.ID] = *product
		subtotal += product.Price * int64(line.Quantity)
	}

	// At most one coupon; an invalid coupon aborts the whole placement.
	var coupon *domain.Coupon
	var couponDiscount int64
	if cmd.CouponCode != "" {
		c, err := r.Coupons().GetByCode(ctx, cmd.CouponCode)
		if err != nil {
			return nil, err
		}
		result := c.Evaluate(subtotal, now)
		if !result.Valid {
			return nil, &domain.InvalidCouponError{Code: c.Code, Reason: result.Reason}
		}
		coupon = c
		couponDiscount = result.Discount
	}

	promotions, err := r.Promotions().ListActive(ctx, now)
	if err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	items := make([]domain.OrderItem, 0, len(cart.Items))
	applied := make([]string, 0)
	var promotionDiscount int64
	for _, line := range cart.Items {
		product := products[line.ProductID]
		item := domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			ProductID: product.ID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			Subtotal:  product.Price * int64(line.Quantity),
		}
		promo, benefit := domain.MatchPromotion(promotions, domain.CartLine{
			ProductID:  product.ID,
			CategoryID: product.CategoryID,
			Quantity:   line.Quantity,
			UnitPrice:  product.Price,
		}, now)
		if promo != nil {
			item.PromotionID = promo.ID
			item.PromotionDiscount = benefit.Discount
			item.FreeQuantity = benefit.FreeQuantity
			promotionDiscount += benefit.Discount
			applied = append(applied, promo.ID)
		}
		items = append(items, item)
	}

	discounted := subtotal - couponDiscount - promotionDiscount
	if discounted < 0 {
		discounted = 0
	}
	var shippingFee int64
	if discounted < h.pricing.FreeShippingThreshold {
		shippingFee = h.pricing.FlatShippingFee
	}

	seq, err := r.Orders().NextOrderNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	order := domain.Order{
		ID:                orderID,
		UserID:            user.ID,
		OrderNumber:       domain.FormatOrderNumber(now, seq),
		Subtotal:          subtotal,
		CouponDiscount:    couponDiscount,
		PromotionDiscount: promotionDiscount,
		ShippingFee:       shippingFee,
		Total:             discounted + shippingFee,
		Status:            domain.StatusPending,
		PaymentStatus:     domain.PaymentPending,
		AddressID:         cmd.AddressID,
		PaymentMethodID:   cmd.PaymentMethodID,
		Notes:             cmd.Notes,
		Items:             items,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if coupon != nil {
		order.CouponID = coupon.ID
	}

	if err := r.Orders().Create(ctx, order); err != nil {
		return nil, err
	}

	// Deduct stock per line under a row lock. Free units leave the warehouse
	// too, so the ledger OUT covers quantity plus free quantity. The earlier
	// pre-check ran without a lock; this read is the authoritative one.
	for _, item := range order.Items {
		product, err := r.Products().GetForUpdate(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		units := item.Quantity + item.FreeQuantity
		entry, err := domain.NewStockTransaction(*product, domain.StockOut, units,
			fmt.Sprintf("order %s", order.OrderNumber), user.ID)
		if err != nil {
			return nil, err
		}
		entry.ID = uuid.NewString()
		if _, err := r.Stock().Append(ctx, entry); err != nil {
			return nil, err
		}
		if err := r.Products().UpdateStock(ctx, product.ID, entry.StockAfter); err != nil {
			return nil, err
		}
	}

	if coupon != nil {
		if err := r.Coupons().IncrementUsage(ctx, coupon.ID); err != nil {
			return nil, err
		}
	}
	for _, promoID := range applied {
		if err := r.Promotions().IncrementUsage(ctx, promoID); err != nil {
			return nil, err
		}
	}

	change := domain.StatusChange{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		To:        domain.StatusPending,
		Note:      "order placed",
		ActorID:   user.ID,
		CreatedAt: now,
	}
	if err := r.Orders().AddStatusChange(ctx, change); err != nil {
		return nil, err
	}

	return &order, nil
}

// dispatchSideEffects runs the non-transactional tail of placement. None of
// these can fail the order; failures are logged and dropped.
func (h *PlaceOrderCommandHandler) dispatchSideEffects(ctx context.Context, user ports.User, order domain.Order) {
	if err := h.carts.ClearCart(ctx, user.ID); err != nil {
		h.logger.WarnContext(ctx, "failed to clear cart after placement",
			"order_id", order.ID, "user_id", user.ID, "error", err)
	}
	if err := h.events.PublishOrderPlaced(ctx, order); err != nil {
		h.logger.WarnContext(ctx, "failed to publish order placed event",
			"order_id", order.ID, "error", err)
	}
	if err := h.email.SendOrderConfirmation(ctx, user, order); err != nil {
		h.logger.WarnContext(ctx, "failed to send order confirmation",
			"order_id", order.ID, "error", err)
	}
}
