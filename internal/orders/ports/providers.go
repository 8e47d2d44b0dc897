package ports

import (
	"context"

	"github.com/shopworks/fulfillment/internal/orders/domain"
)

// User is the projection of an account this core needs for attribution and
// admin gating.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

// Address is the projection of a shipping address; OwnerID backs the
// ownership check at placement time.
type Address struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

// PaymentMethod is the projection of a stored payment instrument.
type PaymentMethod struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Label   string `json:"label"`
}

// CartItem is one line of a shopping cart.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart holds the current cart contents for a user.
type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}

// UserProvider resolves acting users.
type UserProvider interface {
	GetUser(ctx context.Context, id string) (*User, error)
}

// AddressProvider resolves shipping addresses.
type AddressProvider interface {
	GetAddress(ctx context.Context, id string) (*Address, error)
}

// PaymentMethodProvider resolves stored payment instruments.
type PaymentMethodProvider interface {
	GetPaymentMethod(ctx context.Context, id string) (*PaymentMethod, error)
}

// CartProvider supplies and clears the cart contents for a user.
type CartProvider interface {
	GetCart(ctx context.Context, userID string) (*Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

// EmailSender delivers the order confirmation. Best-effort: failures are
// logged by callers and never fail a placement.
type EmailSender interface {
	SendOrderConfirmation(ctx context.Context, user User, order domain.Order) error
}
