package memory

import (
	"context"
	"sync"

	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// Providers is an in-memory implementation of the external collaborator
// interfaces (users, addresses, payment methods, carts) for local
// development and tests.
type Providers struct {
	mu        sync.RWMutex
	users     map[string]ports.User
	addresses map[string]ports.Address
	payments  map[string]ports.PaymentMethod
	carts     map[string]ports.Cart
}

// NewProviders constructs empty in-memory providers.
func NewProviders() *Providers {
	return &Providers{
		users:     make(map[string]ports.User),
		addresses: make(map[string]ports.Address),
		payments:  make(map[string]ports.PaymentMethod),
		carts:     make(map[string]ports.Cart),
	}
}

// SeedUser inserts or replaces a user.
func (p *Providers) SeedUser(u ports.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[u.ID] = u
}

// SeedAddress inserts or replaces an address.
func (p *Providers) SeedAddress(a ports.Address) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addresses[a.ID] = a
}

// SeedPaymentMethod inserts or replaces a payment method.
func (p *Providers) SeedPaymentMethod(m ports.PaymentMethod) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payments[m.ID] = m
}

// SeedCart sets the cart contents for a user.
func (p *Providers) SeedCart(c ports.Cart) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.carts[c.UserID] = c
}

func (p *Providers) GetUser(_ context.Context, id string) (*ports.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	user, ok := p.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "user", ID: id}
	}
	copied := user
	return &copied, nil
}

func (p *Providers) GetAddress(_ context.Context, id string) (*ports.Address, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	address, ok := p.addresses[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "address", ID: id}
	}
	copied := address
	return &copied, nil
}

func (p *Providers) GetPaymentMethod(_ context.Context, id string) (*ports.PaymentMethod, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	method, ok := p.payments[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "payment method", ID: id}
	}
	copied := method
	return &copied, nil
}

func (p *Providers) GetCart(_ context.Context, userID string) (*ports.Cart, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cart, ok := p.carts[userID]
	if !ok {
		return &ports.Cart{UserID: userID}, nil
	}
	copied := cart
	copied.Items = append([]ports.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (p *Providers) ClearCart(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.carts, userID)
	return nil
}
