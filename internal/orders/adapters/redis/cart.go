package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// CartProvider reads and clears cart documents kept in redis by the cart
// front end. Carts are stored as one JSON document per user under
// cart:{userID}; a missing key is an empty cart, not an error.
type CartProvider struct {
	client *redis.Client
}

// NewCartProvider constructs a CartProvider.
func NewCartProvider(client *redis.Client) *CartProvider {
	return &CartProvider{client: client}
}

func (p *CartProvider) GetCart(ctx context.Context, userID string) (*ports.Cart, error) {
	data, err := p.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &ports.Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart ports.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	cart.UserID = userID
	return &cart, nil
}

func (p *CartProvider) ClearCart(ctx context.Context, userID string) error {
	if err := p.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

// SetCart writes the cart document. The checkout core only reads and
// clears carts; this is here for seeding and tests.
func (p *CartProvider) SetCart(ctx context.Context, cart ports.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := p.client.Set(ctx, cartKey(cart.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
