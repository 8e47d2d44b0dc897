package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/shopworks/fulfillment/internal/orders/ports"
)

func setupCartProvider(t *testing.T) (*CartProvider, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCartProvider(client), mr
}

func TestGetCart(t *testing.T) {
	provider, mr := setupCartProvider(t)
	ctx := context.Background()

	cart := ports.Cart{
		UserID: "user-1",
		Items: []ports.CartItem{
			{ProductID: "prod-1", Quantity: 2},
			{ProductID: "prod-2", Quantity: 1},
		},
	}
	data, _ := json.Marshal(cart)
	if err := mr.Set(cartKey("user-1"), string(data)); err != nil {
		t.Fatalf("seeding cart: %v", err)
	}

	got, err := provider.GetCart(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetCart() error = %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID = %s, want user-1", got.UserID)
	}
	if len(got.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(got.Items))
	}
	if got.Items[0].ProductID != "prod-1" || got.Items[0].Quantity != 2 {
		t.Errorf("Items[0] = %+v, want prod-1 x2", got.Items[0])
	}
}

func TestGetCartMissingKeyIsEmptyCart(t *testing.T) {
	provider, _ := setupCartProvider(t)

	got, err := provider.GetCart(context.Background(), "user-9")
	if err != nil {
		t.Fatalf("GetCart() error = %v", err)
	}
	if got.UserID != "user-9" {
		t.Errorf("UserID = %s, want user-9", got.UserID)
	}
	if len(got.Items) != 0 {
		t.Errorf("missing key returned %d items, want empty cart", len(got.Items))
	}
}

func TestGetCartCorruptDocument(t *testing.T) {
	provider, mr := setupCartProvider(t)

	if err := mr.Set(cartKey("user-1"), "{not json"); err != nil {
		t.Fatalf("seeding cart: %v", err)
	}

	if _, err := provider.GetCart(context.Background(), "user-1"); err == nil {
		t.Fatal("GetCart() expected error for corrupt document, got nil")
	}
}

func TestClearCart(t *testing.T) {
	provider, mr := setupCartProvider(t)
	ctx := context.Background()

	if err := provider.SetCart(ctx, ports.Cart{
		UserID: "user-1",
		Items:  []ports.CartItem{{ProductID: "prod-1", Quantity: 1}},
	}); err != nil {
		t.Fatalf("SetCart() error = %v", err)
	}
	if !mr.Exists(cartKey("user-1")) {
		t.Fatal("SetCart() did not write the key")
	}

	if err := provider.ClearCart(ctx, "user-1"); err != nil {
		t.Fatalf("ClearCart() error = %v", err)
	}
	if mr.Exists(cartKey("user-1")) {
		t.Error("ClearCart() left the key behind")
	}

	// Clearing an absent cart is not an error.
	if err := provider.ClearCart(ctx, "user-9"); err != nil {
		t.Errorf("ClearCart() on missing key error = %v", err)
	}
}

func TestSetCartRoundTrip(t *testing.T) {
	provider, _ := setupCartProvider(t)
	ctx := context.Background()

	want := ports.Cart{
		UserID: "user-1",
		Items:  []ports.CartItem{{ProductID: "prod-1", Quantity: 3}},
	}
	if err := provider.SetCart(ctx, want); err != nil {
		t.Fatalf("SetCart() error = %v", err)
	}

	got, err := provider.GetCart(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetCart() error = %v", err)
	}
	if len(got.Items) != 1 || got.Items[0] != want.Items[0] {
		t.Errorf("GetCart() = %+v, want %+v", got.Items, want.Items)
	}
}
