package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopworks/fulfillment/internal/orders/domain"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// Providers implements the user/address/payment-method collaborator
// interfaces over narrow read-only projections in the same database.
type Providers struct {
	pool *pgxpool.Pool
}

// NewProviders constructs Providers.
func NewProviders(pool *pgxpool.Pool) *Providers {
	return &Providers{pool: pool}
}

func (p *Providers) GetUser(ctx context.Context, id string) (*ports.User, error) {
	query := `
		SELECT id, name, email, admin
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`

	var user ports.User
	err := p.pool.QueryRow(ctx, query, id).Scan(&user.ID, &user.Name, &user.Email, &user.Admin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "user", ID: id}
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

func (p *Providers) GetAddress(ctx context.Context, id string) (*ports.Address, error) {
	query := `
		SELECT id, owner_id, street, city, zip
		FROM addresses
		WHERE id = $1 AND deleted_at IS NULL
	`

	var address ports.Address
	err := p.pool.QueryRow(ctx, query, id).Scan(
		&address.ID, &address.OwnerID, &address.Street, &address.City, &address.Zip,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "address", ID: id}
		}
		return nil, fmt.Errorf("select address: %w", err)
	}
	return &address, nil
}

func (p *Providers) GetPaymentMethod(ctx context.Context, id string) (*ports.PaymentMethod, error) {
	query := `
		SELECT id, owner_id, label
		FROM payment_methods
		WHERE id = $1 AND deleted_at IS NULL
	`

	var method ports.PaymentMethod
	err := p.pool.QueryRow(ctx, query, id).Scan(&method.ID, &method.OwnerID, &method.Label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "payment method", ID: id}
		}
		return nil, fmt.Errorf("select payment method: %w", err)
	}
	return &method, nil
}
