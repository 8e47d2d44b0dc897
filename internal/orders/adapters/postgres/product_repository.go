package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopworks/fulfillment/internal/orders/domain"
)

// ProductRepository reads the catalog projection and maintains the
// denormalized stock counter. UpdateStock is only reachable through the
// stock ledger path.
type ProductRepository struct {
	q querier
}

const productColumns = `id, name, category_id, price, stock`

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.get(ctx, query, id)
}

// GetForUpdate locks the product row for the remainder of the enclosing
// transaction so concurrent placements cannot both pass the stock check.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`
	return r.get(ctx, query, id)
}

func (r *ProductRepository) get(ctx context.Context, query, id string) (*domain.Product, error) {
	var product domain.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.CategoryID,
		&product.Price,
		&product.Stock,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "product", ID: id}
		}
		return nil, fmt.Errorf("select product: %w", err)
	}
	return &product, nil
}

func (r *ProductRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	query := `
		UPDATE products
		SET stock = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.q.Exec(ctx, query, stock, id)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}
