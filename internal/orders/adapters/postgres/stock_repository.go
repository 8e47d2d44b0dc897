package postgres

import (
	"context"
	"fmt"

	"github.com/shopworks/fulfillment/internal/orders/domain"
)

// StockRepository appends to and reads the stock ledger. Entries are never
// updated or deleted; the table carries no mutation paths on purpose.
type StockRepository struct {
	q querier
}

func (r *StockRepository) Append(ctx context.Context, tx domain.StockTransaction) (*domain.StockTransaction, error) {
	query := `
		INSERT INTO stock_transactions (
			id, product_id, type, quantity, stock_before, stock_after,
			note, actor_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.Exec(ctx, query,
		tx.ID,
		tx.ProductID,
		tx.Type,
		tx.Quantity,
		tx.StockBefore,
		tx.StockAfter,
		tx.Note,
		tx.ActorID,
		tx.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert stock transaction: %w", err)
	}
	return &tx, nil
}

func (r *StockRepository) ListForProduct(ctx context.Context, productID string) ([]domain.StockTransaction, error) {
	query := `
		SELECT id, product_id, type, quantity, stock_before, stock_after,
			note, actor_id, created_at
		FROM stock_transactions
		WHERE product_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("query stock transactions: %w", err)
	}
	defer rows.Close()

	var entries []domain.StockTransaction
	for rows.Next() {
		var entry domain.StockTransaction
		if err := rows.Scan(
			&entry.ID,
			&entry.ProductID,
			&entry.Type,
			&entry.Quantity,
			&entry.StockBefore,
			&entry.StockAfter,
			&entry.Note,
			&entry.ActorID,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock transactions: %w", err)
	}
	return entries, nil
}
