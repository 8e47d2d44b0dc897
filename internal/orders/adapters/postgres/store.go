package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopworks/fulfillment/internal/orders/ports"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting the same
// repository code run inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements ports.Store over a pgx connection pool. WithinTx opens a
// single database transaction; every repository call inside it shares that
// transaction and a returned error rolls the whole unit of work back.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &repos{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Repositories() ports.Repositories {
	return &repos{q: s.pool}
}

type repos struct {
	q querier
}

func (r *repos) Orders() ports.OrderRepository           { return &OrderRepository{q: r.q} }
func (r *repos) Products() ports.ProductRepository       { return &ProductRepository{q: r.q} }
func (r *repos) Coupons() ports.CouponRepository         { return &CouponRepository{q: r.q} }
func (r *repos) Promotions() ports.PromotionRepository   { return &PromotionRepository{q: r.q} }
func (r *repos) Stock() ports.StockTransactionRepository { return &StockRepository{q: r.q} }
