package domain

import "time"

// StockTransactionType classifies a ledger entry.
type StockTransactionType string

const (
	StockIn         StockTransactionType = "IN"
	StockOut        StockTransactionType = "OUT"
	StockAdjustment StockTransactionType = "ADJUSTMENT"
)

// Product is the narrow catalog projection this core needs: a price to
// snapshot and a denormalized stock counter maintained by the ledger.
type Product struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CategoryID string     `json:"category_id"`
	Price      int64      `json:"price"`
	Stock      int        `json:"stock"`
	DeletedAt  *time.Time `json:"-"`
}

// StockTransaction is one immutable entry in the append-only stock ledger.
// Quantity is the signed delta applied; StockAfter = StockBefore + Quantity
// holds for every entry, and a product's current stock always equals the
// StockAfter of its most recent entry.
type StockTransaction struct {
	ID          string               `json:"id"`
	ProductID   string               `json:"product_id"`
	Type        StockTransactionType `json:"type"`
	Quantity    int                  `json:"quantity"`
	StockBefore int                  `json:"stock_before"`
	StockAfter  int                  `json:"stock_after"`
	Note        string               `json:"note,omitempty"`
	ActorID     string               `json:"actor_id"`
	CreatedAt   time.Time            `json:"created_at"`
}

// IsValid reports whether t is a known transaction type.
func (t StockTransactionType) IsValid() bool {
	switch t {
	case StockIn, StockOut, StockAdjustment:
		return true
	default:
		return false
	}
}

// NewStockTransaction validates a requested stock movement against the
// product's current stock and produces the ledger entry to append. IN and
// OUT take a positive quantity; ADJUSTMENT takes any signed delta. The
// entry is rejected before any write when the resulting stock would be
// negative.
func NewStockTransaction(product Product, txType StockTransactionType, quantity int, note, actorID string) (StockTransaction, error) {
	var delta int
	switch txType {
	case StockIn:
		if quantity <= 0 {
			return StockTransaction{}, &ValidationError{Field: "quantity", Reason: "stock-in quantity must be positive"}
		}
		delta = quantity
	case StockOut:
		if quantity <= 0 {
			return StockTransaction{}, &ValidationError{Field: "quantity", Reason: "stock-out quantity must be positive"}
		}
		if product.Stock < quantity {
			return StockTransaction{}, &InsufficientStockError{
				ProductID: product.ID,
				Requested: quantity,
				Available: product.Stock,
			}
		}
		delta = -quantity
	case StockAdjustment:
		if product.Stock+quantity < 0 {
			return StockTransaction{}, &InvalidAdjustmentError{
				ProductID: product.ID,
				Delta:     quantity,
				Current:   product.Stock,
			}
		}
		delta = quantity
	default:
		return StockTransaction{}, &ValidationError{Field: "type", Reason: "unknown stock transaction type"}
	}

	return StockTransaction{
		ProductID:   product.ID,
		Type:        txType,
		Quantity:    delta,
		StockBefore: product.Stock,
		StockAfter:  product.Stock + delta,
		Note:        note,
		ActorID:     actorID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
