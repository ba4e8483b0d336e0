package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/stock"
)

type StockRepository struct {
	*Store[stock.Item, *stock.Item]
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{Store: newStore[stock.Item](db, stock.ErrItemNotFound, stock.ErrItemExists)}
}

// Receive is a single INSERT ... ON CONFLICT (name) DO UPDATE, so concurrent
// receives of the same medicine add up without a read-modify-write.
func (r *StockRepository) Receive(ctx context.Context, name string, qty int) (*stock.Item, error) {
	item := &stock.Item{Name: name, Quantity: qty}
	item.ID = uuid.New()
	item.Version = 1

	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "name"}},
				DoUpdates: clause.Assignments(map[string]any{
					"quantity":   gorm.Expr("stock_items.quantity + EXCLUDED.quantity"),
					"version":    gorm.Expr("stock_items.version + 1"),
					"updated_at": gorm.Expr("EXCLUDED.updated_at"),
				}),
			},
			clause.Returning{},
		).
		Create(item).Error
	if err != nil {
		return nil, fmt.Errorf("receiving stock: %w", err)
	}
	return item, nil
}

// withdraw decrements the named item inside tx, failing when the quantity on
// hand is lower than qty.
func (r *StockRepository) withdraw(tx *gorm.DB, name string, qty int) error {
	res := tx.Model(&stock.Item{}).
		Where("name = ? AND quantity >= ?", name, qty).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("withdrawing stock: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&stock.Item{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return fmt.Errorf("checking stock: %w", err)
	}
	if count == 0 {
		return stock.ErrItemNotFound
	}
	return stock.ErrInsufficientStock
}
