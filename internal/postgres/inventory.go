package postgres

import (
	"context"
	"errors"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const inventoryColumns = `id, product_id, quantity, low_stock_threshold, created_at, updated_at`

func scanInventoryItem(row pgx.Row) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := row.Scan(
		&item.ID, &item.ProductID, &item.Quantity, &item.LowStockThreshold,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetInventoryByProductID returns the inventory record for a product.
func (s *Store) GetInventoryByProductID(ctx context.Context, productID pgtype.UUID) (*domain.InventoryItem, error) {
	item, err := scanInventoryItem(s.db.QueryRow(ctx,
		`SELECT `+inventoryColumns+` FROM inventory_items WHERE product_id = $1`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInventoryNotFound
		}
		return nil, domain.Internal(err, "inventory.get", "failed to get inventory")
	}
	return item, nil
}

// AddStock atomically increments the on-hand quantity and returns the
// updated record.
func (s *Store) AddStock(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error) {
	item, err := scanInventoryItem(s.db.QueryRow(ctx,
		`UPDATE inventory_items
		 SET quantity = quantity + $2, updated_at = now()
		 WHERE product_id = $1
		 RETURNING `+inventoryColumns,
		productID, qty))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInventoryNotFound
		}
		return nil, domain.Internal(err, "inventory.add_stock", "failed to add stock")
	}
	return item, nil
}

// RemoveStock decrements the on-hand quantity only when at least qty units
// are available. The conditional WHERE clause makes concurrent removals
// race-safe: the row either has enough stock at update time or the
// statement matches nothing and domain.ErrInsufficientStock is returned.
func (s *Store) RemoveStock(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error) {
	item, err := scanInventoryItem(s.db.QueryRow(ctx,
		`UPDATE inventory_items
		 SET quantity = quantity - $2, updated_at = now()
		 WHERE product_id = $1 AND quantity >= $2
		 RETURNING `+inventoryColumns,
		productID, qty))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish missing record from short stock.
			if _, getErr := s.GetInventoryByProductID(ctx, productID); getErr != nil {
				return nil, getErr
			}
			return nil, domain.ErrInsufficientStock
		}
		return nil, domain.Internal(err, "inventory.remove_stock", "failed to remove stock")
	}
	return item, nil
}

// SetLowStockThreshold updates the threshold for the low_stock derivation.
func (s *Store) SetLowStockThreshold(ctx context.Context, productID pgtype.UUID, threshold int32) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE inventory_items
		 SET low_stock_threshold = $2, updated_at = now()
		 WHERE product_id = $1`,
		productID, threshold)
	if err != nil {
		return domain.Internal(err, "inventory.set_threshold", "failed to update threshold")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInventoryNotFound
	}
	return nil
}

// ListInventoryLevels returns inventory positions joined with their
// products, lowest stock first.
func (s *Store) ListInventoryLevels(ctx context.Context, lowStockOnly bool) ([]domain.InventoryLevel, error) {
	rows, err := s.db.Query(ctx,
		`SELECT i.id, i.product_id, i.quantity, i.low_stock_threshold, i.created_at, i.updated_at,
		        p.name, p.sku
		 FROM inventory_items i
		 JOIN products p ON p.id = i.product_id
		 WHERE NOT $1 OR i.quantity <= i.low_stock_threshold
		 ORDER BY i.quantity ASC, p.name ASC`,
		lowStockOnly)
	if err != nil {
		return nil, domain.Internal(err, "inventory.list", "failed to list inventory")
	}
	defer rows.Close()

	var levels []domain.InventoryLevel
	for rows.Next() {
		var level domain.InventoryLevel
		err := rows.Scan(
			&level.Item.ID, &level.Item.ProductID, &level.Item.Quantity,
			&level.Item.LowStockThreshold, &level.Item.CreatedAt, &level.Item.UpdatedAt,
			&level.ProductName, &level.ProductSKU,
		)
		if err != nil {
			return nil, domain.Internal(err, "inventory.list", "failed to scan inventory level")
		}
		level.Status = level.Item.Status()
		levels = append(levels, level)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "inventory.list", "failed to read inventory levels")
	}

	return levels, nil
}

// CountLowStock counts items at or below their threshold, including
// out-of-stock items.
func (s *Store) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM inventory_items WHERE quantity <= low_stock_threshold`).Scan(&count)
	if err != nil {
		return 0, domain.Internal(err, "inventory.count_low", "failed to count low stock")
	}
	return count, nil
}
