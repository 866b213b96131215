package service

import (
	"context"
	"log/slog"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

type inventoryService struct {
	store  Store
	logger *slog.Logger
}

// NewInventoryService creates the stock ledger service.
func NewInventoryService(store Store, logger *slog.Logger) domain.InventoryService {
	return &inventoryService{store: store, logger: logger}
}

// AddStock increments a product's on-hand quantity.
func (s *inventoryService) AddStock(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error) {
	if qty <= 0 {
		return nil, domain.Invalid("inventory.add_stock", "Quantity must be positive")
	}

	item, err := s.store.AddStock(ctx, productID, qty)
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock added",
		"product_id", productID,
		"quantity", qty,
		"on_hand", item.Quantity,
	)
	return item, nil
}

// RemoveStock decrements a product's on-hand quantity, failing with
// domain.ErrInsufficientStock when fewer than qty units remain.
func (s *inventoryService) RemoveStock(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error) {
	if qty <= 0 {
		return nil, domain.Invalid("inventory.remove_stock", "Quantity must be positive")
	}

	item, err := s.store.RemoveStock(ctx, productID, qty)
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock removed",
		"product_id", productID,
		"quantity", qty,
		"on_hand", item.Quantity,
	)
	return item, nil
}

// SetLowStockThreshold updates the level at which a product is flagged
// low on the dashboard.
func (s *inventoryService) SetLowStockThreshold(ctx context.Context, productID pgtype.UUID, threshold int32) error {
	if threshold < 0 {
		return domain.Invalid("inventory.set_threshold", "Threshold must not be negative")
	}

	return s.store.SetLowStockThreshold(ctx, productID, threshold)
}

// ListLevels returns all inventory positions, optionally only those at or
// below their low-stock threshold.
func (s *inventoryService) ListLevels(ctx context.Context, lowStockOnly bool) ([]domain.InventoryLevel, error) {
	return s.store.ListInventoryLevels(ctx, lowStockOnly)
}
