package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Pre-defined inventory errors.
var (
	ErrInventoryNotFound = &Error{
		Code:    ENOTFOUND,
		Message: "Inventory record not found",
	}

	// ErrInsufficientStock is returned when a removal would drive the
	// on-hand quantity negative. The quantity is left unchanged.
	ErrInsufficientStock = &Error{
		Code:    ECONFLICT,
		Message: "Insufficient stock available",
	}
)

// StockStatus is derived from an inventory item's quantity and threshold,
// never stored.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// DefaultLowStockThreshold applies when a product's inventory record is
// created without an explicit threshold.
const DefaultLowStockThreshold = 5

// InventoryItem is the authoritative on-hand quantity for one product.
// Quantity is never negative; removals are conditional single-row updates.
type InventoryItem struct {
	ID                pgtype.UUID
	ProductID         pgtype.UUID
	Quantity          int32
	LowStockThreshold int32
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
}

// Status derives the stock status from quantity and threshold.
func (i *InventoryItem) Status() StockStatus {
	return StockStatusFor(i.Quantity, i.LowStockThreshold)
}

// StockStatusFor derives a stock status from a quantity and threshold.
func StockStatusFor(quantity, threshold int32) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case quantity <= threshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// InventoryLevel is a dashboard row: an inventory item joined with the
// product it tracks.
type InventoryLevel struct {
	Item        InventoryItem
	ProductName string
	ProductSKU  string
	Status      StockStatus
}

// InventoryService is the inventory ledger: atomic additions and
// conditional removals of on-hand stock.
type InventoryService interface {
	// AddStock increments the on-hand quantity. Rejects qty <= 0.
	AddStock(ctx context.Context, productID pgtype.UUID, qty int32) (*InventoryItem, error)

	// RemoveStock decrements the on-hand quantity only when at least qty
	// units are available, otherwise returns ErrInsufficientStock and
	// changes nothing. Rejects qty <= 0.
	RemoveStock(ctx context.Context, productID pgtype.UUID, qty int32) (*InventoryItem, error)

	// SetLowStockThreshold updates the threshold used for the low_stock
	// status derivation.
	SetLowStockThreshold(ctx context.Context, productID pgtype.UUID, threshold int32) error

	// ListLevels returns inventory positions for the dashboard, optionally
	// restricted to low or out-of-stock items.
	ListLevels(ctx context.Context, lowStockOnly bool) ([]InventoryLevel, error)
}
