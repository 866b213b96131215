package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Pre-defined product errors.
var (
	ErrProductNotFound = &Error{
		Code:    ENOTFOUND,
		Message: "Product not found",
	}

	ErrProductInactive = &Error{
		Code:    EGONE,
		Message: "Product is no longer available",
	}
)

// Product is a catalog entry for an automotive part.
// Prices are stored in fils (KWD minor units, 1 KWD = 1000 fils).
type Product struct {
	ID            pgtype.UUID
	SKU           string
	Slug          string
	Name          string
	Description   string
	Brand         string
	PriceFils     int64
	SalePriceFils pgtype.Int8
	IsActive      bool
	IsFeatured    bool
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

// EffectivePriceFils returns the sale price when one is set, otherwise
// the base price. Cart subtotals and order snapshots use this value.
func (p *Product) EffectivePriceFils() int64 {
	if p.SalePriceFils.Valid && p.SalePriceFils.Int64 > 0 {
		return p.SalePriceFils.Int64
	}
	return p.PriceFils
}

// IsOnSale reports whether the product has an active sale price below the
// base price.
func (p *Product) IsOnSale() bool {
	return p.SalePriceFils.Valid && p.SalePriceFils.Int64 > 0 && p.SalePriceFils.Int64 < p.PriceFils
}

// DiscountPercent returns the rounded-down discount percentage, or 0 when
// the product is not on sale.
func (p *Product) DiscountPercent() int64 {
	if !p.IsOnSale() || p.PriceFils == 0 {
		return 0
	}
	return (p.PriceFils - p.SalePriceFils.Int64) * 100 / p.PriceFils
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Brand        string
	Search       string
	FeaturedOnly bool
	Limit        int32
	Offset       int32
}

// ProductListItem is a catalog row with its derived stock status.
type ProductListItem struct {
	Product     Product
	StockStatus StockStatus
}

// ProductDetail is a product page view: the product plus its inventory
// position, if an inventory record exists.
type ProductDetail struct {
	Product     Product
	Inventory   *InventoryItem
	StockStatus StockStatus
}

// ProductService provides catalog reads for the storefront.
type ProductService interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]ProductListItem, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDetail, error)
}
