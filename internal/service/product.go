package service

import (
	"context"
	"errors"

	"github.com/gulfemperor/storefront/internal/domain"
)

type productService struct {
	store Store
}

// NewProductService creates the catalog read service.
func NewProductService(store Store) domain.ProductService {
	return &productService{store: store}
}

// ListProducts returns active products with their derived stock status.
func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.ProductListItem, error) {
	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]domain.ProductListItem, 0, len(products))
	for _, p := range products {
		item := domain.ProductListItem{
			Product: p,
			// A product without an inventory record is treated as sold out
			// rather than an error; the catalog stays browsable.
			StockStatus: domain.StockStatusOutOfStock,
		}

		inv, err := s.store.GetInventoryByProductID(ctx, p.ID)
		if err != nil && !errors.Is(err, domain.ErrInventoryNotFound) {
			return nil, err
		}
		if inv != nil {
			item.StockStatus = inv.Status()
		}

		items = append(items, item)
	}

	return items, nil
}

// GetProductBySlug returns one product with its inventory position. An
// inactive product is reported gone, not missing, so clients can show a
// "no longer available" message for stale links.
func (s *productService) GetProductBySlug(ctx context.Context, slug string) (*domain.ProductDetail, error) {
	p, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.ErrProductInactive
	}

	detail := &domain.ProductDetail{
		Product:     *p,
		StockStatus: domain.StockStatusOutOfStock,
	}

	inv, err := s.store.GetInventoryByProductID(ctx, p.ID)
	if err != nil && !errors.Is(err, domain.ErrInventoryNotFound) {
		return nil, err
	}
	if inv != nil {
		detail.Inventory = inv
		detail.StockStatus = inv.Status()
	}

	return detail, nil
}
