package postgres

import (
	"context"
	"errors"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, sku, slug, name, description, brand, price_fils,
	sale_price_fils, is_active, is_featured, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Slug, &p.Name, &p.Description, &p.Brand,
		&p.PriceFils, &p.SalePriceFils, &p.IsActive, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductByID returns a product by primary key.
func (s *Store) GetProductByID(ctx context.Context, id pgtype.UUID) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "product.get", "failed to get product")
	}
	return p, nil
}

// GetProductBySlug returns a product by its URL slug.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "product.get_by_slug", "failed to get product by slug")
	}
	return p, nil
}

// ListProducts returns active products matching the filter, newest first.
func (s *Store) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 24
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE is_active = true
		   AND ($1 = '' OR brand = $1)
		   AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR sku ILIKE '%' || $2 || '%')
		   AND (NOT $3 OR is_featured = true)
		 ORDER BY created_at DESC
		 LIMIT $4 OFFSET $5`,
		filter.Brand, filter.Search, filter.FeaturedOnly, limit, filter.Offset)
	if err != nil {
		return nil, domain.Internal(err, "product.list", "failed to list products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Internal(err, "product.list", "failed to scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "product.list", "failed to read products")
	}

	return products, nil
}
