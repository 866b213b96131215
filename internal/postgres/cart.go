package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const cartColumns = `id, user_id, session_token, created_at, updated_at`

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var c domain.Cart
	err := row.Scan(&c.ID, &c.UserID, &c.SessionToken, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const cartItemColumns = `id, cart_id, product_id, quantity, created_at, updated_at`

func scanCartItem(row pgx.Row) (*domain.CartItem, error) {
	var item domain.CartItem
	err := row.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCartByUserID returns the user's cart.
func (s *Store) GetCartByUserID(ctx context.Context, userID pgtype.UUID) (*domain.Cart, error) {
	c, err := scanCart(s.db.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, domain.Internal(err, "cart.get_by_user", "failed to get cart")
	}
	return c, nil
}

// GetCartBySessionToken returns a guest cart by its session token.
func (s *Store) GetCartBySessionToken(ctx context.Context, token string) (*domain.Cart, error) {
	c, err := scanCart(s.db.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE session_token = $1`, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, domain.Internal(err, "cart.get_by_session", "failed to get cart")
	}
	return c, nil
}

// CreateCart creates a cart for the given identity.
func (s *Store) CreateCart(ctx context.Context, identity domain.CartIdentity) (*domain.Cart, error) {
	var userID pgtype.UUID
	var token pgtype.Text
	if identity.IsAuthenticated() {
		userID = identity.UserID
	} else {
		token = pgtype.Text{String: identity.SessionToken, Valid: true}
	}

	c, err := scanCart(s.db.QueryRow(ctx,
		`INSERT INTO carts (user_id, session_token)
		 VALUES ($1, $2)
		 RETURNING `+cartColumns,
		userID, token))
	if err != nil {
		return nil, domain.Internal(err, "cart.create", "failed to create cart")
	}
	return c, nil
}

// DeleteCart removes a cart and, via cascade, its items.
func (s *Store) DeleteCart(ctx context.Context, cartID pgtype.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return domain.Internal(err, "cart.delete", "failed to delete cart")
	}
	return nil
}

// ListCartItems returns a cart's items in insertion order.
func (s *Store) ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]domain.CartItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE cart_id = $1 ORDER BY created_at ASC`,
		cartID)
	if err != nil {
		return nil, domain.Internal(err, "cart.list_items", "failed to list cart items")
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, domain.Internal(err, "cart.list_items", "failed to scan cart item")
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "cart.list_items", "failed to read cart items")
	}

	return items, nil
}

// GetCartItem returns a cart item by id.
func (s *Store) GetCartItem(ctx context.Context, itemID pgtype.UUID) (*domain.CartItem, error) {
	item, err := scanCartItem(s.db.QueryRow(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE id = $1`, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, domain.Internal(err, "cart.get_item", "failed to get cart item")
	}
	return item, nil
}

// GetCartItemByProduct returns the line for a product in a cart, if any.
func (s *Store) GetCartItemByProduct(ctx context.Context, cartID, productID pgtype.UUID) (*domain.CartItem, error) {
	item, err := scanCartItem(s.db.QueryRow(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, domain.Internal(err, "cart.get_item_by_product", "failed to get cart item")
	}
	return item, nil
}

// InsertCartItem adds a new line to a cart. Every line mutation also bumps
// the owning cart's updated_at so abandoned-cart cleanup keys on the last
// activity, not cart creation.
func (s *Store) InsertCartItem(ctx context.Context, cartID, productID pgtype.UUID, qty int32) error {
	_, err := s.db.Exec(ctx,
		`WITH new_item AS (
		     INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
		 )
		 UPDATE carts SET updated_at = now() WHERE id = $1`,
		cartID, productID, qty)
	if err != nil {
		return domain.Internal(err, "cart.insert_item", "failed to add cart item")
	}
	return nil
}

// UpdateCartItemQuantity sets a line's quantity and bumps the owning cart's
// updated_at.
func (s *Store) UpdateCartItemQuantity(ctx context.Context, itemID pgtype.UUID, qty int32) error {
	tag, err := s.db.Exec(ctx,
		`WITH item AS (
		     UPDATE cart_items SET quantity = $2, updated_at = now()
		      WHERE id = $1
		  RETURNING cart_id
		 )
		 UPDATE carts SET updated_at = now() WHERE id IN (SELECT cart_id FROM item)`,
		itemID, qty)
	if err != nil {
		return domain.Internal(err, "cart.update_item", "failed to update cart item")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

// MoveCartItem reassigns a line to another cart. Used by the guest-cart
// merge for products the user cart does not already contain.
func (s *Store) MoveCartItem(ctx context.Context, itemID, toCartID pgtype.UUID) error {
	tag, err := s.db.Exec(ctx,
		`WITH moved AS (
		     UPDATE cart_items SET cart_id = $2, updated_at = now()
		      WHERE id = $1
		  RETURNING id
		 )
		 UPDATE carts SET updated_at = now()
		  WHERE id = $2 AND EXISTS (SELECT 1 FROM moved)`,
		itemID, toCartID)
	if err != nil {
		return domain.Internal(err, "cart.move_item", "failed to move cart item")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

// DeleteCartItem removes a line unconditionally and bumps the owning cart's
// updated_at.
func (s *Store) DeleteCartItem(ctx context.Context, itemID pgtype.UUID) error {
	tag, err := s.db.Exec(ctx,
		`WITH removed AS (
		     DELETE FROM cart_items WHERE id = $1 RETURNING cart_id
		 )
		 UPDATE carts SET updated_at = now() WHERE id IN (SELECT cart_id FROM removed)`,
		itemID)
	if err != nil {
		return domain.Internal(err, "cart.delete_item", "failed to delete cart item")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

// DeleteAbandonedGuestCarts removes guest carts with no activity since the
// cutoff. Line mutations bump carts.updated_at, so the timestamp reflects
// the shopper's last touch rather than cart creation. User carts are kept
// indefinitely.
func (s *Store) DeleteAbandonedGuestCarts(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM carts WHERE session_token IS NOT NULL AND updated_at < $1`,
		cutoff)
	if err != nil {
		return 0, domain.Internal(err, "cart.delete_abandoned", "failed to delete abandoned carts")
	}
	return tag.RowsAffected(), nil
}

// ClearCart removes all lines from a cart.
func (s *Store) ClearCart(ctx context.Context, cartID pgtype.UUID) error {
	if _, err := s.db.Exec(ctx,
		`WITH cleared AS (
		     DELETE FROM cart_items WHERE cart_id = $1
		 )
		 UPDATE carts SET updated_at = now() WHERE id = $1`,
		cartID); err != nil {
		return domain.Internal(err, "cart.clear", "failed to clear cart")
	}
	return nil
}
