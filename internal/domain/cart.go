package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Pre-defined cart errors.
var (
	ErrCartNotFound = &Error{
		Code:    ENOTFOUND,
		Message: "Cart not found",
	}

	ErrCartItemNotFound = &Error{
		Code:    ENOTFOUND,
		Message: "Cart item not found",
	}

	ErrCartEmpty = &Error{
		Code:    EINVALID,
		Message: "Cart is empty",
	}
)

// CartIdentity resolves a shopper to a cart: an authenticated user id, or
// an anonymous session token. Exactly one side is set.
type CartIdentity struct {
	UserID       pgtype.UUID
	SessionToken string
}

// IsAuthenticated reports whether the identity is a logged-in user.
func (id CartIdentity) IsAuthenticated() bool {
	return id.UserID.Valid
}

// Cart is a shopper's mutable pre-purchase selection. Owned by exactly one
// user or one guest session, never both.
type Cart struct {
	ID           pgtype.UUID
	UserID       pgtype.UUID
	SessionToken pgtype.Text
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

// CartItem is a unique (cart, product) pair with a quantity of at least 1.
// Dropping the quantity to zero deletes the row.
type CartItem struct {
	ID        pgtype.UUID
	CartID    pgtype.UUID
	ProductID pgtype.UUID
	Quantity  int32
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// CartLine is a cart item joined with its live product for display and
// subtotal computation.
type CartLine struct {
	Item          CartItem
	Product       Product
	UnitPriceFils int64
	LineTotalFils int64
	StockStatus   StockStatus
}

// CartSummary is the cart view: lines in insertion order with derived
// totals. Subtotal is the sum of quantity times effective unit price.
type CartSummary struct {
	Cart         Cart
	Lines        []CartLine
	ItemCount    int32
	SubtotalFils int64
}

// IsEmpty reports whether the cart has no lines.
func (s *CartSummary) IsEmpty() bool {
	return len(s.Lines) == 0
}

// CartUpdateAction selects how UpdateItem changes a line's quantity.
type CartUpdateAction string

const (
	// CartActionIncrease adds one, bounded by live stock.
	CartActionIncrease CartUpdateAction = "increase"

	// CartActionDecrease subtracts one, deleting the line at zero.
	CartActionDecrease CartUpdateAction = "decrease"

	// CartActionSet replaces the quantity. Values below 1 delete the line;
	// values above live stock are rejected.
	CartActionSet CartUpdateAction = "set"
)

// IsValid reports whether the action is one of the defined update modes.
func (a CartUpdateAction) IsValid() bool {
	switch a {
	case CartActionIncrease, CartActionDecrease, CartActionSet:
		return true
	}
	return false
}

// CartUpdate carries an update action and, for CartActionSet, the absolute
// quantity to apply.
type CartUpdate struct {
	Action   CartUpdateAction
	Quantity int32
}

// CartService manages shopper carts.
type CartService interface {
	// GetOrCreateCart resolves the identity to exactly one cart, creating
	// it on first access. On the first authenticated resolution after
	// login, a guest cart matching the session token is merged in:
	// quantities summed for shared products, other items moved, guest cart
	// deleted.
	GetOrCreateCart(ctx context.Context, identity CartIdentity) (*Cart, error)

	// AddItem adds qty units of a product, rejecting the add when the
	// quantity already in the cart plus qty exceeds live stock.
	AddItem(ctx context.Context, identity CartIdentity, productID pgtype.UUID, qty int32) (*CartSummary, error)

	// UpdateItem applies one of the three update modes to a cart line.
	UpdateItem(ctx context.Context, identity CartIdentity, itemID pgtype.UUID, update CartUpdate) (*CartSummary, error)

	// RemoveItem deletes a cart line unconditionally.
	RemoveItem(ctx context.Context, identity CartIdentity, itemID pgtype.UUID) (*CartSummary, error)

	// ClearCart deletes all lines.
	ClearCart(ctx context.Context, identity CartIdentity) error

	// GetCartSummary returns the cart with lines and derived totals.
	GetCartSummary(ctx context.Context, identity CartIdentity) (*CartSummary, error)
}
