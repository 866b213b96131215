package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// CheckoutRequest carries the delivery details collected at checkout.
// Validated with go-playground/validator before any state change.
type CheckoutRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Phone    string `json:"phone" validate:"required,min=6,max=20"`
	Line1    string `json:"line1" validate:"required,max=200"`
	Line2    string `json:"line2" validate:"max=200"`
	City     string `json:"city" validate:"required,max=80"`
	Country  string `json:"country" validate:"required,len=2"`
	Notes    string `json:"notes" validate:"max=500"`

	// Email receives the order confirmation. Required for guest checkout;
	// defaults to the account email for authenticated shoppers.
	Email string `json:"email" validate:"omitempty,email"`
}

// StockShortage describes one cart line that failed the pre-checkout stock
// re-check.
type StockShortage struct {
	ProductID   pgtype.UUID
	ProductName string
	Requested   int32
	Available   int32
}

// ErrStockShortage is returned when one or more cart lines exceed live
// stock at checkout time. No order artifacts are persisted.
type ErrStockShortage struct {
	Shortages []StockShortage
}

func (e *ErrStockShortage) Error() string {
	if len(e.Shortages) == 1 {
		return "insufficient stock for " + e.Shortages[0].ProductName
	}
	return "insufficient stock for multiple items"
}

// CheckoutResult is returned on a successful checkout: the created order
// and the gateway client secret for the payment page.
type CheckoutResult struct {
	Order        Order
	ClientSecret string
}

// CheckoutService converts a non-empty cart into an order. The gateway
// payment intent is created before the database transaction opens; the
// order, item snapshots and pending payment row are inserted and the cart
// cleared atomically. A failed transaction persists nothing and cancels
// the intent best-effort.
type CheckoutService interface {
	Checkout(ctx context.Context, identity CartIdentity, req CheckoutRequest) (*CheckoutResult, error)
}
