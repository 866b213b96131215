package routes

import (
	"net/http"

	"github.com/gulfemperor/storefront/internal/handler/dashboard"
	"github.com/gulfemperor/storefront/internal/handler/storefront"
)

// StorefrontDeps contains dependencies for the customer-facing API routes.
type StorefrontDeps struct {
	// Catalog browsing
	ProductHandler *storefront.ProductHandler

	// Cart
	CartHandler *storefront.CartHandler

	// Checkout
	CheckoutHandler *storefront.CheckoutHandler

	// Order history and cancellation (requires authentication)
	OrderHandler *storefront.OrderHandler
}

// DashboardDeps contains dependencies for the staff dashboard routes.
type DashboardDeps struct {
	StatsHandler     *dashboard.StatsHandler
	OrderHandler     *dashboard.OrderHandler
	InventoryHandler *dashboard.InventoryHandler
}

// WebhookDeps contains dependencies for webhook routes.
type WebhookDeps struct {
	StripeHandler http.HandlerFunc
}
