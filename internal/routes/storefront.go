package routes

import (
	"github.com/gulfemperor/storefront/internal/middleware"
	"github.com/gulfemperor/storefront/internal/router"
)

// RegisterStorefrontRoutes registers all customer-facing API routes. Catalog
// and cart routes are open to guests; order history requires a session.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Product browsing
	r.Get("/api/products", deps.ProductHandler.List)
	r.Get("/api/products/{slug}", deps.ProductHandler.Get)

	// Shopping cart
	r.Get("/api/cart", deps.CartHandler.View)
	r.Delete("/api/cart", deps.CartHandler.Clear)
	r.Post("/api/cart/items", deps.CartHandler.Add)
	r.Patch("/api/cart/items/{id}", deps.CartHandler.Update)
	r.Delete("/api/cart/items/{id}", deps.CartHandler.Remove)

	// Checkout
	r.Post("/api/checkout", deps.CheckoutHandler.Create)

	// Order history (requires authentication)
	account := r.Group(middleware.RequireAuth)
	account.Get("/api/account/orders", deps.OrderHandler.List)
	account.Get("/api/account/orders/{id}", deps.OrderHandler.Get)
	account.Post("/api/account/orders/{id}/cancel", deps.OrderHandler.Cancel)
}
