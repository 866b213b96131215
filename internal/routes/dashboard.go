package routes

import (
	"github.com/gulfemperor/storefront/internal/middleware"
	"github.com/gulfemperor/storefront/internal/router"
)

// RegisterDashboardRoutes registers the staff dashboard routes. Everything is
// gated behind a staff session; order status transitions additionally require
// the manager role.
func RegisterDashboardRoutes(r *router.Router, deps DashboardDeps) {
	staff := r.Group(middleware.RequireStaff)

	staff.Get("/api/dashboard/stats", deps.StatsHandler.Get)

	staff.Get("/api/dashboard/orders", deps.OrderHandler.List)
	staff.Get("/api/dashboard/orders/{id}", deps.OrderHandler.Get)

	staff.Get("/api/dashboard/inventory", deps.InventoryHandler.List)
	staff.Post("/api/dashboard/inventory/{product_id}/adjust", deps.InventoryHandler.Adjust)
	staff.Patch("/api/dashboard/inventory/{product_id}/threshold", deps.InventoryHandler.SetThreshold)

	manager := r.Group(middleware.RequireManager)
	manager.Patch("/api/dashboard/orders/{id}/status", deps.OrderHandler.UpdateStatus)
}
