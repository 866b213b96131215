package dashboard

import (
	"net/http"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/handler"
)

// StatsHandler serves the staff landing page summary.
type StatsHandler struct {
	orders domain.OrderService
}

func NewStatsHandler(orders domain.OrderService) *StatsHandler {
	return &StatsHandler{orders: orders}
}

// Get handles GET /api/dashboard/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.GetDashboardStats(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	byStatus := make(map[string]int64, len(stats.OrdersByStatus))
	for status, count := range stats.OrdersByStatus {
		byStatus[string(status)] = count
	}

	recent := make([]orderRowView, 0, len(stats.RecentOrders))
	for i := range stats.RecentOrders {
		recent = append(recent, newOrderRowView(&stats.RecentOrders[i]))
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{
		"orders_by_status": byStatus,
		"pending_payments": stats.PendingPayments,
		"low_stock_count":  stats.LowStockCount,
		"recent_orders":    recent,
	})
}
