package dashboard

import (
	"net/http"
	"strconv"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/handler"
	"github.com/gulfemperor/storefront/internal/middleware"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderHandler serves the staff order management surface.
type OrderHandler struct {
	orders domain.OrderService
}

func NewOrderHandler(orders domain.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List handles GET /api/dashboard/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.OrderFilter{
		Status:        domain.OrderStatus(q.Get("status")),
		PaymentStatus: domain.PaymentStatus(q.Get("payment_status")),
		Search:        q.Get("q"),
	}
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 32); err == nil && v > 0 {
		filter.Limit = int32(v)
	}
	if v, err := strconv.ParseInt(q.Get("offset"), 10, 32); err == nil && v > 0 {
		filter.Offset = int32(v)
	}

	orders, total, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]orderRowView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderRowView(&orders[i]))
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{
		"orders": views,
		"total":  total,
	})
}

// Get handles GET /api/dashboard/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	detail, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	type itemView struct {
		ProductName    string `json:"product_name"`
		ProductSKU     string `json:"product_sku"`
		Quantity       int32  `json:"quantity"`
		UnitPriceFils  int64  `json:"unit_price_fils"`
		TotalPriceFils int64  `json:"total_price_fils"`
	}

	items := make([]itemView, 0, len(detail.Items))
	for _, item := range detail.Items {
		items = append(items, itemView{
			ProductName:    item.ProductName,
			ProductSKU:     item.ProductSKU,
			Quantity:       item.Quantity,
			UnitPriceFils:  item.UnitPriceFils,
			TotalPriceFils: item.TotalPriceFils,
		})
	}

	payments := make([]paymentView, 0, len(detail.Payments))
	for i := range detail.Payments {
		payments = append(payments, newPaymentView(&detail.Payments[i]))
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{
		"order":    newOrderRowView(&detail.Order),
		"shipping": shippingView(&detail.Order),
		"items":    items,
		"payments": payments,
	})
}

func shippingView(o *domain.Order) map[string]string {
	view := map[string]string{
		"name":    o.ShippingName,
		"phone":   o.ShippingPhone,
		"line1":   o.ShippingLine1,
		"city":    o.ShippingCity,
		"country": o.ShippingCountry,
	}
	if o.ShippingLine2.Valid {
		view["line2"] = o.ShippingLine2.String
	}
	return view
}

// UpdateStatus handles PATCH /api/dashboard/orders/{id}/status. Mounted
// behind RequireManager; the service re-checks the actor's role.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	actor := middleware.GetUserFromContext(r.Context())
	order, err := h.orders.UpdateStatus(r.Context(), orderID, domain.OrderStatus(req.Status), actor)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{"order": newOrderRowView(order)})
}

func parseUUID(s string) (pgtype.UUID, error) {
	var id pgtype.UUID
	if err := id.Scan(s); err != nil {
		return id, domain.Invalid("dashboard.parse_id", "Invalid identifier")
	}
	return id, nil
}
