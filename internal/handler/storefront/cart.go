package storefront

import (
	"net/http"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/handler"
	"github.com/gulfemperor/storefront/internal/telemetry"
)

// CartHandler serves the shopper's cart.
type CartHandler struct {
	carts  domain.CartService
	secure bool
}

func NewCartHandler(carts domain.CartService, secure bool) *CartHandler {
	return &CartHandler{carts: carts, secure: secure}
}

// View handles GET /api/cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	identity, err := resolveIdentity(w, r, h.secure)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.carts.GetCartSummary(r.Context(), identity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{"cart": newCartView(summary)})
}

// Add handles POST /api/cart/items
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int32  `json:"quantity"`
	}
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	productID, err := parseUUID(req.ProductID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	identity, err := resolveIdentity(w, r, h.secure)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.carts.AddItem(r.Context(), identity, productID, req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.CartItemsAdd.Inc()
		telemetry.Business.CartUpdated.WithLabelValues("add").Inc()
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{"cart": newCartView(summary)})
}

// Update handles PATCH /api/cart/items/{id}
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req struct {
		Action   string `json:"action"`
		Quantity int32  `json:"quantity"`
	}
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	// Reject unknown actions here so the metric label below stays bounded
	// to the known action set.
	action := domain.CartUpdateAction(req.Action)
	if !action.IsValid() {
		handler.ErrorResponse(w, r, domain.Invalid("cart.update_item", "Unknown cart update action"))
		return
	}

	identity, err := resolveIdentity(w, r, h.secure)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.carts.UpdateItem(r.Context(), identity, itemID, domain.CartUpdate{
		Action:   action,
		Quantity: req.Quantity,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.CartUpdated.WithLabelValues(string(action)).Inc()
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{"cart": newCartView(summary)})
}

// Remove handles DELETE /api/cart/items/{id}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	identity, err := resolveIdentity(w, r, h.secure)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.carts.RemoveItem(r.Context(), identity, itemID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.CartUpdated.WithLabelValues("remove").Inc()
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{"cart": newCartView(summary)})
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	identity, err := resolveIdentity(w, r, h.secure)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.carts.ClearCart(r.Context(), identity); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.CartUpdated.WithLabelValues("clear").Inc()
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{"status": "cleared"})
}
