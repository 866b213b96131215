package dashboard

import (
	"net/http"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/handler"
	"github.com/gulfemperor/storefront/internal/telemetry"
)

// InventoryHandler serves the staff stock management surface.
type InventoryHandler struct {
	inventory domain.InventoryService
}

func NewInventoryHandler(inventory domain.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// List handles GET /api/dashboard/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	lowStockOnly := r.URL.Query().Get("low_stock") == "true"

	levels, err := h.inventory.ListLevels(r.Context(), lowStockOnly)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]inventoryRowView, 0, len(levels))
	for i := range levels {
		views = append(views, newInventoryRowView(&levels[i]))
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{"inventory": views})
}

// Adjust handles POST /api/dashboard/inventory/{product_id}/adjust
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	productID, err := parseUUID(r.PathValue("product_id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req struct {
		Direction string `json:"direction"`
		Quantity  int32  `json:"quantity"`
	}
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var item *domain.InventoryItem
	switch req.Direction {
	case "add":
		item, err = h.inventory.AddStock(r.Context(), productID, req.Quantity)
	case "remove":
		item, err = h.inventory.RemoveStock(r.Context(), productID, req.Quantity)
	default:
		handler.ErrorResponse(w, r, domain.Invalid("dashboard.inventory_adjust", "Direction must be add or remove"))
		return
	}
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.InventoryAdjustments.WithLabelValues(req.Direction).Inc()
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{
		"product_id": uuidString(item.ProductID),
		"quantity":   item.Quantity,
		"status":     string(item.Status()),
	})
}

// SetThreshold handles PATCH /api/dashboard/inventory/{product_id}/threshold
func (h *InventoryHandler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	productID, err := parseUUID(r.PathValue("product_id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req struct {
		Threshold int32 `json:"threshold"`
	}
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.inventory.SetLowStockThreshold(r.Context(), productID, req.Threshold); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{"status": "updated"})
}
