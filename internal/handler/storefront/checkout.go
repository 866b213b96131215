package storefront

import (
	"errors"
	"net/http"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/handler"
)

// CheckoutHandler converts the shopper's cart into a pending order.
type CheckoutHandler struct {
	checkout domain.CheckoutService
	secure   bool
}

func NewCheckoutHandler(checkout domain.CheckoutService, secure bool) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, secure: secure}
}

// Create handles POST /api/checkout
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	identity, err := resolveIdentity(w, r, h.secure)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	result, err := h.checkout.Checkout(r.Context(), identity, req)
	if err != nil {
		var shortage *domain.ErrStockShortage
		switch {
		case domain.IsValidationError(err):
			handler.ValidationErrorResponse(w, r, err)
		case errors.As(err, &shortage):
			h.respondShortage(w, shortage)
		default:
			handler.ErrorResponse(w, r, err)
		}
		return
	}

	handler.RespondJSON(w, http.StatusCreated, map[string]any{
		"order":         newOrderView(&result.Order),
		"client_secret": result.ClientSecret,
	})
}

// respondShortage reports which lines cannot be fulfilled so the shopper
// can adjust the cart.
func (h *CheckoutHandler) respondShortage(w http.ResponseWriter, shortage *domain.ErrStockShortage) {
	type shortageView struct {
		ProductID   string `json:"product_id"`
		ProductName string `json:"product_name"`
		Requested   int32  `json:"requested"`
		Available   int32  `json:"available"`
	}

	views := make([]shortageView, 0, len(shortage.Shortages))
	for _, s := range shortage.Shortages {
		views = append(views, shortageView{
			ProductID:   uuidString(s.ProductID),
			ProductName: s.ProductName,
			Requested:   s.Requested,
			Available:   s.Available,
		})
	}

	handler.RespondJSON(w, http.StatusConflict, map[string]any{
		"error": map[string]any{
			"code":      domain.ECONFLICT,
			"message":   "Some items are no longer available in the requested quantity",
			"shortages": views,
		},
	})
}
