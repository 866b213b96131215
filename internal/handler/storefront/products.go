package storefront

import (
	"net/http"
	"strconv"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/handler"
	"github.com/gulfemperor/storefront/internal/telemetry"
)

// ProductHandler serves the public catalog.
type ProductHandler struct {
	products domain.ProductService
}

func NewProductHandler(products domain.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{
		Brand:  r.URL.Query().Get("brand"),
		Search: r.URL.Query().Get("q"),
	}
	if r.URL.Query().Get("featured") == "true" {
		filter.FeaturedOnly = true
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil && v > 0 {
		filter.Limit = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 32); err == nil && v > 0 {
		filter.Offset = int32(v)
	}

	items, err := h.products.ListProducts(r.Context(), filter)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		switch {
		case filter.Search != "":
			telemetry.Business.ProductSearches.WithLabelValues("search").Inc()
		case filter.Brand != "":
			telemetry.Business.ProductSearches.WithLabelValues("brand").Inc()
		case filter.FeaturedOnly:
			telemetry.Business.ProductSearches.WithLabelValues("featured").Inc()
		}
	}

	views := make([]productView, 0, len(items))
	for i := range items {
		views = append(views, newProductView(&items[i].Product, items[i].StockStatus))
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{
		"products": views,
		"count":    len(views),
	})
}

// Get handles GET /api/products/{slug}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		handler.NotFoundResponse(w, r)
		return
	}

	detail, err := h.products.GetProductBySlug(r.Context(), slug)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.ProductViews.WithLabelValues(slug).Inc()
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{
		"product": newProductDetailView(detail),
	})
}
