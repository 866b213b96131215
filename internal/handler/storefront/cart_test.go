package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCartService struct {
	getOrCreateFn func(ctx context.Context, identity domain.CartIdentity) (*domain.Cart, error)
	addFn         func(ctx context.Context, identity domain.CartIdentity, productID pgtype.UUID, qty int32) (*domain.CartSummary, error)
	updateFn      func(ctx context.Context, identity domain.CartIdentity, itemID pgtype.UUID, update domain.CartUpdate) (*domain.CartSummary, error)
	removeFn      func(ctx context.Context, identity domain.CartIdentity, itemID pgtype.UUID) (*domain.CartSummary, error)
	clearFn       func(ctx context.Context, identity domain.CartIdentity) error
	summaryFn     func(ctx context.Context, identity domain.CartIdentity) (*domain.CartSummary, error)
}

func (s *stubCartService) GetOrCreateCart(ctx context.Context, identity domain.CartIdentity) (*domain.Cart, error) {
	return s.getOrCreateFn(ctx, identity)
}

func (s *stubCartService) AddItem(ctx context.Context, identity domain.CartIdentity, productID pgtype.UUID, qty int32) (*domain.CartSummary, error) {
	return s.addFn(ctx, identity, productID, qty)
}

func (s *stubCartService) UpdateItem(ctx context.Context, identity domain.CartIdentity, itemID pgtype.UUID, update domain.CartUpdate) (*domain.CartSummary, error) {
	return s.updateFn(ctx, identity, itemID, update)
}

func (s *stubCartService) RemoveItem(ctx context.Context, identity domain.CartIdentity, itemID pgtype.UUID) (*domain.CartSummary, error) {
	return s.removeFn(ctx, identity, itemID)
}

func (s *stubCartService) ClearCart(ctx context.Context, identity domain.CartIdentity) error {
	return s.clearFn(ctx, identity)
}

func (s *stubCartService) GetCartSummary(ctx context.Context, identity domain.CartIdentity) (*domain.CartSummary, error) {
	return s.summaryFn(ctx, identity)
}

func sampleSummary() *domain.CartSummary {
	product := testProduct()
	return &domain.CartSummary{
		Lines: []domain.CartLine{{
			Item:          domain.CartItem{ID: product.ID, Quantity: 2},
			Product:       product,
			UnitPriceFils: 15000,
			LineTotalFils: 30000,
			StockStatus:   domain.StockStatusInStock,
		}},
		ItemCount:    2,
		SubtotalFils: 30000,
	}
}

func TestCartViewMintsGuestCookie(t *testing.T) {
	var gotIdentity domain.CartIdentity
	svc := &stubCartService{
		summaryFn: func(ctx context.Context, identity domain.CartIdentity) (*domain.CartSummary, error) {
			gotIdentity = identity
			return sampleSummary(), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	NewCartHandler(svc, false).View(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// A fresh guest gets a cart cookie, and the same token flows into the
	// cart identity.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CartCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, gotIdentity.SessionToken, cookies[0].Value)
	assert.False(t, gotIdentity.IsAuthenticated())
}

func TestCartViewReusesExistingCookie(t *testing.T) {
	var gotIdentity domain.CartIdentity
	svc := &stubCartService{
		summaryFn: func(ctx context.Context, identity domain.CartIdentity) (*domain.CartSummary, error) {
			gotIdentity = identity
			return sampleSummary(), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartCookieName, Value: "existing-token"})
	rec := httptest.NewRecorder()
	NewCartHandler(svc, false).View(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, "existing-token", gotIdentity.SessionToken)
}

func TestCartAdd(t *testing.T) {
	product := testProduct()

	var gotProductID pgtype.UUID
	var gotQty int32
	svc := &stubCartService{
		addFn: func(ctx context.Context, identity domain.CartIdentity, productID pgtype.UUID, qty int32) (*domain.CartSummary, error) {
			gotProductID = productID
			gotQty = qty
			return sampleSummary(), nil
		},
	}

	body := `{"product_id": "` + uuidString(product.ID) + `", "quantity": 2}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: CartCookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	NewCartHandler(svc, false).Add(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, product.ID, gotProductID)
	assert.Equal(t, int32(2), gotQty)

	var resp struct {
		Cart struct {
			ItemCount int32  `json:"item_count"`
			Subtotal  string `json:"subtotal"`
		} `json:"cart"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int32(2), resp.Cart.ItemCount)
	assert.Equal(t, "30.000 KD", resp.Cart.Subtotal)
}

func TestCartAddInvalidBody(t *testing.T) {
	svc := &stubCartService{}

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"product_id": "not-a-uuid", "quantity": 1}`))
	rec := httptest.NewRecorder()
	NewCartHandler(svc, false).Add(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartAddInsufficientStock(t *testing.T) {
	product := testProduct()
	svc := &stubCartService{
		addFn: func(ctx context.Context, identity domain.CartIdentity, productID pgtype.UUID, qty int32) (*domain.CartSummary, error) {
			return nil, domain.ErrInsufficientStock
		},
	}

	body := `{"product_id": "` + uuidString(product.ID) + `", "quantity": 99}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: CartCookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	NewCartHandler(svc, false).Add(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCartUpdateAction(t *testing.T) {
	product := testProduct()

	var gotUpdate domain.CartUpdate
	svc := &stubCartService{
		updateFn: func(ctx context.Context, identity domain.CartIdentity, itemID pgtype.UUID, update domain.CartUpdate) (*domain.CartSummary, error) {
			gotUpdate = update
			return sampleSummary(), nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/cart/items/"+uuidString(product.ID), strings.NewReader(`{"action": "set", "quantity": 5}`))
	req.SetPathValue("id", uuidString(product.ID))
	req.AddCookie(&http.Cookie{Name: CartCookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	NewCartHandler(svc, false).Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.CartActionSet, gotUpdate.Action)
	assert.Equal(t, int32(5), gotUpdate.Quantity)
}

// Unknown actions are rejected in the handler before anything downstream
// sees them, so the cart-update metric label never carries client input
// outside the known action set.
func TestCartUpdateUnknownAction(t *testing.T) {
	product := testProduct()

	serviceCalled := false
	svc := &stubCartService{
		updateFn: func(ctx context.Context, identity domain.CartIdentity, itemID pgtype.UUID, update domain.CartUpdate) (*domain.CartSummary, error) {
			serviceCalled = true
			return sampleSummary(), nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/cart/items/"+uuidString(product.ID), strings.NewReader(`{"action": "multiply", "quantity": 5}`))
	req.SetPathValue("id", uuidString(product.ID))
	req.AddCookie(&http.Cookie{Name: CartCookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	NewCartHandler(svc, false).Update(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, serviceCalled)
}

func TestCartClear(t *testing.T) {
	cleared := false
	svc := &stubCartService{
		clearFn: func(ctx context.Context, identity domain.CartIdentity) error {
			cleared = true
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartCookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	NewCartHandler(svc, false).Clear(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, cleared)
}
