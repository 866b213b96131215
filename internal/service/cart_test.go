package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeProduct(id pgtype.UUID, priceFils int64) *domain.Product {
	return &domain.Product{
		ID:        id,
		SKU:       "SKU-1",
		Slug:      "test-part",
		Name:      "Test Part",
		PriceFils: priceFils,
		IsActive:  true,
	}
}

func TestGetOrCreateCartGuest(t *testing.T) {
	ctx := context.Background()
	cartID := newUUID(1)

	t.Run("existing guest cart is returned", func(t *testing.T) {
		store := &stubStore{
			GetCartBySessionTokenFn: func(ctx context.Context, token string) (*domain.Cart, error) {
				assert.Equal(t, "tok-1", token)
				return &domain.Cart{ID: cartID}, nil
			},
		}
		svc := NewCartService(store, testLogger())

		cart, err := svc.GetOrCreateCart(ctx, domain.CartIdentity{SessionToken: "tok-1"})
		require.NoError(t, err)
		assert.Equal(t, cartID, cart.ID)
	})

	t.Run("missing guest cart is created", func(t *testing.T) {
		created := false
		store := &stubStore{
			GetCartBySessionTokenFn: func(ctx context.Context, token string) (*domain.Cart, error) {
				return nil, domain.ErrCartNotFound
			},
			CreateCartFn: func(ctx context.Context, identity domain.CartIdentity) (*domain.Cart, error) {
				created = true
				assert.Equal(t, "tok-1", identity.SessionToken)
				return &domain.Cart{ID: cartID}, nil
			},
		}
		svc := NewCartService(store, testLogger())

		_, err := svc.GetOrCreateCart(ctx, domain.CartIdentity{SessionToken: "tok-1"})
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("empty identity is rejected", func(t *testing.T) {
		svc := NewCartService(&stubStore{}, testLogger())

		_, err := svc.GetOrCreateCart(ctx, domain.CartIdentity{})
		assert.True(t, domain.IsCode(err, domain.EINVALID))
	})
}

func TestGetOrCreateCartMergesGuestCart(t *testing.T) {
	ctx := context.Background()
	userID := newUUID(1)
	userCartID := newUUID(2)
	guestCartID := newUUID(3)
	sharedProduct := newUUID(4)
	guestOnlyProduct := newUUID(5)

	var updatedQty int32
	var movedItem pgtype.UUID
	var deletedCart pgtype.UUID

	store := &stubStore{
		GetCartByUserIDFn: func(ctx context.Context, id pgtype.UUID) (*domain.Cart, error) {
			return &domain.Cart{ID: userCartID, UserID: userID}, nil
		},
		GetCartBySessionTokenFn: func(ctx context.Context, token string) (*domain.Cart, error) {
			return &domain.Cart{ID: guestCartID}, nil
		},
		ListCartItemsFn: func(ctx context.Context, cartID pgtype.UUID) ([]domain.CartItem, error) {
			require.Equal(t, guestCartID, cartID)
			return []domain.CartItem{
				{ID: newUUID(10), CartID: guestCartID, ProductID: sharedProduct, Quantity: 2},
				{ID: newUUID(11), CartID: guestCartID, ProductID: guestOnlyProduct, Quantity: 1},
			}, nil
		},
		GetCartItemByProductFn: func(ctx context.Context, cartID, productID pgtype.UUID) (*domain.CartItem, error) {
			if productID == sharedProduct {
				return &domain.CartItem{ID: newUUID(20), CartID: userCartID, ProductID: sharedProduct, Quantity: 3}, nil
			}
			return nil, domain.ErrCartItemNotFound
		},
		UpdateCartItemQuantityFn: func(ctx context.Context, itemID pgtype.UUID, qty int32) error {
			updatedQty = qty
			return nil
		},
		MoveCartItemFn: func(ctx context.Context, itemID, toCartID pgtype.UUID) error {
			movedItem = itemID
			assert.Equal(t, userCartID, toCartID)
			return nil
		},
		DeleteCartFn: func(ctx context.Context, cartID pgtype.UUID) error {
			deletedCart = cartID
			return nil
		},
	}
	svc := NewCartService(store, testLogger())

	cart, err := svc.GetOrCreateCart(ctx, domain.CartIdentity{UserID: userID, SessionToken: "tok-1"})
	require.NoError(t, err)

	assert.Equal(t, userCartID, cart.ID)
	assert.Equal(t, int32(5), updatedQty, "shared product quantities should sum")
	assert.Equal(t, newUUID(11), movedItem, "guest-only item should move to the user cart")
	assert.Equal(t, guestCartID, deletedCart, "guest cart should be deleted after the merge")
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	cartID := newUUID(1)
	productID := newUUID(2)
	identity := domain.CartIdentity{SessionToken: "tok-1"}

	baseStore := func() *stubStore {
		return &stubStore{
			GetProductByIDFn: func(ctx context.Context, id pgtype.UUID) (*domain.Product, error) {
				return activeProduct(productID, 5000), nil
			},
			GetCartBySessionTokenFn: func(ctx context.Context, token string) (*domain.Cart, error) {
				return &domain.Cart{ID: cartID}, nil
			},
			GetInventoryByProductIDFn: func(ctx context.Context, id pgtype.UUID) (*domain.InventoryItem, error) {
				return &domain.InventoryItem{ProductID: productID, Quantity: 5, LowStockThreshold: 2}, nil
			},
		}
	}

	t.Run("new line is inserted", func(t *testing.T) {
		store := baseStore()
		store.GetCartItemByProductFn = func(ctx context.Context, cID, pID pgtype.UUID) (*domain.CartItem, error) {
			return nil, domain.ErrCartItemNotFound
		}
		var insertedQty int32
		store.InsertCartItemFn = func(ctx context.Context, cID, pID pgtype.UUID, qty int32) error {
			insertedQty = qty
			return nil
		}
		store.ListCartItemsFn = func(ctx context.Context, cID pgtype.UUID) ([]domain.CartItem, error) {
			return []domain.CartItem{{ID: newUUID(10), CartID: cartID, ProductID: productID, Quantity: 2}}, nil
		}
		svc := NewCartService(store, testLogger())

		summary, err := svc.AddItem(ctx, identity, productID, 2)
		require.NoError(t, err)
		assert.Equal(t, int32(2), insertedQty)
		assert.Equal(t, int32(2), summary.ItemCount)
		assert.Equal(t, int64(10000), summary.SubtotalFils)
	})

	t.Run("existing line is topped up", func(t *testing.T) {
		store := baseStore()
		store.GetCartItemByProductFn = func(ctx context.Context, cID, pID pgtype.UUID) (*domain.CartItem, error) {
			return &domain.CartItem{ID: newUUID(10), CartID: cartID, ProductID: productID, Quantity: 2}, nil
		}
		var updatedQty int32
		store.UpdateCartItemQuantityFn = func(ctx context.Context, itemID pgtype.UUID, qty int32) error {
			updatedQty = qty
			return nil
		}
		store.ListCartItemsFn = func(ctx context.Context, cID pgtype.UUID) ([]domain.CartItem, error) {
			return []domain.CartItem{{ID: newUUID(10), CartID: cartID, ProductID: productID, Quantity: 4}}, nil
		}
		svc := NewCartService(store, testLogger())

		_, err := svc.AddItem(ctx, identity, productID, 2)
		require.NoError(t, err)
		assert.Equal(t, int32(4), updatedQty)
	})

	t.Run("cart total bounded by live stock", func(t *testing.T) {
		store := baseStore()
		store.GetCartItemByProductFn = func(ctx context.Context, cID, pID pgtype.UUID) (*domain.CartItem, error) {
			return &domain.CartItem{ID: newUUID(10), CartID: cartID, ProductID: productID, Quantity: 4}, nil
		}
		svc := NewCartService(store, testLogger())

		_, err := svc.AddItem(ctx, identity, productID, 2)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	})

	t.Run("inactive product is rejected", func(t *testing.T) {
		store := baseStore()
		store.GetProductByIDFn = func(ctx context.Context, id pgtype.UUID) (*domain.Product, error) {
			p := activeProduct(productID, 5000)
			p.IsActive = false
			return p, nil
		}
		svc := NewCartService(store, testLogger())

		_, err := svc.AddItem(ctx, identity, productID, 1)
		assert.ErrorIs(t, err, domain.ErrProductInactive)
	})

	t.Run("non-positive quantity is rejected", func(t *testing.T) {
		svc := NewCartService(baseStore(), testLogger())

		_, err := svc.AddItem(ctx, identity, productID, 0)
		assert.True(t, domain.IsCode(err, domain.EINVALID))
	})
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	cartID := newUUID(1)
	productID := newUUID(2)
	itemID := newUUID(10)
	identity := domain.CartIdentity{SessionToken: "tok-1"}

	baseStore := func(currentQty, stock int32) *stubStore {
		return &stubStore{
			GetCartBySessionTokenFn: func(ctx context.Context, token string) (*domain.Cart, error) {
				return &domain.Cart{ID: cartID}, nil
			},
			GetCartItemFn: func(ctx context.Context, id pgtype.UUID) (*domain.CartItem, error) {
				return &domain.CartItem{ID: itemID, CartID: cartID, ProductID: productID, Quantity: currentQty}, nil
			},
			GetInventoryByProductIDFn: func(ctx context.Context, id pgtype.UUID) (*domain.InventoryItem, error) {
				return &domain.InventoryItem{ProductID: productID, Quantity: stock}, nil
			},
			ListCartItemsFn: func(ctx context.Context, cID pgtype.UUID) ([]domain.CartItem, error) {
				return nil, nil
			},
		}
	}

	t.Run("increase bumps quantity by one", func(t *testing.T) {
		store := baseStore(2, 10)
		var gotQty int32
		store.UpdateCartItemQuantityFn = func(ctx context.Context, id pgtype.UUID, qty int32) error {
			gotQty = qty
			return nil
		}
		svc := NewCartService(store, testLogger())

		_, err := svc.UpdateItem(ctx, identity, itemID, domain.CartUpdate{Action: domain.CartActionIncrease})
		require.NoError(t, err)
		assert.Equal(t, int32(3), gotQty)
	})

	t.Run("increase past stock fails", func(t *testing.T) {
		svc := NewCartService(baseStore(5, 5), testLogger())

		_, err := svc.UpdateItem(ctx, identity, itemID, domain.CartUpdate{Action: domain.CartActionIncrease})
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	})

	t.Run("decrease to zero deletes the line", func(t *testing.T) {
		store := baseStore(1, 10)
		deleted := false
		store.DeleteCartItemFn = func(ctx context.Context, id pgtype.UUID) error {
			deleted = true
			return nil
		}
		svc := NewCartService(store, testLogger())

		_, err := svc.UpdateItem(ctx, identity, itemID, domain.CartUpdate{Action: domain.CartActionDecrease})
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("set replaces the quantity", func(t *testing.T) {
		store := baseStore(2, 10)
		var gotQty int32
		store.UpdateCartItemQuantityFn = func(ctx context.Context, id pgtype.UUID, qty int32) error {
			gotQty = qty
			return nil
		}
		svc := NewCartService(store, testLogger())

		_, err := svc.UpdateItem(ctx, identity, itemID, domain.CartUpdate{Action: domain.CartActionSet, Quantity: 7})
		require.NoError(t, err)
		assert.Equal(t, int32(7), gotQty)
	})

	t.Run("set to zero deletes the line", func(t *testing.T) {
		store := baseStore(2, 10)
		deleted := false
		store.DeleteCartItemFn = func(ctx context.Context, id pgtype.UUID) error {
			deleted = true
			return nil
		}
		svc := NewCartService(store, testLogger())

		_, err := svc.UpdateItem(ctx, identity, itemID, domain.CartUpdate{Action: domain.CartActionSet, Quantity: 0})
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("unknown action is rejected", func(t *testing.T) {
		svc := NewCartService(baseStore(2, 10), testLogger())

		_, err := svc.UpdateItem(ctx, identity, itemID, domain.CartUpdate{Action: "double"})
		assert.True(t, domain.IsCode(err, domain.EINVALID))
	})

	t.Run("item from another cart is invisible", func(t *testing.T) {
		store := baseStore(2, 10)
		store.GetCartItemFn = func(ctx context.Context, id pgtype.UUID) (*domain.CartItem, error) {
			return &domain.CartItem{ID: itemID, CartID: newUUID(99), ProductID: productID, Quantity: 2}, nil
		}
		svc := NewCartService(store, testLogger())

		_, err := svc.UpdateItem(ctx, identity, itemID, domain.CartUpdate{Action: domain.CartActionIncrease})
		assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
	})
}

func TestGetCartSummaryUsesSalePrice(t *testing.T) {
	ctx := context.Background()
	cartID := newUUID(1)
	productID := newUUID(2)

	store := &stubStore{
		GetCartBySessionTokenFn: func(ctx context.Context, token string) (*domain.Cart, error) {
			return &domain.Cart{ID: cartID}, nil
		},
		ListCartItemsFn: func(ctx context.Context, cID pgtype.UUID) ([]domain.CartItem, error) {
			return []domain.CartItem{{ID: newUUID(10), CartID: cartID, ProductID: productID, Quantity: 3}}, nil
		},
		GetProductByIDFn: func(ctx context.Context, id pgtype.UUID) (*domain.Product, error) {
			p := activeProduct(productID, 10000)
			p.SalePriceFils = pgtype.Int8{Int64: 7500, Valid: true}
			return p, nil
		},
		GetInventoryByProductIDFn: func(ctx context.Context, id pgtype.UUID) (*domain.InventoryItem, error) {
			return &domain.InventoryItem{ProductID: productID, Quantity: 1, LowStockThreshold: 5}, nil
		},
	}
	svc := NewCartService(store, testLogger())

	summary, err := svc.GetCartSummary(ctx, domain.CartIdentity{SessionToken: "tok-1"})
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)

	line := summary.Lines[0]
	assert.Equal(t, int64(7500), line.UnitPriceFils)
	assert.Equal(t, int64(22500), line.LineTotalFils)
	assert.Equal(t, domain.StockStatusLowStock, line.StockStatus)
	assert.Equal(t, int64(22500), summary.SubtotalFils)
}
