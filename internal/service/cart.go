package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

type cartService struct {
	store  Store
	logger *slog.Logger
}

// NewCartService creates the shopping cart service.
func NewCartService(store Store, logger *slog.Logger) domain.CartService {
	return &cartService{store: store, logger: logger}
}

// GetOrCreateCart resolves the identity to its cart, creating one on first
// access. For an authenticated shopper with a lingering guest session, the
// guest cart is merged into the user cart before returning.
func (s *cartService) GetOrCreateCart(ctx context.Context, identity domain.CartIdentity) (*domain.Cart, error) {
	if identity.IsAuthenticated() {
		cart, err := s.getOrCreateUserCart(ctx, identity)
		if err != nil {
			return nil, err
		}

		if identity.SessionToken != "" {
			if err := s.mergeGuestCart(ctx, identity.SessionToken, cart); err != nil {
				return nil, err
			}
		}
		return cart, nil
	}

	if identity.SessionToken == "" {
		return nil, domain.Invalid("cart.resolve", "Missing cart session")
	}

	cart, err := s.store.GetCartBySessionToken(ctx, identity.SessionToken)
	if errors.Is(err, domain.ErrCartNotFound) {
		return s.store.CreateCart(ctx, identity)
	}
	return cart, err
}

func (s *cartService) getOrCreateUserCart(ctx context.Context, identity domain.CartIdentity) (*domain.Cart, error) {
	cart, err := s.store.GetCartByUserID(ctx, identity.UserID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return s.store.CreateCart(ctx, domain.CartIdentity{UserID: identity.UserID})
	}
	return cart, err
}

// mergeGuestCart folds a guest cart into the user cart: quantities are
// summed for products present in both, remaining items move over, and the
// guest cart is deleted. Runs in one transaction so a half-merged cart is
// never visible.
func (s *cartService) mergeGuestCart(ctx context.Context, sessionToken string, userCart *domain.Cart) error {
	guestCart, err := s.store.GetCartBySessionToken(ctx, sessionToken)
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		guestItems, err := tx.ListCartItems(ctx, guestCart.ID)
		if err != nil {
			return err
		}

		for _, guestItem := range guestItems {
			existing, err := tx.GetCartItemByProduct(ctx, userCart.ID, guestItem.ProductID)
			switch {
			case err == nil:
				if err := tx.UpdateCartItemQuantity(ctx, existing.ID, existing.Quantity+guestItem.Quantity); err != nil {
					return err
				}
			case errors.Is(err, domain.ErrCartItemNotFound):
				if err := tx.MoveCartItem(ctx, guestItem.ID, userCart.ID); err != nil {
					return err
				}
			default:
				return err
			}
		}

		return tx.DeleteCart(ctx, guestCart.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("guest cart merged",
		"guest_cart_id", guestCart.ID,
		"user_cart_id", userCart.ID,
	)
	return nil
}

// AddItem adds qty units of a product to the cart. The quantity already in
// the cart plus qty must not exceed live stock.
func (s *cartService) AddItem(ctx context.Context, identity domain.CartIdentity, productID pgtype.UUID, qty int32) (*domain.CartSummary, error) {
	const op = "cart.add_item"

	if qty <= 0 {
		return nil, domain.Invalid(op, "Quantity must be positive")
	}

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.ErrProductInactive
	}

	cart, err := s.GetOrCreateCart(ctx, identity)
	if err != nil {
		return nil, err
	}

	inCart := int32(0)
	existing, err := s.store.GetCartItemByProduct(ctx, cart.ID, productID)
	if err != nil && !errors.Is(err, domain.ErrCartItemNotFound) {
		return nil, err
	}
	if existing != nil {
		inCart = existing.Quantity
	}

	if err := s.checkStock(ctx, productID, inCart+qty, op); err != nil {
		return nil, err
	}

	if existing != nil {
		err = s.store.UpdateCartItemQuantity(ctx, existing.ID, inCart+qty)
	} else {
		err = s.store.InsertCartItem(ctx, cart.ID, productID, qty)
	}
	if err != nil {
		return nil, err
	}

	return s.buildSummary(ctx, cart)
}

// UpdateItem applies one of the three update modes to a cart line.
// Increase and set are bounded by live stock; decrease and a set below one
// delete the line.
func (s *cartService) UpdateItem(ctx context.Context, identity domain.CartIdentity, itemID pgtype.UUID, update domain.CartUpdate) (*domain.CartSummary, error) {
	const op = "cart.update_item"

	if !update.Action.IsValid() {
		return nil, domain.Invalid(op, "Unknown cart update action")
	}

	cart, err := s.GetOrCreateCart(ctx, identity)
	if err != nil {
		return nil, err
	}

	item, err := s.requireOwnedItem(ctx, cart, itemID)
	if err != nil {
		return nil, err
	}

	var target int32
	switch update.Action {
	case domain.CartActionIncrease:
		target = item.Quantity + 1
	case domain.CartActionDecrease:
		target = item.Quantity - 1
	case domain.CartActionSet:
		target = update.Quantity
	}

	if target < 1 {
		if err := s.store.DeleteCartItem(ctx, item.ID); err != nil {
			return nil, err
		}
		return s.buildSummary(ctx, cart)
	}

	if err := s.checkStock(ctx, item.ProductID, target, op); err != nil {
		return nil, err
	}

	if err := s.store.UpdateCartItemQuantity(ctx, item.ID, target); err != nil {
		return nil, err
	}
	return s.buildSummary(ctx, cart)
}

// RemoveItem deletes a cart line unconditionally.
func (s *cartService) RemoveItem(ctx context.Context, identity domain.CartIdentity, itemID pgtype.UUID) (*domain.CartSummary, error) {
	cart, err := s.GetOrCreateCart(ctx, identity)
	if err != nil {
		return nil, err
	}

	item, err := s.requireOwnedItem(ctx, cart, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteCartItem(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.buildSummary(ctx, cart)
}

// ClearCart deletes all lines.
func (s *cartService) ClearCart(ctx context.Context, identity domain.CartIdentity) error {
	cart, err := s.GetOrCreateCart(ctx, identity)
	if err != nil {
		return err
	}
	return s.store.ClearCart(ctx, cart.ID)
}

// GetCartSummary returns the cart with its lines and derived totals.
func (s *cartService) GetCartSummary(ctx context.Context, identity domain.CartIdentity) (*domain.CartSummary, error) {
	cart, err := s.GetOrCreateCart(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.buildSummary(ctx, cart)
}

// requireOwnedItem loads a cart item and verifies it belongs to the
// shopper's cart, so one shopper cannot mutate another's lines by id.
func (s *cartService) requireOwnedItem(ctx context.Context, cart *domain.Cart, itemID pgtype.UUID) (*domain.CartItem, error) {
	item, err := s.store.GetCartItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.CartID != cart.ID {
		return nil, domain.ErrCartItemNotFound
	}
	return item, nil
}

func (s *cartService) checkStock(ctx context.Context, productID pgtype.UUID, wanted int32, op string) error {
	inv, err := s.store.GetInventoryByProductID(ctx, productID)
	if errors.Is(err, domain.ErrInventoryNotFound) {
		return domain.ErrInsufficientStock
	}
	if err != nil {
		return err
	}
	if inv.Quantity < wanted {
		return domain.ErrInsufficientStock
	}
	return nil
}

func (s *cartService) buildSummary(ctx context.Context, cart *domain.Cart) (*domain.CartSummary, error) {
	items, err := s.store.ListCartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	summary := &domain.CartSummary{Cart: *cart}
	for _, item := range items {
		product, err := s.store.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}

		line := domain.CartLine{
			Item:          item,
			Product:       *product,
			UnitPriceFils: product.EffectivePriceFils(),
			StockStatus:   domain.StockStatusOutOfStock,
		}
		line.LineTotalFils = line.UnitPriceFils * int64(item.Quantity)

		inv, err := s.store.GetInventoryByProductID(ctx, item.ProductID)
		if err != nil && !errors.Is(err, domain.ErrInventoryNotFound) {
			return nil, err
		}
		if inv != nil {
			line.StockStatus = inv.Status()
		}

		summary.Lines = append(summary.Lines, line)
		summary.ItemCount += item.Quantity
		summary.SubtotalFils += line.LineTotalFils
	}

	return summary, nil
}
