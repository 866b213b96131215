package service

import (
	"context"
	"errors"
	"time"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

var errStubNotWired = errors.New("stub store method not wired")

// stubStore implements Store for service tests. Each method delegates to
// an optional func field; tests set only the fields the code under test
// should reach, anything else fails loudly.
type stubStore struct {
	GetProductByIDFn   func(ctx context.Context, id pgtype.UUID) (*domain.Product, error)
	GetProductBySlugFn func(ctx context.Context, slug string) (*domain.Product, error)
	ListProductsFn     func(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)

	GetInventoryByProductIDFn func(ctx context.Context, productID pgtype.UUID) (*domain.InventoryItem, error)
	AddStockFn                func(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error)
	RemoveStockFn             func(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error)
	SetLowStockThresholdFn    func(ctx context.Context, productID pgtype.UUID, threshold int32) error
	ListInventoryLevelsFn     func(ctx context.Context, lowStockOnly bool) ([]domain.InventoryLevel, error)
	CountLowStockFn           func(ctx context.Context) (int64, error)

	GetCartByUserIDFn        func(ctx context.Context, userID pgtype.UUID) (*domain.Cart, error)
	GetCartBySessionTokenFn  func(ctx context.Context, token string) (*domain.Cart, error)
	CreateCartFn             func(ctx context.Context, identity domain.CartIdentity) (*domain.Cart, error)
	DeleteCartFn             func(ctx context.Context, cartID pgtype.UUID) error
	ListCartItemsFn          func(ctx context.Context, cartID pgtype.UUID) ([]domain.CartItem, error)
	GetCartItemFn            func(ctx context.Context, itemID pgtype.UUID) (*domain.CartItem, error)
	GetCartItemByProductFn   func(ctx context.Context, cartID, productID pgtype.UUID) (*domain.CartItem, error)
	InsertCartItemFn         func(ctx context.Context, cartID, productID pgtype.UUID, qty int32) error
	UpdateCartItemQuantityFn func(ctx context.Context, itemID pgtype.UUID, qty int32) error
	MoveCartItemFn           func(ctx context.Context, itemID, toCartID pgtype.UUID) error
	DeleteCartItemFn         func(ctx context.Context, itemID pgtype.UUID) error
	ClearCartFn              func(ctx context.Context, cartID pgtype.UUID) error

	InsertOrderFn                func(ctx context.Context, o *domain.Order) error
	InsertOrderItemFn            func(ctx context.Context, item *domain.OrderItem) error
	GetOrderByIDFn               func(ctx context.Context, id pgtype.UUID) (*domain.Order, error)
	GetOrderForUserFn            func(ctx context.Context, userID, orderID pgtype.UUID) (*domain.Order, error)
	ListOrdersByUserFn           func(ctx context.Context, userID pgtype.UUID) ([]domain.Order, error)
	ListOrdersFn                 func(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error)
	ListOrderItemsFn             func(ctx context.Context, orderID pgtype.UUID) ([]domain.OrderItem, error)
	UpdateOrderStatusFn          func(ctx context.Context, orderID pgtype.UUID, status domain.OrderStatus) error
	UpdateOrderPaymentStatusFn   func(ctx context.Context, orderID pgtype.UUID, status domain.PaymentStatus) error
	CountOrdersByStatusFn        func(ctx context.Context) (map[domain.OrderStatus]int64, error)
	CountOrdersByPaymentStatusFn func(ctx context.Context, status domain.PaymentStatus) (int64, error)
	ListRecentOrdersFn           func(ctx context.Context, limit int32) ([]domain.Order, error)

	InsertPaymentFn        func(ctx context.Context, p *domain.Payment) error
	GetPaymentByIntentIDFn func(ctx context.Context, intentID string) (*domain.Payment, error)
	ListPaymentsByOrderFn  func(ctx context.Context, orderID pgtype.UUID) ([]domain.Payment, error)
	MarkPaymentSucceededFn func(ctx context.Context, id pgtype.UUID, paidAt time.Time) error
	MarkPaymentFailedFn    func(ctx context.Context, id pgtype.UUID, errorMessage string) error
	MarkPaymentRefundedFn  func(ctx context.Context, id pgtype.UUID) error
	AttachChargeIDFn       func(ctx context.Context, id pgtype.UUID, chargeID string) error

	RecordWebhookEventFn func(ctx context.Context, eventID, eventType, intentID string) error

	GetUserByIDFn           func(ctx context.Context, id pgtype.UUID) (*domain.User, error)
	GetUserBySessionTokenFn func(ctx context.Context, token string) (*domain.User, error)
}

var _ Store = (*stubStore)(nil)

func (s *stubStore) GetProductByID(ctx context.Context, id pgtype.UUID) (*domain.Product, error) {
	if s.GetProductByIDFn != nil {
		return s.GetProductByIDFn(ctx, id)
	}
	return nil, errStubNotWired
}

func (s *stubStore) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if s.GetProductBySlugFn != nil {
		return s.GetProductBySlugFn(ctx, slug)
	}
	return nil, errStubNotWired
}

func (s *stubStore) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if s.ListProductsFn != nil {
		return s.ListProductsFn(ctx, filter)
	}
	return nil, errStubNotWired
}

func (s *stubStore) GetInventoryByProductID(ctx context.Context, productID pgtype.UUID) (*domain.InventoryItem, error) {
	if s.GetInventoryByProductIDFn != nil {
		return s.GetInventoryByProductIDFn(ctx, productID)
	}
	return nil, errStubNotWired
}

func (s *stubStore) AddStock(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error) {
	if s.AddStockFn != nil {
		return s.AddStockFn(ctx, productID, qty)
	}
	return nil, errStubNotWired
}

func (s *stubStore) RemoveStock(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error) {
	if s.RemoveStockFn != nil {
		return s.RemoveStockFn(ctx, productID, qty)
	}
	return nil, errStubNotWired
}

func (s *stubStore) SetLowStockThreshold(ctx context.Context, productID pgtype.UUID, threshold int32) error {
	if s.SetLowStockThresholdFn != nil {
		return s.SetLowStockThresholdFn(ctx, productID, threshold)
	}
	return errStubNotWired
}

func (s *stubStore) ListInventoryLevels(ctx context.Context, lowStockOnly bool) ([]domain.InventoryLevel, error) {
	if s.ListInventoryLevelsFn != nil {
		return s.ListInventoryLevelsFn(ctx, lowStockOnly)
	}
	return nil, errStubNotWired
}

func (s *stubStore) CountLowStock(ctx context.Context) (int64, error) {
	if s.CountLowStockFn != nil {
		return s.CountLowStockFn(ctx)
	}
	return 0, errStubNotWired
}

func (s *stubStore) GetCartByUserID(ctx context.Context, userID pgtype.UUID) (*domain.Cart, error) {
	if s.GetCartByUserIDFn != nil {
		return s.GetCartByUserIDFn(ctx, userID)
	}
	return nil, errStubNotWired
}

func (s *stubStore) GetCartBySessionToken(ctx context.Context, token string) (*domain.Cart, error) {
	if s.GetCartBySessionTokenFn != nil {
		return s.GetCartBySessionTokenFn(ctx, token)
	}
	return nil, errStubNotWired
}

func (s *stubStore) CreateCart(ctx context.Context, identity domain.CartIdentity) (*domain.Cart, error) {
	if s.CreateCartFn != nil {
		return s.CreateCartFn(ctx, identity)
	}
	return nil, errStubNotWired
}

func (s *stubStore) DeleteCart(ctx context.Context, cartID pgtype.UUID) error {
	if s.DeleteCartFn != nil {
		return s.DeleteCartFn(ctx, cartID)
	}
	return errStubNotWired
}

func (s *stubStore) ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]domain.CartItem, error) {
	if s.ListCartItemsFn != nil {
		return s.ListCartItemsFn(ctx, cartID)
	}
	return nil, errStubNotWired
}

func (s *stubStore) GetCartItem(ctx context.Context, itemID pgtype.UUID) (*domain.CartItem, error) {
	if s.GetCartItemFn != nil {
		return s.GetCartItemFn(ctx, itemID)
	}
	return nil, errStubNotWired
}

func (s *stubStore) GetCartItemByProduct(ctx context.Context, cartID, productID pgtype.UUID) (*domain.CartItem, error) {
	if s.GetCartItemByProductFn != nil {
		return s.GetCartItemByProductFn(ctx, cartID, productID)
	}
	return nil, errStubNotWired
}

func (s *stubStore) InsertCartItem(ctx context.Context, cartID, productID pgtype.UUID, qty int32) error {
	if s.InsertCartItemFn != nil {
		return s.InsertCartItemFn(ctx, cartID, productID, qty)
	}
	return errStubNotWired
}

func (s *stubStore) UpdateCartItemQuantity(ctx context.Context, itemID pgtype.UUID, qty int32) error {
	if s.UpdateCartItemQuantityFn != nil {
		return s.UpdateCartItemQuantityFn(ctx, itemID, qty)
	}
	return errStubNotWired
}

func (s *stubStore) MoveCartItem(ctx context.Context, itemID, toCartID pgtype.UUID) error {
	if s.MoveCartItemFn != nil {
		return s.MoveCartItemFn(ctx, itemID, toCartID)
	}
	return errStubNotWired
}

func (s *stubStore) DeleteCartItem(ctx context.Context, itemID pgtype.UUID) error {
	if s.DeleteCartItemFn != nil {
		return s.DeleteCartItemFn(ctx, itemID)
	}
	return errStubNotWired
}

func (s *stubStore) ClearCart(ctx context.Context, cartID pgtype.UUID) error {
	if s.ClearCartFn != nil {
		return s.ClearCartFn(ctx, cartID)
	}
	return errStubNotWired
}

func (s *stubStore) InsertOrder(ctx context.Context, o *domain.Order) error {
	if s.InsertOrderFn != nil {
		return s.InsertOrderFn(ctx, o)
	}
	return errStubNotWired
}

func (s *stubStore) InsertOrderItem(ctx context.Context, item *domain.OrderItem) error {
	if s.InsertOrderItemFn != nil {
		return s.InsertOrderItemFn(ctx, item)
	}
	return errStubNotWired
}

func (s *stubStore) GetOrderByID(ctx context.Context, id pgtype.UUID) (*domain.Order, error) {
	if s.GetOrderByIDFn != nil {
		return s.GetOrderByIDFn(ctx, id)
	}
	return nil, errStubNotWired
}

func (s *stubStore) GetOrderForUser(ctx context.Context, userID, orderID pgtype.UUID) (*domain.Order, error) {
	if s.GetOrderForUserFn != nil {
		return s.GetOrderForUserFn(ctx, userID, orderID)
	}
	return nil, errStubNotWired
}

func (s *stubStore) ListOrdersByUser(ctx context.Context, userID pgtype.UUID) ([]domain.Order, error) {
	if s.ListOrdersByUserFn != nil {
		return s.ListOrdersByUserFn(ctx, userID)
	}
	return nil, errStubNotWired
}

func (s *stubStore) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	if s.ListOrdersFn != nil {
		return s.ListOrdersFn(ctx, filter)
	}
	return nil, 0, errStubNotWired
}

func (s *stubStore) ListOrderItems(ctx context.Context, orderID pgtype.UUID) ([]domain.OrderItem, error) {
	if s.ListOrderItemsFn != nil {
		return s.ListOrderItemsFn(ctx, orderID)
	}
	return nil, errStubNotWired
}

func (s *stubStore) UpdateOrderStatus(ctx context.Context, orderID pgtype.UUID, status domain.OrderStatus) error {
	if s.UpdateOrderStatusFn != nil {
		return s.UpdateOrderStatusFn(ctx, orderID, status)
	}
	return errStubNotWired
}

func (s *stubStore) UpdateOrderPaymentStatus(ctx context.Context, orderID pgtype.UUID, status domain.PaymentStatus) error {
	if s.UpdateOrderPaymentStatusFn != nil {
		return s.UpdateOrderPaymentStatusFn(ctx, orderID, status)
	}
	return errStubNotWired
}

func (s *stubStore) CountOrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	if s.CountOrdersByStatusFn != nil {
		return s.CountOrdersByStatusFn(ctx)
	}
	return nil, errStubNotWired
}

func (s *stubStore) CountOrdersByPaymentStatus(ctx context.Context, status domain.PaymentStatus) (int64, error) {
	if s.CountOrdersByPaymentStatusFn != nil {
		return s.CountOrdersByPaymentStatusFn(ctx, status)
	}
	return 0, errStubNotWired
}

func (s *stubStore) ListRecentOrders(ctx context.Context, limit int32) ([]domain.Order, error) {
	if s.ListRecentOrdersFn != nil {
		return s.ListRecentOrdersFn(ctx, limit)
	}
	return nil, errStubNotWired
}

func (s *stubStore) InsertPayment(ctx context.Context, p *domain.Payment) error {
	if s.InsertPaymentFn != nil {
		return s.InsertPaymentFn(ctx, p)
	}
	return errStubNotWired
}

func (s *stubStore) GetPaymentByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	if s.GetPaymentByIntentIDFn != nil {
		return s.GetPaymentByIntentIDFn(ctx, intentID)
	}
	return nil, errStubNotWired
}

func (s *stubStore) ListPaymentsByOrder(ctx context.Context, orderID pgtype.UUID) ([]domain.Payment, error) {
	if s.ListPaymentsByOrderFn != nil {
		return s.ListPaymentsByOrderFn(ctx, orderID)
	}
	return nil, errStubNotWired
}

func (s *stubStore) MarkPaymentSucceeded(ctx context.Context, id pgtype.UUID, paidAt time.Time) error {
	if s.MarkPaymentSucceededFn != nil {
		return s.MarkPaymentSucceededFn(ctx, id, paidAt)
	}
	return errStubNotWired
}

func (s *stubStore) MarkPaymentFailed(ctx context.Context, id pgtype.UUID, errorMessage string) error {
	if s.MarkPaymentFailedFn != nil {
		return s.MarkPaymentFailedFn(ctx, id, errorMessage)
	}
	return errStubNotWired
}

func (s *stubStore) MarkPaymentRefunded(ctx context.Context, id pgtype.UUID) error {
	if s.MarkPaymentRefundedFn != nil {
		return s.MarkPaymentRefundedFn(ctx, id)
	}
	return errStubNotWired
}

func (s *stubStore) AttachChargeID(ctx context.Context, id pgtype.UUID, chargeID string) error {
	if s.AttachChargeIDFn != nil {
		return s.AttachChargeIDFn(ctx, id, chargeID)
	}
	return errStubNotWired
}

func (s *stubStore) RecordWebhookEvent(ctx context.Context, eventID, eventType, intentID string) error {
	if s.RecordWebhookEventFn != nil {
		return s.RecordWebhookEventFn(ctx, eventID, eventType, intentID)
	}
	return errStubNotWired
}

func (s *stubStore) GetUserByID(ctx context.Context, id pgtype.UUID) (*domain.User, error) {
	if s.GetUserByIDFn != nil {
		return s.GetUserByIDFn(ctx, id)
	}
	return nil, errStubNotWired
}

func (s *stubStore) GetUserBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	if s.GetUserBySessionTokenFn != nil {
		return s.GetUserBySessionTokenFn(ctx, token)
	}
	return nil, errStubNotWired
}

// WithTx runs fn against the stub itself; tests exercising transactional
// paths observe every call in order.
func (s *stubStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}

func newUUID(b byte) pgtype.UUID {
	var id pgtype.UUID
	id.Bytes[15] = b
	id.Valid = true
	return id
}
