package service

import (
	"context"
	"time"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

// ProductStore provides catalog reads.
type ProductStore interface {
	GetProductByID(ctx context.Context, id pgtype.UUID) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

// InventoryStore provides the inventory ledger's persistence. AddStock and
// RemoveStock are single-statement atomic updates; RemoveStock relies on a
// conditional WHERE clause and returns domain.ErrInsufficientStock when no
// row qualifies.
type InventoryStore interface {
	GetInventoryByProductID(ctx context.Context, productID pgtype.UUID) (*domain.InventoryItem, error)
	AddStock(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error)
	RemoveStock(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error)
	SetLowStockThreshold(ctx context.Context, productID pgtype.UUID, threshold int32) error
	ListInventoryLevels(ctx context.Context, lowStockOnly bool) ([]domain.InventoryLevel, error)
	CountLowStock(ctx context.Context) (int64, error)
}

// CartStore provides cart persistence.
type CartStore interface {
	GetCartByUserID(ctx context.Context, userID pgtype.UUID) (*domain.Cart, error)
	GetCartBySessionToken(ctx context.Context, token string) (*domain.Cart, error)
	CreateCart(ctx context.Context, identity domain.CartIdentity) (*domain.Cart, error)
	DeleteCart(ctx context.Context, cartID pgtype.UUID) error

	ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]domain.CartItem, error)
	GetCartItem(ctx context.Context, itemID pgtype.UUID) (*domain.CartItem, error)
	GetCartItemByProduct(ctx context.Context, cartID, productID pgtype.UUID) (*domain.CartItem, error)
	InsertCartItem(ctx context.Context, cartID, productID pgtype.UUID, qty int32) error
	UpdateCartItemQuantity(ctx context.Context, itemID pgtype.UUID, qty int32) error
	MoveCartItem(ctx context.Context, itemID, toCartID pgtype.UUID) error
	DeleteCartItem(ctx context.Context, itemID pgtype.UUID) error
	ClearCart(ctx context.Context, cartID pgtype.UUID) error
}

// OrderStore provides order and order-item persistence. Insert methods
// fill generated ids and timestamps on the passed struct.
type OrderStore interface {
	InsertOrder(ctx context.Context, o *domain.Order) error
	InsertOrderItem(ctx context.Context, item *domain.OrderItem) error
	GetOrderByID(ctx context.Context, id pgtype.UUID) (*domain.Order, error)
	GetOrderForUser(ctx context.Context, userID, orderID pgtype.UUID) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID pgtype.UUID) ([]domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error)
	ListOrderItems(ctx context.Context, orderID pgtype.UUID) ([]domain.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, orderID pgtype.UUID, status domain.OrderStatus) error
	UpdateOrderPaymentStatus(ctx context.Context, orderID pgtype.UUID, status domain.PaymentStatus) error
	CountOrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
	CountOrdersByPaymentStatus(ctx context.Context, status domain.PaymentStatus) (int64, error)
	ListRecentOrders(ctx context.Context, limit int32) ([]domain.Order, error)
}

// PaymentStore provides payment persistence keyed by the gateway's intent
// id.
type PaymentStore interface {
	InsertPayment(ctx context.Context, p *domain.Payment) error
	GetPaymentByIntentID(ctx context.Context, intentID string) (*domain.Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID pgtype.UUID) ([]domain.Payment, error)
	MarkPaymentSucceeded(ctx context.Context, id pgtype.UUID, paidAt time.Time) error
	MarkPaymentFailed(ctx context.Context, id pgtype.UUID, errorMessage string) error
	MarkPaymentRefunded(ctx context.Context, id pgtype.UUID) error
	AttachChargeID(ctx context.Context, id pgtype.UUID, chargeID string) error
}

// WebhookEventStore records processed gateway event ids. Recording an id
// that already exists returns domain.ErrEventAlreadyProcessed.
type WebhookEventStore interface {
	RecordWebhookEvent(ctx context.Context, eventID, eventType, intentID string) error
}

// UserStore resolves users and sessions.
type UserStore interface {
	GetUserByID(ctx context.Context, id pgtype.UUID) (*domain.User, error)
	GetUserBySessionToken(ctx context.Context, token string) (*domain.User, error)
}

// Store aggregates all persistence concerns plus transaction support.
// WithTx runs fn against a transaction-scoped Store and commits when fn
// returns nil, rolling back otherwise.
type Store interface {
	ProductStore
	InventoryStore
	CartStore
	OrderStore
	PaymentStore
	WebhookEventStore
	UserStore

	WithTx(ctx context.Context, fn func(Store) error) error
}
