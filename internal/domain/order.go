package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Pre-defined order errors.
var (
	ErrOrderNotFound = &Error{
		Code:    ENOTFOUND,
		Message: "Order not found",
	}

	// ErrOrderNotCancellable is returned when cancellation is requested
	// after fulfillment has progressed past confirmed.
	ErrOrderNotCancellable = &Error{
		Code:    ECONFLICT,
		Message: "Order can no longer be cancelled",
	}
)

// OrderStatus is the fulfillment lifecycle axis.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid reports whether the value is a defined fulfillment status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is the financial lifecycle axis, independent of fulfillment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid reports whether the value is a defined payment status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Order is an immutable-at-creation snapshot of a completed purchase
// intent. Item names, SKUs and prices are captured at checkout and never
// re-derived from the live catalog.
type Order struct {
	ID            pgtype.UUID
	UserID        pgtype.UUID // unset for guest orders
	CustomerEmail string
	OrderNumber   string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	SubtotalFils  int64
	ShippingFils  int64
	TotalFils     int64
	Currency      string

	// Delivery address snapshot.
	ShippingName    string
	ShippingPhone   string
	ShippingLine1   string
	ShippingLine2   pgtype.Text
	ShippingCity    string
	ShippingCountry string

	Notes     pgtype.Text
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// CanCancel reports whether the order may still be cancelled. Cancellation
// is permitted only before fulfillment starts.
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// OrderItem is an immutable snapshot line. The product id is kept for
// traceability only; name, SKU and price are frozen at order time.
type OrderItem struct {
	ID             pgtype.UUID
	OrderID        pgtype.UUID
	ProductID      pgtype.UUID
	ProductName    string
	ProductSKU     string
	Quantity       int32
	UnitPriceFils  int64
	TotalPriceFils int64
	CreatedAt      pgtype.Timestamptz
}

// OrderDetail is an order with its item snapshots and payment history.
type OrderDetail struct {
	Order    Order
	Items    []OrderItem
	Payments []Payment
}

// OrderFilter narrows dashboard order listings.
type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
	// Search matches order numbers and customer names/emails.
	Search string
	Limit  int32
	Offset int32
}

// DashboardStats is the staff dashboard summary.
type DashboardStats struct {
	OrdersByStatus  map[OrderStatus]int64
	PendingPayments int64
	LowStockCount   int64
	RecentOrders    []Order
}

// GenerateOrderNumber builds a unique order number from the current time
// and a random suffix, e.g. ORD-20250314093015-7F3A21BC.
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102150405"), suffix)
}

// OrderService provides order reads and lifecycle mutations. Shoppers may
// read their own orders and cancel before fulfillment; staff list, inspect
// and update fulfillment status.
type OrderService interface {
	GetOrderForUser(ctx context.Context, userID, orderID pgtype.UUID) (*OrderDetail, error)
	ListOrdersForUser(ctx context.Context, userID pgtype.UUID) ([]Order, error)

	// CancelOrder succeeds only while the order is pending or confirmed.
	CancelOrder(ctx context.Context, userID, orderID pgtype.UUID) (*Order, error)

	// Staff surfaces.
	GetOrder(ctx context.Context, orderID pgtype.UUID) (*OrderDetail, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	// UpdateStatus overwrites the fulfillment status. Any valid target is
	// accepted; only actors with the manager role may call it.
	UpdateStatus(ctx context.Context, orderID pgtype.UUID, status OrderStatus, actor *User) (*Order, error)

	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}
