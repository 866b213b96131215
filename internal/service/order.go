package service

import (
	"context"
	"log/slog"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/telemetry"
	"github.com/jackc/pgx/v5/pgtype"
)

type orderService struct {
	store  Store
	logger *slog.Logger
}

// NewOrderService creates the order lifecycle service.
func NewOrderService(store Store, logger *slog.Logger) domain.OrderService {
	return &orderService{store: store, logger: logger}
}

// GetOrderForUser returns an order with items and payment history, only
// when it belongs to the user.
func (s *orderService) GetOrderForUser(ctx context.Context, userID, orderID pgtype.UUID) (*domain.OrderDetail, error) {
	order, err := s.store.GetOrderForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(ctx, order)
}

// ListOrdersForUser returns the user's order history, newest first.
func (s *orderService) ListOrdersForUser(ctx context.Context, userID pgtype.UUID) ([]domain.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}

// CancelOrder cancels the user's own order while fulfillment has not
// progressed past confirmed.
func (s *orderService) CancelOrder(ctx context.Context, userID, orderID pgtype.UUID) (*domain.Order, error) {
	order, err := s.store.GetOrderForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanCancel() {
		return nil, domain.ErrOrderNotCancellable
	}

	if err := s.store.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusCancelled); err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatusCancelled

	if telemetry.Business != nil {
		telemetry.Business.OrdersCancelled.WithLabelValues("customer").Inc()
	}
	s.logger.Info("order cancelled by customer",
		"order_number", order.OrderNumber,
		"order_id", order.ID,
	)

	return order, nil
}

// GetOrder returns any order with items and payment history. Staff only;
// the route guard enforces the role.
func (s *orderService) GetOrder(ctx context.Context, orderID pgtype.UUID) (*domain.OrderDetail, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(ctx, order)
}

// ListOrders returns orders matching the dashboard filter plus the total
// match count.
func (s *orderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, domain.Invalid("order.list", "Unknown order status filter")
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.IsValid() {
		return nil, 0, domain.Invalid("order.list", "Unknown payment status filter")
	}
	return s.store.ListOrders(ctx, filter)
}

// UpdateStatus overwrites the fulfillment status. Any valid target status
// is accepted; the actor must hold the manager role.
func (s *orderService) UpdateStatus(ctx context.Context, orderID pgtype.UUID, status domain.OrderStatus, actor *domain.User) (*domain.Order, error) {
	const op = "order.update_status"

	if actor == nil {
		return nil, domain.Unauthorized(op, "Authentication required")
	}
	if !actor.Role.CanUpdateOrderStatus() {
		return nil, domain.Forbidden(op, "Manager role required to update order status")
	}
	if !status.IsValid() {
		return nil, domain.Invalid(op, "Unknown order status")
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateOrderStatus(ctx, order.ID, status); err != nil {
		return nil, err
	}
	previous := order.Status
	order.Status = status

	if telemetry.Business != nil {
		telemetry.Business.OrderStatusMoves.WithLabelValues(string(status)).Inc()
	}
	s.logger.Info("order status updated",
		"order_number", order.OrderNumber,
		"from", previous,
		"to", status,
		"actor", actor.Email,
	)

	return order, nil
}

// GetDashboardStats assembles the staff landing page summary.
func (s *orderService) GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	byStatus, err := s.store.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}

	pendingPayments, err := s.store.CountOrdersByPaymentStatus(ctx, domain.PaymentStatusPending)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.store.CountLowStock(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.store.ListRecentOrders(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardStats{
		OrdersByStatus:  byStatus,
		PendingPayments: pendingPayments,
		LowStockCount:   lowStock,
		RecentOrders:    recent,
	}, nil
}

func (s *orderService) buildDetail(ctx context.Context, order *domain.Order) (*domain.OrderDetail, error) {
	items, err := s.store.ListOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	payments, err := s.store.ListPaymentsByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return &domain.OrderDetail{
		Order:    *order,
		Items:    items,
		Payments: payments,
	}, nil
}
