package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, user_id, customer_email, order_number, status, payment_status,
	subtotal_fils, shipping_fils, total_fils, currency,
	shipping_name, shipping_phone, shipping_line1, shipping_line2,
	shipping_city, shipping_country, notes, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.CustomerEmail, &o.OrderNumber, &o.Status, &o.PaymentStatus,
		&o.SubtotalFils, &o.ShippingFils, &o.TotalFils, &o.Currency,
		&o.ShippingName, &o.ShippingPhone, &o.ShippingLine1, &o.ShippingLine2,
		&o.ShippingCity, &o.ShippingCountry, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// InsertOrder persists a new order, filling the generated id and
// timestamps on the passed struct.
func (s *Store) InsertOrder(ctx context.Context, o *domain.Order) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO orders (user_id, customer_email, order_number, status, payment_status,
		     subtotal_fils, shipping_fils, total_fils, currency,
		     shipping_name, shipping_phone, shipping_line1, shipping_line2,
		     shipping_city, shipping_country, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, created_at, updated_at`,
		o.UserID, o.CustomerEmail, o.OrderNumber, o.Status, o.PaymentStatus,
		o.SubtotalFils, o.ShippingFils, o.TotalFils, o.Currency,
		o.ShippingName, o.ShippingPhone, o.ShippingLine1, o.ShippingLine2,
		o.ShippingCity, o.ShippingCountry, o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Internal(err, "order.insert", "failed to insert order")
	}
	return nil
}

// InsertOrderItem persists a snapshot line for an order.
func (s *Store) InsertOrderItem(ctx context.Context, item *domain.OrderItem) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO order_items (order_id, product_id, product_name, product_sku,
		     quantity, unit_price_fils, total_price_fils)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		item.OrderID, item.ProductID, item.ProductName, item.ProductSKU,
		item.Quantity, item.UnitPriceFils, item.TotalPriceFils,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return domain.Internal(err, "order.insert_item", "failed to insert order item")
	}
	return nil
}

// GetOrderByID returns an order by primary key.
func (s *Store) GetOrderByID(ctx context.Context, id pgtype.UUID) (*domain.Order, error) {
	o, err := scanOrder(s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to get order")
	}
	return o, nil
}

// GetOrderForUser returns an order only when it belongs to the user.
func (s *Store) GetOrderForUser(ctx context.Context, userID, orderID pgtype.UUID) (*domain.Order, error) {
	o, err := scanOrder(s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`,
		orderID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get_for_user", "failed to get order")
	}
	return o, nil
}

// ListOrdersByUser returns a user's orders, newest first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID pgtype.UUID) ([]domain.Order, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, domain.Internal(err, "order.list_by_user", "failed to list orders")
	}
	defer rows.Close()

	return collectOrders(rows, "order.list_by_user")
}

// ListOrders returns orders matching the dashboard filter plus the total
// match count for pagination.
func (s *Store) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	where := `WHERE ($1 = '' OR o.status = $1)
	   AND ($2 = '' OR o.payment_status = $2)
	   AND ($3 = '' OR o.order_number ILIKE '%' || $3 || '%'
	        OR o.customer_email ILIKE '%' || $3 || '%'
	        OR EXISTS (SELECT 1 FROM users u WHERE u.id = o.user_id
	                   AND u.name ILIKE '%' || $3 || '%'))`
	args := []any{string(filter.Status), string(filter.PaymentStatus), filter.Search}

	var total int64
	if err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM orders o `+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.Internal(err, "order.list", "failed to count orders")
	}

	rows, err := s.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM orders o %s ORDER BY o.created_at DESC LIMIT $4 OFFSET $5`,
			orderColumns, where),
		append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, domain.Internal(err, "order.list", "failed to list orders")
	}
	defer rows.Close()

	orders, err := collectOrders(rows, "order.list")
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func collectOrders(rows pgx.Rows, op string) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan order")
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read orders")
	}
	return orders, nil
}

// ListOrderItems returns an order's snapshot lines in insertion order.
func (s *Store) ListOrderItems(ctx context.Context, orderID pgtype.UUID) ([]domain.OrderItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, order_id, product_id, product_name, product_sku,
		        quantity, unit_price_fils, total_price_fils, created_at
		 FROM order_items WHERE order_id = $1 ORDER BY created_at ASC`,
		orderID)
	if err != nil {
		return nil, domain.Internal(err, "order.list_items", "failed to list order items")
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.ProductSKU, &item.Quantity, &item.UnitPriceFils,
			&item.TotalPriceFils, &item.CreatedAt,
		)
		if err != nil {
			return nil, domain.Internal(err, "order.list_items", "failed to scan order item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.list_items", "failed to read order items")
	}

	return items, nil
}

// UpdateOrderStatus overwrites the fulfillment status.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID pgtype.UUID, status domain.OrderStatus) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		orderID, status)
	if err != nil {
		return domain.Internal(err, "order.update_status", "failed to update order status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// UpdateOrderPaymentStatus overwrites the financial status.
func (s *Store) UpdateOrderPaymentStatus(ctx context.Context, orderID pgtype.UUID, status domain.PaymentStatus) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = now() WHERE id = $1`,
		orderID, status)
	if err != nil {
		return domain.Internal(err, "order.update_payment_status", "failed to update payment status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// CountOrdersByStatus returns order counts grouped by fulfillment status.
func (s *Store) CountOrdersByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT status, count(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, domain.Internal(err, "order.count_by_status", "failed to count orders")
	}
	defer rows.Close()

	counts := make(map[domain.OrderStatus]int64)
	for rows.Next() {
		var status domain.OrderStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.Internal(err, "order.count_by_status", "failed to scan count")
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.count_by_status", "failed to read counts")
	}

	return counts, nil
}

// CountOrdersByPaymentStatus counts orders with the given payment status.
func (s *Store) CountOrdersByPaymentStatus(ctx context.Context, status domain.PaymentStatus) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE payment_status = $1`, status).Scan(&count)
	if err != nil {
		return 0, domain.Internal(err, "order.count_by_payment_status", "failed to count orders")
	}
	return count, nil
}

// ListRecentOrders returns the newest orders for the dashboard.
func (s *Store) ListRecentOrders(ctx context.Context, limit int32) ([]domain.Order, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, domain.Internal(err, "order.list_recent", "failed to list recent orders")
	}
	defer rows.Close()

	return collectOrders(rows, "order.list_recent")
}
