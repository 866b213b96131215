package service

import (
	"context"
	"testing"
	"time"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/email"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []*email.Email
}

func (r *recordingSender) Send(ctx context.Context, msg *email.Email) (string, error) {
	r.sent = append(r.sent, msg)
	return "stub-message-id", nil
}

// paymentEventFixture wires a stub store around one pending payment for an
// order of 3 units, plus the lookups the notification emails need.
type paymentEventFixture struct {
	store     *stubStore
	sender    *recordingSender
	svc       domain.PaymentEventService
	paymentID pgtype.UUID
	orderID   pgtype.UUID
	productID pgtype.UUID

	recordedEvents []string
	removedQty     []int32
	addedQty       []int32
}

func newPaymentEventFixture(t *testing.T) *paymentEventFixture {
	t.Helper()

	f := &paymentEventFixture{
		store:     &stubStore{},
		sender:    &recordingSender{},
		paymentID: newUUID(1),
		orderID:   newUUID(2),
		productID: newUUID(3),
	}

	userID := newUUID(4)

	f.store.GetPaymentByIntentIDFn = func(ctx context.Context, intentID string) (*domain.Payment, error) {
		if intentID != "pi_test" {
			return nil, domain.ErrPaymentNotFound
		}
		return &domain.Payment{
			ID:               f.paymentID,
			OrderID:          f.orderID,
			ProviderIntentID: "pi_test",
			AmountFils:       15000,
			Currency:         "kwd",
			State:            domain.PaymentStatePending,
		}, nil
	}
	f.store.RecordWebhookEventFn = func(ctx context.Context, eventID, eventType, intentID string) error {
		for _, seen := range f.recordedEvents {
			if seen == eventID {
				return domain.ErrEventAlreadyProcessed
			}
		}
		f.recordedEvents = append(f.recordedEvents, eventID)
		return nil
	}
	f.store.ListOrderItemsFn = func(ctx context.Context, orderID pgtype.UUID) ([]domain.OrderItem, error) {
		return []domain.OrderItem{{
			OrderID:        orderID,
			ProductID:      f.productID,
			ProductName:    "Brake Pad Set",
			ProductSKU:     "BP-2201",
			Quantity:       3,
			UnitPriceFils:  5000,
			TotalPriceFils: 15000,
		}}, nil
	}
	f.store.RemoveStockFn = func(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error) {
		f.removedQty = append(f.removedQty, qty)
		return &domain.InventoryItem{ProductID: productID, Quantity: 7}, nil
	}
	f.store.AddStockFn = func(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error) {
		f.addedQty = append(f.addedQty, qty)
		return &domain.InventoryItem{ProductID: productID, Quantity: 10}, nil
	}
	f.store.GetOrderByIDFn = func(ctx context.Context, id pgtype.UUID) (*domain.Order, error) {
		return &domain.Order{
			ID:            f.orderID,
			UserID:        userID,
			CustomerEmail: "customer@example.com",
			OrderNumber:   "ORD-20250101120000-ABCD1234",
			TotalFils:     15000,
			Currency:      "kwd",
		}, nil
	}

	emailSvc := email.NewService(f.sender, testLogger(), "orders@gulfemperor.com", "Gulf Emperor", "Gulf Emperor")
	f.svc = NewPaymentEventService(f.store, emailSvc, testLogger())
	return f
}

func TestHandlePaymentSucceeded(t *testing.T) {
	ctx := context.Background()
	f := newPaymentEventFixture(t)

	var markedAt time.Time
	f.store.MarkPaymentSucceededFn = func(ctx context.Context, id pgtype.UUID, paidAt time.Time) error {
		assert.Equal(t, f.paymentID, id)
		markedAt = paidAt
		return nil
	}
	var paymentStatus domain.PaymentStatus
	f.store.UpdateOrderPaymentStatusFn = func(ctx context.Context, orderID pgtype.UUID, status domain.PaymentStatus) error {
		paymentStatus = status
		return nil
	}
	var orderStatus domain.OrderStatus
	f.store.UpdateOrderStatusFn = func(ctx context.Context, orderID pgtype.UUID, status domain.OrderStatus) error {
		orderStatus = status
		return nil
	}

	event := domain.PaymentIntentEvent{
		EventID:     "evt_1",
		IntentID:    "pi_test",
		AmountMinor: 15000,
		Currency:    "kwd",
	}

	require.NoError(t, f.svc.HandlePaymentSucceeded(ctx, event))

	assert.False(t, markedAt.IsZero())
	assert.Equal(t, domain.PaymentStatusPaid, paymentStatus)
	assert.Equal(t, domain.OrderStatusConfirmed, orderStatus)
	assert.Equal(t, []int32{3}, f.removedQty, "sold quantity should be deducted once")

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, []string{"customer@example.com"}, f.sender.sent[0].To)

	// Replayed delivery trips the idempotency ledger and changes nothing.
	err := f.svc.HandlePaymentSucceeded(ctx, event)
	assert.ErrorIs(t, err, domain.ErrEventAlreadyProcessed)
	assert.Equal(t, []int32{3}, f.removedQty)
	assert.Len(t, f.sender.sent, 1)
}

func TestHandlePaymentSucceededUnknownIntent(t *testing.T) {
	ctx := context.Background()
	f := newPaymentEventFixture(t)

	err := f.svc.HandlePaymentSucceeded(ctx, domain.PaymentIntentEvent{
		EventID:  "evt_2",
		IntentID: "pi_unknown",
	})
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	assert.Empty(t, f.recordedEvents)
}

func TestHandlePaymentSucceededInventoryFailureDoesNotPropagate(t *testing.T) {
	ctx := context.Background()
	f := newPaymentEventFixture(t)

	f.store.MarkPaymentSucceededFn = func(ctx context.Context, id pgtype.UUID, paidAt time.Time) error { return nil }
	f.store.UpdateOrderPaymentStatusFn = func(ctx context.Context, orderID pgtype.UUID, status domain.PaymentStatus) error { return nil }
	f.store.UpdateOrderStatusFn = func(ctx context.Context, orderID pgtype.UUID, status domain.OrderStatus) error { return nil }
	f.store.RemoveStockFn = func(ctx context.Context, productID pgtype.UUID, qty int32) (*domain.InventoryItem, error) {
		return nil, domain.ErrInsufficientStock
	}

	err := f.svc.HandlePaymentSucceeded(ctx, domain.PaymentIntentEvent{
		EventID:  "evt_3",
		IntentID: "pi_test",
	})
	assert.NoError(t, err, "a captured payment is never undone by a stock mismatch")
}

func TestHandlePaymentFailed(t *testing.T) {
	ctx := context.Background()
	f := newPaymentEventFixture(t)

	var failedMessage string
	f.store.MarkPaymentFailedFn = func(ctx context.Context, id pgtype.UUID, errorMessage string) error {
		failedMessage = errorMessage
		return nil
	}
	var paymentStatus domain.PaymentStatus
	f.store.UpdateOrderPaymentStatusFn = func(ctx context.Context, orderID pgtype.UUID, status domain.PaymentStatus) error {
		paymentStatus = status
		return nil
	}

	err := f.svc.HandlePaymentFailed(ctx, domain.PaymentIntentEvent{
		EventID:      "evt_4",
		IntentID:     "pi_test",
		ErrorMessage: "Your card was declined.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Your card was declined.", failedMessage)
	assert.Equal(t, domain.PaymentStatusFailed, paymentStatus)
	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0].TextBody, "Your card was declined.")
}

func TestHandleChargeSucceeded(t *testing.T) {
	ctx := context.Background()
	f := newPaymentEventFixture(t)

	var attached string
	f.store.AttachChargeIDFn = func(ctx context.Context, id pgtype.UUID, chargeID string) error {
		assert.Equal(t, f.paymentID, id)
		attached = chargeID
		return nil
	}

	err := f.svc.HandleChargeSucceeded(ctx, domain.ChargeEvent{
		EventID:  "evt_5",
		ChargeID: "ch_1",
		IntentID: "pi_test",
	})
	require.NoError(t, err)
	assert.Equal(t, "ch_1", attached)
}

func TestHandleChargeRefunded(t *testing.T) {
	ctx := context.Background()
	f := newPaymentEventFixture(t)

	refunded := false
	f.store.MarkPaymentRefundedFn = func(ctx context.Context, id pgtype.UUID) error {
		refunded = true
		return nil
	}
	var paymentStatus domain.PaymentStatus
	f.store.UpdateOrderPaymentStatusFn = func(ctx context.Context, orderID pgtype.UUID, status domain.PaymentStatus) error {
		paymentStatus = status
		return nil
	}
	var orderStatus domain.OrderStatus
	f.store.UpdateOrderStatusFn = func(ctx context.Context, orderID pgtype.UUID, status domain.OrderStatus) error {
		orderStatus = status
		return nil
	}

	event := domain.ChargeEvent{
		EventID:  "evt_6",
		ChargeID: "ch_1",
		IntentID: "pi_test",
	}

	require.NoError(t, f.svc.HandleChargeRefunded(ctx, event))

	assert.True(t, refunded)
	assert.Equal(t, domain.PaymentStatusRefunded, paymentStatus)
	assert.Equal(t, domain.OrderStatusCancelled, orderStatus)
	assert.Equal(t, []int32{3}, f.addedQty, "refunded quantity should be restored")
	require.Len(t, f.sender.sent, 1)

	err := f.svc.HandleChargeRefunded(ctx, event)
	assert.ErrorIs(t, err, domain.ErrEventAlreadyProcessed)
	assert.Equal(t, []int32{3}, f.addedQty)
}
