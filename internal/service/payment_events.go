package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/email"
	"github.com/gulfemperor/storefront/internal/telemetry"
	"github.com/jackc/pgx/v5/pgtype"
)

type paymentEventService struct {
	store  Store
	email  *email.Service
	logger *slog.Logger
}

// NewPaymentEventService creates the webhook reconciliation service.
func NewPaymentEventService(store Store, emailSvc *email.Service, logger *slog.Logger) domain.PaymentEventService {
	return &paymentEventService{
		store:  store,
		email:  emailSvc,
		logger: logger,
	}
}

// HandlePaymentSucceeded marks the payment succeeded and the order paid and
// confirmed, then deducts sold stock.
//
// The event id, payment transition and order transitions commit in one
// transaction: a replayed delivery trips the ledger and changes nothing,
// while a failed transaction leaves the ledger clean so the gateway's
// retry gets a fresh attempt. Inventory runs after the commit; a deduction
// failure is an operational alarm, never a reason to undo a captured
// payment.
func (s *paymentEventService) HandlePaymentSucceeded(ctx context.Context, event domain.PaymentIntentEvent) error {
	payment, err := s.store.GetPaymentByIntentID(ctx, event.IntentID)
	if err != nil {
		return err
	}

	if event.AmountMinor != 0 && event.AmountMinor != payment.AmountFils {
		s.logger.Warn("gateway amount differs from recorded payment",
			"payment_intent", event.IntentID,
			"gateway_amount", event.AmountMinor,
			"recorded_amount", payment.AmountFils,
		)
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.RecordWebhookEvent(ctx, event.EventID, "payment_intent.succeeded", event.IntentID); err != nil {
			return err
		}
		if err := tx.MarkPaymentSucceeded(ctx, payment.ID, time.Now().UTC()); err != nil {
			return err
		}
		if err := tx.UpdateOrderPaymentStatus(ctx, payment.OrderID, domain.PaymentStatusPaid); err != nil {
			return err
		}
		return tx.UpdateOrderStatus(ctx, payment.OrderID, domain.OrderStatusConfirmed)
	})
	if err != nil {
		return err
	}

	if telemetry.Business != nil {
		telemetry.Business.PaymentSucceeded.Inc()
		telemetry.Business.RevenueCollected.Add(float64(payment.AmountFils))
	}

	s.logger.Info("payment succeeded",
		"payment_intent", event.IntentID,
		"order_id", payment.OrderID,
		"amount_fils", payment.AmountFils,
	)

	s.adjustInventory(ctx, payment.OrderID, deductStock)
	s.sendOrderConfirmation(ctx, payment.OrderID)

	return nil
}

// HandlePaymentFailed marks the payment failed with the gateway's decline
// message and the order's payment status failed. Fulfillment status is
// untouched; the shopper can retry with another card.
func (s *paymentEventService) HandlePaymentFailed(ctx context.Context, event domain.PaymentIntentEvent) error {
	payment, err := s.store.GetPaymentByIntentID(ctx, event.IntentID)
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.RecordWebhookEvent(ctx, event.EventID, "payment_intent.payment_failed", event.IntentID); err != nil {
			return err
		}
		if err := tx.MarkPaymentFailed(ctx, payment.ID, event.ErrorMessage); err != nil {
			return err
		}
		return tx.UpdateOrderPaymentStatus(ctx, payment.OrderID, domain.PaymentStatusFailed)
	})
	if err != nil {
		return err
	}

	if telemetry.Business != nil {
		reason := event.ErrorMessage
		if reason == "" {
			reason = "unknown"
		}
		telemetry.Business.PaymentFailed.WithLabelValues(reason).Inc()
	}

	s.logger.Info("payment failed",
		"payment_intent", event.IntentID,
		"order_id", payment.OrderID,
		"reason", event.ErrorMessage,
	)

	s.sendPaymentFailed(ctx, payment.OrderID, event.ErrorMessage)

	return nil
}

// HandleChargeSucceeded attaches the gateway charge id to the payment row
// for audit traceability. No state transition.
func (s *paymentEventService) HandleChargeSucceeded(ctx context.Context, event domain.ChargeEvent) error {
	payment, err := s.store.GetPaymentByIntentID(ctx, event.IntentID)
	if err != nil {
		return err
	}

	return s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.RecordWebhookEvent(ctx, event.EventID, "charge.succeeded", event.IntentID); err != nil {
			return err
		}
		return tx.AttachChargeID(ctx, payment.ID, event.ChargeID)
	})
}

// HandleChargeRefunded marks the payment refunded and the order refunded
// and cancelled, then restores the sold stock.
func (s *paymentEventService) HandleChargeRefunded(ctx context.Context, event domain.ChargeEvent) error {
	payment, err := s.store.GetPaymentByIntentID(ctx, event.IntentID)
	if err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.RecordWebhookEvent(ctx, event.EventID, "charge.refunded", event.IntentID); err != nil {
			return err
		}
		if err := tx.MarkPaymentRefunded(ctx, payment.ID); err != nil {
			return err
		}
		if err := tx.UpdateOrderPaymentStatus(ctx, payment.OrderID, domain.PaymentStatusRefunded); err != nil {
			return err
		}
		return tx.UpdateOrderStatus(ctx, payment.OrderID, domain.OrderStatusCancelled)
	})
	if err != nil {
		return err
	}

	if telemetry.Business != nil {
		telemetry.Business.RefundsIssued.Inc()
		telemetry.Business.RefundAmount.Add(float64(payment.AmountFils))
		telemetry.Business.OrdersCancelled.WithLabelValues("refund").Inc()
	}

	s.logger.Info("payment refunded",
		"payment_intent", event.IntentID,
		"charge_id", event.ChargeID,
		"order_id", payment.OrderID,
	)

	s.adjustInventory(ctx, payment.OrderID, restoreStock)
	s.sendRefundConfirmation(ctx, payment.OrderID)

	return nil
}

type stockOp int

const (
	deductStock stockOp = iota
	restoreStock
)

// adjustInventory applies the order's quantities to the stock ledger after
// a financial transition has committed. Failures are logged at error level
// and counted, never propagated: the money already moved.
func (s *paymentEventService) adjustInventory(ctx context.Context, orderID pgtype.UUID, op stockOp) {
	items, err := s.store.ListOrderItems(ctx, orderID)
	if err != nil {
		s.logger.Error("CRITICAL: cannot load order items for inventory adjustment",
			"order_id", orderID,
			"error", err,
		)
		return
	}

	for _, item := range items {
		var adjErr error
		var label string
		switch op {
		case deductStock:
			_, adjErr = s.store.RemoveStock(ctx, item.ProductID, item.Quantity)
			label = "deduct"
		case restoreStock:
			_, adjErr = s.store.AddStock(ctx, item.ProductID, item.Quantity)
			label = "restore"
		}

		if adjErr != nil {
			if telemetry.Business != nil {
				telemetry.Business.InventoryMismatch.WithLabelValues(label).Inc()
			}
			s.logger.Error("CRITICAL: inventory adjustment failed after payment transition",
				"order_id", orderID,
				"product_id", item.ProductID,
				"sku", item.ProductSKU,
				"quantity", item.Quantity,
				"operation", label,
				"error", adjErr,
			)
		}
	}
}

func (s *paymentEventService) sendOrderConfirmation(ctx context.Context, orderID pgtype.UUID) {
	order, items, to, ok := s.loadEmailContext(ctx, orderID)
	if !ok {
		return
	}
	s.trackEmail("order_confirmation",
		s.email.SendOrderConfirmation(ctx, to, order, items))
}

func (s *paymentEventService) sendPaymentFailed(ctx context.Context, orderID pgtype.UUID, reason string) {
	order, _, to, ok := s.loadEmailContext(ctx, orderID)
	if !ok {
		return
	}
	s.trackEmail("payment_failed",
		s.email.SendPaymentFailed(ctx, to, order, reason))
}

func (s *paymentEventService) sendRefundConfirmation(ctx context.Context, orderID pgtype.UUID) {
	order, _, to, ok := s.loadEmailContext(ctx, orderID)
	if !ok {
		return
	}
	s.trackEmail("refund",
		s.email.SendRefundConfirmation(ctx, to, order))
}

func (s *paymentEventService) loadEmailContext(ctx context.Context, orderID pgtype.UUID) (*domain.Order, []domain.OrderItem, string, bool) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		s.logger.Error("cannot load order for notification", "order_id", orderID, "error", err)
		return nil, nil, "", false
	}

	items, err := s.store.ListOrderItems(ctx, orderID)
	if err != nil {
		s.logger.Error("cannot load order items for notification", "order_id", orderID, "error", err)
		return nil, nil, "", false
	}

	if order.CustomerEmail == "" {
		s.logger.Error("order has no notification address", "order_id", orderID)
		return nil, nil, "", false
	}

	return order, items, order.CustomerEmail, true
}

func (s *paymentEventService) trackEmail(emailType string, err error) {
	if err != nil {
		if telemetry.Business != nil {
			telemetry.Business.EmailFailed.WithLabelValues(emailType).Inc()
		}
		s.logger.Error("notification email failed", "email_type", emailType, "error", err)
		return
	}
	if telemetry.Business != nil {
		telemetry.Business.EmailSent.WithLabelValues(emailType).Inc()
	}
}
