package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Pre-defined payment errors.
var (
	ErrPaymentNotFound = &Error{
		Code:    ENOTFOUND,
		Message: "Payment not found",
	}

	// ErrEventAlreadyProcessed signals a webhook replay: the gateway event
	// id was recorded by an earlier delivery and its transitions must not
	// be applied again.
	ErrEventAlreadyProcessed = &Error{
		Code:    ECONFLICT,
		Message: "Webhook event already processed",
	}
)

// PaymentState tracks one gateway transaction attempt. An order may
// accumulate several payment rows across retries.
type PaymentState string

const (
	PaymentStatePending    PaymentState = "pending"
	PaymentStateProcessing PaymentState = "processing"
	PaymentStateSucceeded  PaymentState = "succeeded"
	PaymentStateFailed     PaymentState = "failed"
	PaymentStateCancelled  PaymentState = "cancelled"
	PaymentStateRefunded   PaymentState = "refunded"
)

// IsValid reports whether the value is a defined payment state.
func (s PaymentState) IsValid() bool {
	switch s {
	case PaymentStatePending, PaymentStateProcessing, PaymentStateSucceeded,
		PaymentStateFailed, PaymentStateCancelled, PaymentStateRefunded:
		return true
	}
	return false
}

// Payment is one gateway transaction attempt for an order. The gateway's
// payment-intent id is the join key for inbound webhook notifications.
type Payment struct {
	ID               pgtype.UUID
	OrderID          pgtype.UUID
	ProviderIntentID string
	ProviderChargeID pgtype.Text
	AmountFils       int64
	Currency         string
	State            PaymentState
	ErrorMessage     pgtype.Text
	Metadata         map[string]string
	PaidAt           pgtype.Timestamptz
	CreatedAt        pgtype.Timestamptz
	UpdatedAt        pgtype.Timestamptz
}

// WebhookEvent is the idempotency ledger entry for a processed gateway
// notification.
type WebhookEvent struct {
	ProviderEventID  string
	EventType        string
	ProviderIntentID string
	ReceivedAt       pgtype.Timestamptz
}

// PaymentIntentEvent is a parsed payment_intent.* notification.
type PaymentIntentEvent struct {
	EventID      string
	IntentID     string
	AmountMinor  int64
	Currency     string
	ErrorMessage string
}

// ChargeEvent is a parsed charge.* notification.
type ChargeEvent struct {
	EventID  string
	ChargeID string
	IntentID string
}

// PaymentEventService applies webhook-driven payment transitions and the
// coupled order/inventory updates. Every method records the event id first
// and returns ErrEventAlreadyProcessed on replay. A notification whose
// intent id matches no payment row returns ErrPaymentNotFound; callers log
// and drop it.
type PaymentEventService interface {
	// HandlePaymentSucceeded marks the payment succeeded, the order paid
	// and confirmed, then deducts each item's quantity from inventory.
	// Deduction failures are surfaced in logs and metrics but never undo
	// the payment transition.
	HandlePaymentSucceeded(ctx context.Context, event PaymentIntentEvent) error

	// HandlePaymentFailed marks the payment failed with the gateway error
	// message and the order's payment status failed. Fulfillment status is
	// untouched.
	HandlePaymentFailed(ctx context.Context, event PaymentIntentEvent) error

	// HandleChargeSucceeded attaches the gateway charge id to the payment
	// row for audit traceability. No state transition.
	HandleChargeSucceeded(ctx context.Context, event ChargeEvent) error

	// HandleChargeRefunded marks the payment refunded, the order refunded
	// and cancelled, then restores each item's quantity to inventory.
	HandleChargeRefunded(ctx context.Context, event ChargeEvent) error
}
