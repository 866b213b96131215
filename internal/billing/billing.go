package billing

import (
	"context"
	"time"
)

// Provider defines the interface for payment processing. The storefront
// only needs one-time charges: create an intent at checkout, cancel it if
// order persistence fails, refund on return, and verify inbound webhooks.
type Provider interface {
	// CreatePaymentIntent creates a payment intent for a one-time charge.
	// Returns the intent with a client_secret for frontend confirmation.
	CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error)

	// GetPaymentIntent retrieves an existing payment intent.
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)

	// CancelPaymentIntent cancels a payment intent that hasn't been
	// confirmed. Used to clean up when order persistence fails after the
	// intent was created.
	CancelPaymentIntent(ctx context.Context, paymentIntentID string) error

	// RefundPayment refunds a completed payment.
	RefundPayment(ctx context.Context, params RefundParams) (*Refund, error)

	// VerifyWebhookSignature verifies that a webhook request is authentic.
	VerifyWebhookSignature(payload []byte, signature string, secret string) error
}

// CreatePaymentIntentParams contains parameters for creating a payment
// intent.
type CreatePaymentIntentParams struct {
	// AmountMinor is the amount in the currency's smallest unit
	// (fils for KWD).
	AmountMinor int64

	// Currency code (ISO 4217 lowercase), e.g. "kwd"
	Currency string

	// Description appears on the customer's statement and in the gateway
	// dashboard.
	Description string

	// ReceiptEmail is where the gateway sends the payment receipt.
	ReceiptEmail string

	// Metadata for reconciliation; always includes order_id and
	// order_number.
	Metadata map[string]string

	// IdempotencyKey prevents duplicate intents on checkout retries.
	IdempotencyKey string
}

// PaymentIntent represents a gateway payment intent.
type PaymentIntent struct {
	// ID is the gateway payment intent id (pi_...)
	ID string

	// ClientSecret is used by the frontend to confirm the payment.
	ClientSecret string

	// AmountMinor is the amount in the currency's smallest unit.
	AmountMinor int64

	// Currency code
	Currency string

	// Status: requires_payment_method, processing, succeeded, canceled...
	Status string

	// Metadata passed during creation
	Metadata map[string]string

	// CreatedAt is when the intent was created at the gateway.
	CreatedAt time.Time

	// LastPaymentError contains details if the last attempt failed.
	LastPaymentError *PaymentError
}

// PaymentError contains details about a failed payment attempt.
type PaymentError struct {
	Code        string // gateway error code
	Message     string // human-readable message
	DeclineCode string // reason the card was declined, if applicable
}

// RefundParams contains parameters for creating a refund.
type RefundParams struct {
	PaymentIntentID string
	AmountMinor     int64  // 0 refunds the full amount
	Reason          string // "duplicate", "fraudulent", "requested_by_customer"
	Metadata        map[string]string
}

// Refund represents a payment refund.
type Refund struct {
	ID              string
	PaymentIntentID string
	AmountMinor     int64
	Status          string // succeeded, pending, failed
	CreatedAt       time.Time
}
