package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gulfemperor/storefront/internal/billing"
	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEventService struct {
	succeededFn func(ctx context.Context, event domain.PaymentIntentEvent) error
	failedFn    func(ctx context.Context, event domain.PaymentIntentEvent) error
	chargeFn    func(ctx context.Context, event domain.ChargeEvent) error
	refundedFn  func(ctx context.Context, event domain.ChargeEvent) error
}

func (s *stubEventService) HandlePaymentSucceeded(ctx context.Context, event domain.PaymentIntentEvent) error {
	if s.succeededFn != nil {
		return s.succeededFn(ctx, event)
	}
	return nil
}

func (s *stubEventService) HandlePaymentFailed(ctx context.Context, event domain.PaymentIntentEvent) error {
	if s.failedFn != nil {
		return s.failedFn(ctx, event)
	}
	return nil
}

func (s *stubEventService) HandleChargeSucceeded(ctx context.Context, event domain.ChargeEvent) error {
	if s.chargeFn != nil {
		return s.chargeFn(ctx, event)
	}
	return nil
}

func (s *stubEventService) HandleChargeRefunded(ctx context.Context, event domain.ChargeEvent) error {
	if s.refundedFn != nil {
		return s.refundedFn(ctx, event)
	}
	return nil
}

func newTestHandler(events domain.PaymentEventService, secret string) *StripeHandler {
	return NewStripeHandler(
		billing.NewMockProvider(),
		events,
		secret,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func postWebhook(t *testing.T, h *StripeHandler, payload, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)
	return rec
}

const succeededPayload = `{
	"id": "evt_1",
	"type": "payment_intent.succeeded",
	"data": {
		"object": {
			"id": "pi_123",
			"amount": 12500,
			"currency": "kwd"
		}
	}
}`

func TestHandleWebhookMissingSecret(t *testing.T) {
	h := newTestHandler(&stubEventService{}, "")
	rec := postWebhook(t, h, succeededPayload, "sig")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleWebhookMissingSignature(t *testing.T) {
	h := newTestHandler(&stubEventService{}, "whsec_test")
	rec := postWebhook(t, h, succeededPayload, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleWebhookInvalidSignature(t *testing.T) {
	provider := billing.NewMockProvider()
	provider.VerifyWebhookSignatureFunc = func(payload []byte, signature, secret string) error {
		return billing.ErrInvalidWebhookSignature
	}
	h := NewStripeHandler(provider, &stubEventService{}, "whsec_test", slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := postWebhook(t, h, succeededPayload, "bad-sig")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleWebhookMalformedPayload(t *testing.T) {
	h := newTestHandler(&stubEventService{}, "whsec_test")
	rec := postWebhook(t, h, "{not json", "sig")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleWebhookPaymentSucceeded(t *testing.T) {
	var got domain.PaymentIntentEvent
	events := &stubEventService{
		succeededFn: func(ctx context.Context, event domain.PaymentIntentEvent) error {
			got = event
			return nil
		},
	}

	h := newTestHandler(events, "whsec_test")
	rec := postWebhook(t, h, succeededPayload, "sig")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	assert.Equal(t, "evt_1", got.EventID)
	assert.Equal(t, "pi_123", got.IntentID)
	assert.Equal(t, int64(12500), got.AmountMinor)
	assert.Equal(t, "kwd", got.Currency)
}

func TestHandleWebhookPaymentFailedCarriesDeclineMessage(t *testing.T) {
	payload := `{
		"id": "evt_2",
		"type": "payment_intent.payment_failed",
		"data": {
			"object": {
				"id": "pi_123",
				"amount": 12500,
				"currency": "kwd",
				"last_payment_error": {"message": "Your card was declined."}
			}
		}
	}`

	var got domain.PaymentIntentEvent
	events := &stubEventService{
		failedFn: func(ctx context.Context, event domain.PaymentIntentEvent) error {
			got = event
			return nil
		},
	}

	h := newTestHandler(events, "whsec_test")
	rec := postWebhook(t, h, payload, "sig")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Your card was declined.", got.ErrorMessage)
}

func TestHandleWebhookChargeRefunded(t *testing.T) {
	payload := `{
		"id": "evt_3",
		"type": "charge.refunded",
		"data": {
			"object": {
				"id": "ch_1",
				"payment_intent": {"id": "pi_123"}
			}
		}
	}`

	var got domain.ChargeEvent
	events := &stubEventService{
		refundedFn: func(ctx context.Context, event domain.ChargeEvent) error {
			got = event
			return nil
		},
	}

	h := newTestHandler(events, "whsec_test")
	rec := postWebhook(t, h, payload, "sig")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "evt_3", got.EventID)
	assert.Equal(t, "ch_1", got.ChargeID)
	assert.Equal(t, "pi_123", got.IntentID)
}

func TestHandleWebhookReplayAcknowledged(t *testing.T) {
	events := &stubEventService{
		succeededFn: func(ctx context.Context, event domain.PaymentIntentEvent) error {
			return domain.ErrEventAlreadyProcessed
		},
	}

	h := newTestHandler(events, "whsec_test")
	rec := postWebhook(t, h, succeededPayload, "sig")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleWebhookUnknownIntentAcknowledged(t *testing.T) {
	events := &stubEventService{
		succeededFn: func(ctx context.Context, event domain.PaymentIntentEvent) error {
			return domain.ErrPaymentNotFound
		},
	}

	h := newTestHandler(events, "whsec_test")
	rec := postWebhook(t, h, succeededPayload, "sig")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleWebhookProcessingFailureTriggersRetry(t *testing.T) {
	events := &stubEventService{
		succeededFn: func(ctx context.Context, event domain.PaymentIntentEvent) error {
			return errors.New("connection reset")
		},
	}

	h := newTestHandler(events, "whsec_test")
	rec := postWebhook(t, h, succeededPayload, "sig")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleWebhookUnhandledTypeAcknowledged(t *testing.T) {
	payload := `{
		"id": "evt_4",
		"type": "payment_intent.created",
		"data": {"object": {"id": "pi_123"}}
	}`

	h := newTestHandler(&stubEventService{}, "whsec_test")
	rec := postWebhook(t, h, payload, "sig")

	assert.Equal(t, http.StatusOK, rec.Code)
}
