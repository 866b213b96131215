package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gulfemperor/storefront/internal/billing"
	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/handler"
	"github.com/gulfemperor/storefront/internal/telemetry"
	"github.com/stripe/stripe-go/v82"
)

// maxPayloadBytes bounds webhook bodies; gateway events are small.
const maxPayloadBytes = 1 << 16

// StripeHandler receives gateway notifications and applies them through
// the payment event service. Every response other than 5xx acknowledges
// the delivery; the gateway retries anything else.
type StripeHandler struct {
	provider      billing.Provider
	events        domain.PaymentEventService
	webhookSecret string
	logger        *slog.Logger
}

func NewStripeHandler(provider billing.Provider, events domain.PaymentEventService, webhookSecret string, logger *slog.Logger) *StripeHandler {
	return &StripeHandler{
		provider:      provider,
		events:        events,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// HandleWebhook processes incoming Stripe webhook events.
//
// Stripe CLI testing:
//
//	stripe listen --forward-to localhost:8080/webhooks/stripe
//	stripe trigger payment_intent.succeeded
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.webhookSecret == "" {
		h.logger.Error("webhook secret not configured")
		handler.InternalErrorResponse(w, r, nil)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("webhook.stripe", "Error reading request body"))
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		handler.ErrorResponse(w, r, domain.Invalid("webhook.stripe", "Missing signature"))
		return
	}

	if err := h.provider.VerifyWebhookSignature(payload, signature, h.webhookSecret); err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		handler.ErrorResponse(w, r, domain.Invalid("webhook.stripe", "Invalid signature"))
		return
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("webhook.stripe", "Invalid JSON payload"))
		return
	}

	eventType := string(event.Type)
	if telemetry.Business != nil {
		telemetry.Business.WebhookReceived.WithLabelValues(eventType).Inc()
		defer func() {
			telemetry.Business.WebhookLatency.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
		}()
	}

	h.logger.Info("webhook received", "event_type", eventType, "event_id", event.ID)

	err = h.dispatch(r, event)
	switch {
	case err == nil:
		if telemetry.Business != nil {
			telemetry.Business.WebhookProcessed.WithLabelValues(eventType).Inc()
		}
	case errors.Is(err, domain.ErrEventAlreadyProcessed):
		// Replayed delivery; the first one already committed.
		if telemetry.Business != nil {
			telemetry.Business.WebhookReplayed.WithLabelValues(eventType).Inc()
		}
		h.logger.Info("webhook replay ignored", "event_type", eventType, "event_id", event.ID)
	case errors.Is(err, domain.ErrPaymentNotFound):
		// Not one of ours, e.g. an intent created outside checkout.
		// Acknowledge so the gateway stops retrying.
		h.logger.Warn("webhook for unknown payment intent",
			"event_type", eventType,
			"event_id", event.ID,
		)
	default:
		if telemetry.Business != nil {
			telemetry.Business.WebhookFailed.WithLabelValues(eventType, "processing").Inc()
		}
		h.logger.Error("webhook processing failed",
			"event_type", eventType,
			"event_id", event.ID,
			"error", err,
		)
		handler.InternalErrorResponse(w, r, nil)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// dispatch routes the verified event to the payment event service.
// Unhandled event types are acknowledged without action.
func (h *StripeHandler) dispatch(r *http.Request, event stripe.Event) error {
	ctx := r.Context()

	switch event.Type {
	case "payment_intent.succeeded":
		intentEvent, err := parsePaymentIntentEvent(event)
		if err != nil {
			return err
		}
		return h.events.HandlePaymentSucceeded(ctx, intentEvent)

	case "payment_intent.payment_failed":
		intentEvent, err := parsePaymentIntentEvent(event)
		if err != nil {
			return err
		}
		return h.events.HandlePaymentFailed(ctx, intentEvent)

	case "charge.succeeded":
		chargeEvent, err := parseChargeEvent(event)
		if err != nil {
			return err
		}
		return h.events.HandleChargeSucceeded(ctx, chargeEvent)

	case "charge.refunded":
		chargeEvent, err := parseChargeEvent(event)
		if err != nil {
			return err
		}
		return h.events.HandleChargeRefunded(ctx, chargeEvent)

	default:
		h.logger.Info("unhandled webhook event type", "event_type", event.Type)
		return nil
	}
}

func parsePaymentIntentEvent(event stripe.Event) (domain.PaymentIntentEvent, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return domain.PaymentIntentEvent{}, domain.WrapError(err, domain.EINVALID, "webhook.stripe", "Malformed payment intent payload")
	}

	intentEvent := domain.PaymentIntentEvent{
		EventID:     event.ID,
		IntentID:    intent.ID,
		AmountMinor: intent.Amount,
		Currency:    string(intent.Currency),
	}
	if intent.LastPaymentError != nil {
		intentEvent.ErrorMessage = intent.LastPaymentError.Msg
	}
	return intentEvent, nil
}

func parseChargeEvent(event stripe.Event) (domain.ChargeEvent, error) {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		return domain.ChargeEvent{}, domain.WrapError(err, domain.EINVALID, "webhook.stripe", "Malformed charge payload")
	}

	chargeEvent := domain.ChargeEvent{
		EventID:  event.ID,
		ChargeID: charge.ID,
	}
	if charge.PaymentIntent != nil {
		chargeEvent.IntentID = charge.PaymentIntent.ID
	}
	return chargeEvent, nil
}
