package routes

import (
	"github.com/gulfemperor/storefront/internal/router"
)

// RegisterWebhookRoutes registers payment gateway webhook endpoints. These
// carry their own signature verification instead of session auth.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	r.Post("/webhooks/stripe", deps.StripeHandler)
}
