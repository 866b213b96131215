package postgres

import (
	"context"

	"github.com/gulfemperor/storefront/internal/domain"
)

// RecordWebhookEvent inserts the gateway event id into the idempotency
// ledger. ON CONFLICT DO NOTHING makes replays detectable without racing:
// whichever delivery inserts the row first wins, every later delivery sees
// zero rows affected and gets domain.ErrEventAlreadyProcessed.
func (s *Store) RecordWebhookEvent(ctx context.Context, eventID, eventType, intentID string) error {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO webhook_events (provider_event_id, event_type, provider_intent_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (provider_event_id) DO NOTHING`,
		eventID, eventType, intentID)
	if err != nil {
		return domain.Internal(err, "webhook.record_event", "failed to record webhook event")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventAlreadyProcessed
	}
	return nil
}
