package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const paymentColumns = `id, order_id, provider_intent_id, provider_charge_id,
	amount_fils, currency, state, error_message, metadata, paid_at,
	created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.ProviderIntentID, &p.ProviderChargeID,
		&p.AmountFils, &p.Currency, &p.State, &p.ErrorMessage, &p.Metadata,
		&p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertPayment persists a new payment attempt, filling the generated id
// and timestamps on the passed struct.
func (s *Store) InsertPayment(ctx context.Context, p *domain.Payment) error {
	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO payments (order_id, provider_intent_id, provider_charge_id,
		     amount_fils, currency, state, error_message, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		p.OrderID, p.ProviderIntentID, p.ProviderChargeID,
		p.AmountFils, p.Currency, p.State, p.ErrorMessage, metadata,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Internal(err, "payment.insert", "failed to insert payment")
	}
	return nil
}

// GetPaymentByIntentID returns the payment for a gateway intent id. This is
// the join used by webhook reconciliation.
func (s *Store) GetPaymentByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	p, err := scanPayment(s.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE provider_intent_id = $1`,
		intentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, domain.Internal(err, "payment.get_by_intent", "failed to get payment")
	}
	return p, nil
}

// ListPaymentsByOrder returns an order's payment attempts, newest first.
func (s *Store) ListPaymentsByOrder(ctx context.Context, orderID pgtype.UUID) ([]domain.Payment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY created_at DESC`,
		orderID)
	if err != nil {
		return nil, domain.Internal(err, "payment.list_by_order", "failed to list payments")
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, domain.Internal(err, "payment.list_by_order", "failed to scan payment")
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "payment.list_by_order", "failed to read payments")
	}

	return payments, nil
}

// MarkPaymentSucceeded transitions the payment to succeeded and records
// when the gateway captured the funds.
func (s *Store) MarkPaymentSucceeded(ctx context.Context, id pgtype.UUID, paidAt time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE payments
		 SET state = $2, paid_at = $3, error_message = NULL, updated_at = now()
		 WHERE id = $1`,
		id, domain.PaymentStateSucceeded, paidAt)
	if err != nil {
		return domain.Internal(err, "payment.mark_succeeded", "failed to update payment")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// MarkPaymentFailed transitions the payment to failed, keeping the
// gateway's decline message for the dashboard.
func (s *Store) MarkPaymentFailed(ctx context.Context, id pgtype.UUID, errorMessage string) error {
	var msg pgtype.Text
	if errorMessage != "" {
		msg = pgtype.Text{String: errorMessage, Valid: true}
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE payments
		 SET state = $2, error_message = $3, updated_at = now()
		 WHERE id = $1`,
		id, domain.PaymentStateFailed, msg)
	if err != nil {
		return domain.Internal(err, "payment.mark_failed", "failed to update payment")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// MarkPaymentRefunded transitions the payment to refunded.
func (s *Store) MarkPaymentRefunded(ctx context.Context, id pgtype.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE payments SET state = $2, updated_at = now() WHERE id = $1`,
		id, domain.PaymentStateRefunded)
	if err != nil {
		return domain.Internal(err, "payment.mark_refunded", "failed to update payment")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// AttachChargeID stores the gateway charge id against the payment row.
func (s *Store) AttachChargeID(ctx context.Context, id pgtype.UUID, chargeID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE payments SET provider_charge_id = $2, updated_at = now() WHERE id = $1`,
		id, chargeID)
	if err != nil {
		return domain.Internal(err, "payment.attach_charge", "failed to update payment")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
