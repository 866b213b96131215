package email

import (
	"context"
	"log/slog"
)

// NoopSender discards messages. Used when email delivery is disabled, for
// example in local development without an SMTP relay.
type NoopSender struct {
	logger *slog.Logger
}

// NewNoopSender creates a sender that logs instead of delivering.
func NewNoopSender(logger *slog.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

// Send logs the message and reports success.
func (s *NoopSender) Send(ctx context.Context, email *Email) (string, error) {
	s.logger.Info("email delivery disabled, dropping message",
		"to", email.To,
		"subject", email.Subject,
	)
	return "noop", nil
}
