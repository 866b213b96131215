// Package worker runs periodic database maintenance alongside the HTTP
// server.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// MaintenanceStore is the subset of the storage layer the worker needs.
type MaintenanceStore interface {
	DeleteAbandonedGuestCarts(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// Config holds worker configuration
type Config struct {
	// Interval is how often maintenance runs
	Interval time.Duration

	// CartMaxAge is how long an untouched guest cart survives
	CartMaxAge time.Duration
}

// Worker purges abandoned guest carts and expired sessions on a schedule.
type Worker struct {
	config Config
	store  MaintenanceStore
	logger *slog.Logger
}

// NewWorker creates a maintenance worker
func NewWorker(store MaintenanceStore, config Config, logger *slog.Logger) *Worker {
	// Set defaults
	if config.Interval == 0 {
		config.Interval = time.Hour
	}
	if config.CartMaxAge == 0 {
		config.CartMaxAge = 30 * 24 * time.Hour
	}

	return &Worker{
		config: config,
		store:  store,
		logger: logger,
	}
}

// Start runs maintenance until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("maintenance worker starting",
		"interval", w.config.Interval,
		"cart_max_age", w.config.CartMaxAge,
	)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("maintenance worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce executes a single maintenance pass. Failures are logged and
// retried on the next tick.
func (w *Worker) runOnce(ctx context.Context) {
	cutoff := time.Now().Add(-w.config.CartMaxAge)
	carts, err := w.store.DeleteAbandonedGuestCarts(ctx, cutoff)
	if err != nil {
		w.logger.Error("failed to purge abandoned carts", "error", err)
	} else if carts > 0 {
		w.logger.Info("purged abandoned guest carts", "count", carts)
	}

	sessions, err := w.store.DeleteExpiredSessions(ctx)
	if err != nil {
		w.logger.Error("failed to purge expired sessions", "error", err)
	} else if sessions > 0 {
		w.logger.Info("purged expired sessions", "count", sessions)
	}
}
