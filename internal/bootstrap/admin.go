// Package bootstrap handles one-time initialization tasks for the application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/gulfemperor/storefront/internal/domain"
)

// ManagerStore is the subset of the storage layer needed for seeding.
type ManagerStore interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, email, name string, role domain.Role) (*domain.User, error)
}

// ManagerConfig contains configuration for the initial manager account.
type ManagerConfig struct {
	Email string
	Name  string
}

// Validate checks that the manager configuration is valid.
func (c *ManagerConfig) Validate() error {
	if c.Email == "" {
		return errors.New("manager email is required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("invalid manager email: %w", err)
	}
	return nil
}

// EnsureManager creates the initial manager account if it doesn't exist.
// This function is idempotent - safe to call on every startup.
//
// If a user with the configured email already exists, it returns without
// error regardless of that user's role. If the config is nil or has an
// empty email, it logs a warning and skips.
func EnsureManager(ctx context.Context, store ManagerStore, cfg *ManagerConfig, logger *slog.Logger) error {
	// If no config provided, skip seeding (allows running without a manager in dev)
	if cfg == nil || cfg.Email == "" {
		logger.Warn("bootstrap: skipping manager creation - MANAGER_EMAIL not set",
			"hint", "Set this environment variable to create a manager account on first startup",
		)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid manager configuration: %w", err)
	}

	existing, err := store.GetUserByEmail(ctx, cfg.Email)
	if err != nil && !domain.IsCode(err, domain.ENOTFOUND) {
		return fmt.Errorf("failed to check for existing manager: %w", err)
	}
	if existing != nil {
		logger.Info("bootstrap: manager account already exists",
			"email", cfg.Email,
			"role", string(existing.Role),
		)
		return nil
	}

	name := cfg.Name
	if name == "" {
		name = "Store Manager"
	}

	user, err := store.CreateUser(ctx, cfg.Email, name, domain.RoleManager)
	if err != nil {
		return fmt.Errorf("failed to create manager account: %w", err)
	}

	logger.Info("bootstrap: manager account created",
		"email", cfg.Email,
		"user_id", user.ID,
	)

	return nil
}
