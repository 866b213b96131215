package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, email, name, role, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID returns a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id pgtype.UUID) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.get", "failed to get user")
	}
	return u, nil
}

// GetUserBySessionToken resolves a session token to its user. An expired
// session returns domain.ErrSessionExpired so callers can clear the cookie.
func (s *Store) GetUserBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	var u domain.User
	var expiresAt pgtype.Timestamptz
	err := s.db.QueryRow(ctx,
		`SELECT u.id, u.email, u.name, u.role, u.created_at, u.updated_at, s.expires_at
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.token = $1`,
		token).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.get_by_session", "failed to resolve session")
	}

	if expiresAt.Valid && expiresAt.Time.Before(time.Now()) {
		return nil, domain.ErrSessionExpired
	}

	return &u, nil
}

// GetUserByEmail returns a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.get_by_email", "failed to get user")
	}
	return u, nil
}

// CreateUser inserts a user with the given role. Conflicting emails return
// the existing row untouched.
func (s *Store) CreateUser(ctx context.Context, email, name string, role domain.Role) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`INSERT INTO users (email, name, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		 RETURNING `+userColumns,
		email, name, role))
	if err != nil {
		return nil, domain.Internal(err, "user.create", "failed to create user")
	}
	return u, nil
}

// DeleteExpiredSessions removes sessions past their expiry.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, domain.Internal(err, "user.delete_expired_sessions", "failed to delete sessions")
	}
	return tag.RowsAffected(), nil
}
