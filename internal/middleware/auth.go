package middleware

import (
	"context"
	"net/http"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/handler"
)

type contextKey string

const (
	// UserContextKey is the context key for storing the authenticated user
	UserContextKey contextKey = "user"

	// SessionCookieName carries the bearer token mapped to a user session.
	SessionCookieName = "ge_session"
)

// WithUser resolves the session cookie to a user and adds it to the request
// context. The middleware is optional: requests without a valid session
// continue as guests.
func WithUser(users domain.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserBySessionToken(r.Context(), cookie.Value)
			if err != nil {
				// Expired or unknown session, continue without user
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects unauthenticated requests with a 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r.Context()) == nil {
			handler.UnauthorizedResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireStaff admits only staff and manager accounts.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			handler.UnauthorizedResponse(w, r)
			return
		}

		if !user.Role.IsStaff() {
			handler.ForbiddenResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireManager admits only manager accounts.
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			handler.UnauthorizedResponse(w, r)
			return
		}

		if !user.Role.CanUpdateOrderStatus() {
			handler.ForbiddenResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext retrieves the user from the request context.
// Returns nil if no user is authenticated.
func GetUserFromContext(ctx context.Context) *domain.User {
	user, ok := ctx.Value(UserContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
