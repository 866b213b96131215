package storefront

import (
	"net/http"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/middleware"
	"github.com/gulfemperor/storefront/internal/postgres"
	"github.com/jackc/pgx/v5/pgtype"
)

// CartCookieName carries the anonymous cart token for guest shoppers.
const CartCookieName = "ge_cart"

const cartCookieMaxAge = 30 * 24 * 60 * 60

// resolveIdentity builds the cart identity for the request. Authenticated
// users are identified by their account; guests by the cart cookie, which
// is minted on first use.
func resolveIdentity(w http.ResponseWriter, r *http.Request, secure bool) (domain.CartIdentity, error) {
	identity := domain.CartIdentity{}

	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		identity.UserID = user.ID
	}

	if cookie, err := r.Cookie(CartCookieName); err == nil && cookie.Value != "" {
		identity.SessionToken = cookie.Value
		return identity, nil
	}

	// Authenticated shoppers without a guest cookie need no token.
	if identity.IsAuthenticated() {
		return identity, nil
	}

	token, err := postgres.GenerateSessionToken()
	if err != nil {
		return identity, domain.Internal(err, "storefront.resolve_identity", "failed to generate cart token")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CartCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cartCookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})

	identity.SessionToken = token
	return identity, nil
}

// parseUUID parses a path or payload identifier into a pgtype.UUID.
func parseUUID(s string) (pgtype.UUID, error) {
	var id pgtype.UUID
	if err := id.Scan(s); err != nil {
		return id, domain.Invalid("storefront.parse_id", "Invalid identifier")
	}
	return id, nil
}
