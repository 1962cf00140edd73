package middleware

import (
	"net/http"

	"github.com/templui/betterme/internal/ctxkeys"
	"github.com/templui/betterme/internal/service"
	"github.com/templui/betterme/internal/ui"
)

// AuthMiddleware reads the session cookie, resolves the identity it carries
// to a local user and puts that user on the request context. Requests
// without a valid session continue anonymously.
func AuthMiddleware(authService *service.AuthService, identityService *service.IdentityService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.SessionCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := authService.VerifyJWT(cookie.Value)
			if err != nil {
				authService.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			// nil on lookup failure; the cookie stays so a transient
			// database error does not log the user out
			user := identityService.ResolveUser(identity)
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			ui.RenderError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	}
}
