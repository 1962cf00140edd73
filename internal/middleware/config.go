package middleware

import (
	"net/http"

	"github.com/templui/betterme/internal/config"
	"github.com/templui/betterme/internal/ctxkeys"
)

// Config puts the sanitized configuration on the request context.
func Config(cfg *config.Config) func(http.Handler) http.Handler {
	safe := cfg.Sanitized()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxkeys.WithConfig(r.Context(), safe)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
