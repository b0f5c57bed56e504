package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/aireap/aireap-auth/internal/httputil"
)

// Recover converts handler panics into a generic error response.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						"error", rec,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					httputil.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again later!")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
