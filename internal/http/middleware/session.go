package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aireap/aireap-auth/internal/httputil"
	"github.com/aireap/aireap-auth/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// Session loads the browser session named by the request cookie, creating a
// fresh one when the cookie is absent or the session has expired. The cookie
// is (re-)issued before the handler runs; handlers that rotate the session id
// mid-request re-issue it themselves.
func Session(manager *session.Manager, cookies httputil.CookieConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session
			if id, ok := httputil.GetSessionID(r); ok {
				sess, _ = manager.Get(id)
			}
			if sess == nil {
				created, err := manager.Create()
				if err != nil {
					logger.Error("failed to create session", "error", err)
					httputil.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again later!")
					return
				}
				sess = created
			}
			httputil.SetSessionCookie(w, sess.ID, cookies)

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session bound to the request.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok
}
