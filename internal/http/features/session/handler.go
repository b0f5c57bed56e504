// Package session exposes the session-scoped endpoints: the CSRF token
// handshake and logout.
package session

import (
	"net/http"

	"github.com/aireap/aireap-auth/internal/http/middleware"
	"github.com/aireap/aireap-auth/internal/httputil"
	"github.com/aireap/aireap-auth/internal/session"
)

// Handler handles session endpoints.
type Handler struct {
	manager *session.Manager
	cookies httputil.CookieConfig
}

// NewHandler creates a new session handler.
func NewHandler(manager *session.Manager, cookies httputil.CookieConfig) *Handler {
	return &Handler{manager: manager, cookies: cookies}
}

// CSRF hands the per-session CSRF token to form-driven clients.
// GET /v1/auth/csrf
func (h *Handler) CSRF(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again later!")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"csrf_token": sess.CSRFToken})
}

// Logout destroys the session and clears the cookie.
// POST /v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		h.manager.Destroy(sess.ID)
	}
	httputil.ClearSessionCookie(w, h.cookies)
	httputil.Success(w, httputil.Envelope{Msg: "Logged out successfully!", Redirect: "login"})
}
