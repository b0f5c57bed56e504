// Package me exposes the authenticated user's profile snapshot.
package me

import (
	"net/http"

	"github.com/aireap/aireap-auth/internal/http/middleware"
	"github.com/aireap/aireap-auth/internal/httputil"
)

// Handler handles profile endpoints.
type Handler struct{}

// NewHandler creates a new profile handler.
func NewHandler() *Handler {
	return &Handler{}
}

// GetMe returns the session's user snapshot.
// GET /v1/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok || !sess.Authenticated() {
		httputil.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	httputil.JSON(w, http.StatusOK, sess.User)
}
