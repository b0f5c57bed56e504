// Package password handles the email/password signup and login endpoints.
package password

import (
	"log/slog"
	"net/http"

	"github.com/aireap/aireap-auth/internal/auth"
	"github.com/aireap/aireap-auth/internal/http/features/common"
	"github.com/aireap/aireap-auth/internal/http/middleware"
	"github.com/aireap/aireap-auth/internal/httputil"
)

// Handler handles password authentication endpoints.
type Handler struct {
	logger *slog.Logger
	engine *auth.Engine
}

// NewHandler creates a new password handler.
func NewHandler(logger *slog.Logger, engine *auth.Engine) *Handler {
	return &Handler{logger: logger, engine: engine}
}

// Signup handles account creation.
// POST /v1/auth/signup (form fields: name, email, password, csrf_token)
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid form data")
		return
	}
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again later!")
		return
	}

	res, err := h.engine.Signup(r.Context(), sess, auth.SignupRequest{
		Name:      r.PostFormValue("name"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		CSRFToken: r.PostFormValue("csrf_token"),
	})
	common.Respond(w, res, err)
}

// Login handles email/password sign-in.
// POST /v1/auth/login (form fields: email, password, csrf_token)
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid form data")
		return
	}
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again later!")
		return
	}

	res, err := h.engine.Login(r.Context(), sess, auth.LoginRequest{
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		CSRFToken: r.PostFormValue("csrf_token"),
	})
	common.Respond(w, res, err)
}
