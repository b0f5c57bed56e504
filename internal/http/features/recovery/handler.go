// Package recovery handles the OTP password-recovery endpoints.
package recovery

import (
	"log/slog"
	"net/http"

	"github.com/aireap/aireap-auth/internal/auth"
	"github.com/aireap/aireap-auth/internal/http/features/common"
	"github.com/aireap/aireap-auth/internal/http/middleware"
	"github.com/aireap/aireap-auth/internal/httputil"
)

// Handler handles the three-step password recovery flow.
type Handler struct {
	logger  *slog.Logger
	engine  *auth.Engine
	cookies httputil.CookieConfig
}

// NewHandler creates a new recovery handler.
func NewHandler(logger *slog.Logger, engine *auth.Engine, cookies httputil.CookieConfig) *Handler {
	return &Handler{logger: logger, engine: engine, cookies: cookies}
}

// RequestOTP issues and mails a recovery code.
// POST /v1/auth/recovery/request-otp (form fields: recovery-mail, csrf_token)
func (h *Handler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid form data")
		return
	}
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again later!")
		return
	}

	res, err := h.engine.RequestOTP(r.Context(), sess, auth.RequestOTPRequest{
		Email:     r.PostFormValue("recovery-mail"),
		CSRFToken: r.PostFormValue("csrf_token"),
	})
	// The engine rotates the session id when it binds the recovery flow;
	// re-issue the cookie so the browser follows the new id.
	httputil.SetSessionCookie(w, sess.ID, h.cookies)
	common.Respond(w, res, err)
}

// VerifyOTP consumes a recovery code.
// POST /v1/auth/recovery/verify-otp (form fields: otp, csrf_token)
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid form data")
		return
	}
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again later!")
		return
	}

	res, err := h.engine.VerifyOTP(r.Context(), sess, auth.VerifyOTPRequest{
		Code:      r.PostFormValue("otp"),
		CSRFToken: r.PostFormValue("csrf_token"),
	})
	common.Respond(w, res, err)
}

// ResetPassword completes the recovery flow.
// POST /v1/auth/recovery/reset-password (form fields: password, confirm_password, csrf_token)
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid form data")
		return
	}
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again later!")
		return
	}

	res, err := h.engine.ResetPassword(r.Context(), sess, auth.ResetPasswordRequest{
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		CSRFToken:       r.PostFormValue("csrf_token"),
	})
	common.Respond(w, res, err)
}
