// Package http wires the middleware stack and the feature handlers into the
// service router.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aireap/aireap-auth/internal/auth"
	"github.com/aireap/aireap-auth/internal/config"
	"github.com/aireap/aireap-auth/internal/http/features/google"
	"github.com/aireap/aireap-auth/internal/http/features/me"
	"github.com/aireap/aireap-auth/internal/http/features/password"
	"github.com/aireap/aireap-auth/internal/http/features/recovery"
	sessionfeature "github.com/aireap/aireap-auth/internal/http/features/session"
	"github.com/aireap/aireap-auth/internal/http/middleware"
	"github.com/aireap/aireap-auth/internal/httputil"
	"github.com/aireap/aireap-auth/internal/session"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	Engine          *auth.Engine
	Sessions        *session.Manager
	GoogleProvider  google.Provider // nil disables the OAuth routes
	CookieConfig    httputil.CookieConfig
	MaxRequestBytes int64
	RateLimit       config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	ProfilePath     string
	LoginPath       string
}

// NewRouter creates the HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimit, cfg.Logger)
	withSession := middleware.Session(cfg.Sessions, cfg.CookieConfig, cfg.Logger)

	sessionHandler := sessionfeature.NewHandler(cfg.Sessions, cfg.CookieConfig)
	passwordHandler := password.NewHandler(cfg.Logger, cfg.Engine)
	recoveryHandler := recovery.NewHandler(cfg.Logger, cfg.Engine, cfg.CookieConfig)
	meHandler := me.NewHandler()

	r.Group(func(r chi.Router) {
		r.Use(withSession)

		r.Get("/v1/auth/csrf", sessionHandler.CSRF)
		r.Post("/v1/auth/logout", sessionHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(rateLimiters["auth"])
			r.Post("/v1/auth/signup", passwordHandler.Signup)
			r.Post("/v1/auth/login", passwordHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(rateLimiters["recovery"])
			r.Post("/v1/auth/recovery/request-otp", recoveryHandler.RequestOTP)
			r.Post("/v1/auth/recovery/verify-otp", recoveryHandler.VerifyOTP)
			r.Post("/v1/auth/recovery/reset-password", recoveryHandler.ResetPassword)
		})

		if cfg.GoogleProvider != nil {
			googleHandler := google.NewHandler(cfg.Logger, cfg.GoogleProvider, cfg.Engine, cfg.ProfilePath, cfg.LoginPath)
			r.Get("/v1/auth/google", googleHandler.Start)
			r.Get("/v1/auth/google/callback", googleHandler.Callback)
		}

		r.Group(func(r chi.Router) {
			r.Use(rateLimiters["profile"])
			r.Get("/v1/me", meHandler.GetMe)
		})
	})

	return r
}
