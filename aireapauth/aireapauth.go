// Package aireapauth lets a host application embed the auth service as a
// library instead of running the standalone server.
//
// Setup:
//
//  1. Run migrations from migrations/ folder using your preferred tool
//  2. Create an instance and mount its routes
//
// Basic usage:
//
//	db, _ := sql.Open("postgres", "postgres://localhost/myapp?sslmode=disable")
//
//	svc, err := aireapauth.New(aireapauth.Config{DB: db})
//	if err != nil {
//	    log.Fatal(err) // Will fail if migrations haven't been run
//	}
//
//	r := chi.NewRouter()
//	r.Mount("/", svc.Router())
//	http.ListenAndServe(":8080", r)
package aireapauth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aireap/aireap-auth/internal/auth"
	"github.com/aireap/aireap-auth/internal/config"
	httpserver "github.com/aireap/aireap-auth/internal/http"
	"github.com/aireap/aireap-auth/internal/http/features/google"
	"github.com/aireap/aireap-auth/internal/httputil"
	"github.com/aireap/aireap-auth/internal/notification"
	"github.com/aireap/aireap-auth/internal/repository"
	"github.com/aireap/aireap-auth/internal/session"
)

// Config holds the configuration for the embedded auth service.
type Config struct {
	// DB is the database connection (required).
	DB *sql.DB

	// SessionTTL is the idle session lifetime (default: 24 minutes).
	SessionTTL time.Duration

	// RecoverySessionTTL is the idle lifetime while a password recovery is
	// in progress (default: 30 minutes).
	RecoverySessionTTL time.Duration

	// OTPTTL is the recovery-code lifetime (default: 5 minutes).
	OTPTTL time.Duration

	// BcryptCost is the password hashing cost (default: 12).
	BcryptCost int

	// SMTP enables outbound recovery mail (optional; codes are logged
	// when absent).
	SMTP *SMTPConfig

	// Google enables Google OAuth authentication (optional).
	Google *GoogleConfig

	// Logger is the structured logger (default: slog JSON to stdout).
	Logger *slog.Logger
}

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// GoogleConfig holds Google OAuth configuration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Auth is the embedded auth service instance.
type Auth struct {
	config   Config
	engine   *auth.Engine
	sessions *session.Manager
	provider google.Provider
}

// New creates an embedded auth service. Returns an error if the users table
// does not exist; run migrations first (see migrations/ folder).
func New(cfg Config) (*Auth, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := validateSchema(cfg.DB); err != nil {
		return nil, err
	}

	usersRepo := repository.NewUsersRepository(cfg.DB)
	sessions := session.NewManager(session.Config{
		TTL:         cfg.SessionTTL,
		RecoveryTTL: cfg.RecoverySessionTTL,
	})

	var notifier auth.Notifier
	if cfg.SMTP != nil {
		notifier = notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		})
	} else {
		notifier = logNotifier{logger: cfg.Logger}
	}

	engine := auth.NewEngine(auth.Config{
		BcryptCost: cfg.BcryptCost,
		OTPTTL:     cfg.OTPTTL,
	}, usersRepo, sessions, notifier, cfg.Logger)

	var provider google.Provider
	if cfg.Google != nil {
		provider = auth.NewGoogleService(auth.GoogleConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURI:  cfg.Google.RedirectURI,
		})
	}

	return &Auth{
		config:   cfg,
		engine:   engine,
		sessions: sessions,
		provider: provider,
	}, nil
}

// Router returns a chi router with all auth routes. Mount this on your main
// router:
//
//	r := chi.NewRouter()
//	r.Mount("/", svc.Router())
//
// Routes:
//
//	GET  /v1/auth/csrf                     - CSRF token handshake
//	POST /v1/auth/signup                   - Register with email/password
//	POST /v1/auth/login                    - Login with email/password
//	POST /v1/auth/logout                   - Destroy session
//	POST /v1/auth/recovery/request-otp     - Request recovery code
//	POST /v1/auth/recovery/verify-otp      - Verify recovery code
//	POST /v1/auth/recovery/reset-password  - Set new password
//	GET  /v1/auth/google                   - Start Google OAuth (if configured)
//	GET  /v1/auth/google/callback          - Google OAuth callback (if configured)
//	GET  /v1/me                            - Current user snapshot
func (a *Auth) Router() chi.Router {
	r := chi.NewRouter()
	r.Mount("/", httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          a.config.Logger,
		Engine:          a.engine,
		Sessions:        a.sessions,
		GoogleProvider:  a.provider,
		CookieConfig:    httputil.DefaultCookieConfig(),
		MaxRequestBytes: 1 << 20,
		RateLimit:       config.RateLimitConfig{},
		SecurityHeaders: config.SecurityHeadersConfig{},
		ProfilePath:     "/profile",
		LoginPath:       "/login",
	}))
	return r
}

// Handler returns an http.Handler for mounting with http.StripPrefix:
//
//	mux := http.NewServeMux()
//	mux.Handle("/auth/", http.StripPrefix("/auth", svc.Handler()))
func (a *Auth) Handler() http.Handler {
	return a.Router()
}

// Sessions returns the session manager for advanced usage.
func (a *Auth) Sessions() *session.Manager {
	return a.sessions
}

// HealthHandler returns a simple health check handler.
func (a *Auth) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) SendOTP(ctx context.Context, to, code string) error {
	n.logger.Warn("SMTP not configured, logging otp instead", "to", to, "code", code)
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.DB == nil {
		return errors.New("aireapauth: DB is required")
	}
	if cfg.Google != nil {
		if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
			return errors.New("aireapauth: Google ClientID and ClientSecret are required when Google is configured")
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Minute
	}
	if cfg.RecoverySessionTTL == 0 {
		cfg.RecoverySessionTTL = 30 * time.Minute
	}
	if cfg.OTPTTL == 0 {
		cfg.OTPTTL = 5 * time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = auth.DefaultBcryptCost
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
}

// validateSchema checks that the users table exists.
func validateSchema(db *sql.DB) error {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	`

	var name string
	err := db.QueryRow(query, "users").Scan(&name)
	if err == sql.ErrNoRows {
		return errors.New("aireapauth: missing table 'users' - run migrations first (see migrations/ folder)")
	}
	if err != nil {
		return fmt.Errorf("aireapauth: failed to check schema: %w", err)
	}
	return nil
}
