package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aireap/aireap-auth/internal/auth"
	"github.com/aireap/aireap-auth/internal/config"
	httpserver "github.com/aireap/aireap-auth/internal/http"
	"github.com/aireap/aireap-auth/internal/http/features/google"
	"github.com/aireap/aireap-auth/internal/httputil"
	"github.com/aireap/aireap-auth/internal/notification"
	"github.com/aireap/aireap-auth/internal/repository"
	"github.com/aireap/aireap-auth/internal/session"
)

// logNotifier stands in for the SMTP relay in local development: the code is
// written to the log instead of being mailed.
type logNotifier struct {
	logger *slog.Logger
}

func (n *logNotifier) SendOTP(ctx context.Context, to, code string) error {
	n.logger.Warn("SMTP not configured, logging otp instead", "to", to, "code", code)
	return nil
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	usersRepo := repository.NewUsersRepository(db)

	sessions := session.NewManager(session.Config{
		TTL:         cfg.SessionTTL,
		RecoveryTTL: cfg.RecoverySessionTTL,
	})

	var notifier auth.Notifier
	if cfg.HasSMTP() {
		notifier = notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
		logger.Info("email service enabled")
	} else {
		notifier = &logNotifier{logger: logger}
		logger.Warn("SMTP not configured, otp codes will be logged")
	}

	engine := auth.NewEngine(auth.Config{
		BcryptCost: cfg.BcryptCost,
		OTPTTL:     cfg.OTPTTL,
	}, usersRepo, sessions, notifier, logger)

	var googleProvider google.Provider
	if cfg.HasGoogleOAuth() {
		googleProvider = auth.NewGoogleService(auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURI:  cfg.GoogleRedirectURI,
		})
		logger.Info("Google OAuth enabled")
	}

	cookieConfig := httputil.DefaultCookieConfig()
	cookieConfig.Secure = cfg.CookieSecure

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          logger,
		Engine:          engine,
		Sessions:        sessions,
		GoogleProvider:  googleProvider,
		CookieConfig:    cookieConfig,
		MaxRequestBytes: cfg.MaxRequestBytes,
		RateLimit:       cfg.RateLimit,
		SecurityHeaders: cfg.SecurityHeaders,
		ProfilePath:     "/profile",
		LoginPath:       "/login",
	})

	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
