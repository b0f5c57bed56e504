// Package auth implements the authentication state machine: signup, login,
// Google OAuth and OTP-based password recovery. The engine is a pure
// orchestrator over the credential store, the session manager and the
// notifier; every method takes the caller's session explicitly so the flows
// can be driven without a live web server.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aireap/aireap-auth/internal/domain"
	"github.com/aireap/aireap-auth/internal/session"
	"github.com/aireap/aireap-auth/internal/validate"
)

// Store is the credential store consumed by the engine. Implementations must
// enforce email uniqueness atomically and write the OTP triple as one unit.
type Store interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByEmailOrGoogleID(ctx context.Context, email, googleID string) (*domain.User, error)
	FindByEmailAndOTP(ctx context.Context, email, code string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	LinkGoogle(ctx context.Context, email, googleID, picture string) error
	SetOTP(ctx context.Context, email, code string, expiry time.Time) error
	MarkOTPUsed(ctx context.Context, id int64) error
	ClearOTP(ctx context.Context, id int64) error
}

// Notifier delivers recovery codes out of band.
type Notifier interface {
	SendOTP(ctx context.Context, to, code string) error
}

// Config holds engine tunables.
type Config struct {
	BcryptCost int
	OTPTTL     time.Duration
}

// Engine orchestrates the auth flows.
type Engine struct {
	store    Store
	sessions *session.Manager
	notifier Notifier
	logger   *slog.Logger
	config   Config
}

// NewEngine creates an auth engine.
func NewEngine(cfg Config, store Store, sessions *session.Manager, notifier Notifier, logger *slog.Logger) *Engine {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultBcryptCost
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = DefaultOTPTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    store,
		sessions: sessions,
		notifier: notifier,
		logger:   logger,
		config:   cfg,
	}
}

// Result is the success payload of a flow, rendered into the JSON envelope
// at the handler boundary.
type Result struct {
	Title    string
	Msg      string
	Redirect string
	Email    string
}

// SignupRequest carries the signup form fields.
type SignupRequest struct {
	Name      string
	Email     string
	Password  string
	CSRFToken string
}

// Signup registers a new email/password account and authenticates the
// session. Validation short-circuits on the first failing field.
func (e *Engine) Signup(ctx context.Context, sess *session.Session, req SignupRequest) (*Result, error) {
	if !sess.CheckCSRF(req.CSRFToken) {
		return nil, domain.Flow(domain.KindCSRF, "", "Invalid CSRF token!")
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)

	if name == "" {
		return nil, domain.Flow(domain.KindValidation, "name", "Name is required!")
	}
	if !validate.Name(name) {
		return nil, domain.Flow(domain.KindValidation, "name", "Name must be 2-50 characters and contain only letters, spaces, hyphens, or apostrophes.")
	}
	if email == "" {
		return nil, domain.Flow(domain.KindValidation, "email", "Email is required!")
	}
	if !validate.Email(email) {
		return nil, domain.Flow(domain.KindValidation, "email", "Invalid email format!")
	}
	if password == "" {
		return nil, domain.Flow(domain.KindValidation, "password", "Password is required!")
	}
	if !validate.SignupPassword(password) {
		return nil, domain.Flow(domain.KindValidation, "password", "Password must be at least 8 characters long and include uppercase, lowercase, number, and special character.")
	}

	// Pre-check for user-facing messaging; the store still enforces
	// uniqueness atomically below.
	if _, err := e.store.FindByEmail(ctx, email); err == nil {
		return nil, domain.Flow(domain.KindDuplicateEmail, "email", "Email already exists!")
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		e.logger.Error("signup lookup failed", "error", err)
		return nil, domain.StoreFailure()
	}

	hash, err := HashPassword(password, e.config.BcryptCost)
	if err != nil {
		e.logger.Error("password hashing failed", "error", err)
		return nil, domain.StoreFailure()
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: &hash,
		LoginType:    domain.LoginTypeEmail,
		Picture:      domain.DefaultPicture,
		CreatedAt:    time.Now(),
	}
	if err := e.store.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.Flow(domain.KindDuplicateEmail, "email", "Email already exists!")
		}
		e.logger.Error("signup insert failed", "error", err)
		return nil, domain.StoreFailure()
	}

	e.sessions.Update(sess, func(s *session.Session) {
		s.User = user.Snapshot()
	})

	return &Result{Msg: "Your account has been created successfully!", Redirect: "profile"}, nil
}

// LoginRequest carries the login form fields.
type LoginRequest struct {
	Email     string
	Password  string
	CSRFToken string
}

// Login authenticates an email/password account. Records bound to an
// external provider are rejected before any password comparison.
func (e *Engine) Login(ctx context.Context, sess *session.Session, req LoginRequest) (*Result, error) {
	if !sess.CheckCSRF(req.CSRFToken) {
		return nil, domain.Flow(domain.KindCSRF, "general", "Invalid CSRF token!")
	}

	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)

	if email == "" {
		return nil, domain.Flow(domain.KindValidation, "email", "Email is required!")
	}
	if !validate.Email(email) {
		return nil, domain.Flow(domain.KindValidation, "email", "Invalid or non-existent email domain!")
	}
	if password == "" {
		return nil, domain.Flow(domain.KindValidation, "password", "Password is required!")
	}
	if !validate.LoginPassword(password) {
		return nil, domain.Flow(domain.KindValidation, "password", "Invalid password format!")
	}

	user, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Flow(domain.KindNotFound, "email", "Email not found!")
		}
		e.logger.Error("login lookup failed", "error", err)
		return nil, domain.StoreFailure()
	}

	if user.LoginType != domain.LoginTypeEmail {
		provider := titleCase(user.LoginType)
		msg := fmt.Sprintf("This account was created with %s. Please use %s login instead.", provider, provider)
		return nil, domain.Flow(domain.KindWrongProvider, "email", msg)
	}

	if user.PasswordHash == nil || !VerifyPassword(password, *user.PasswordHash) {
		return nil, domain.Flow(domain.KindIncorrectPassword, "password", "Incorrect password!")
	}

	e.sessions.Update(sess, func(s *session.Session) {
		s.User = user.Snapshot()
	})

	return &Result{Msg: "Login successful!", Redirect: "profile"}, nil
}

// GoogleCallback resolves a verified Google identity to a user record,
// linking or creating one as needed, and authenticates the session. This is
// a redirect-based external callback; there is no same-origin CSRF token to
// check here — the OAuth state parameter guards this path instead.
func (e *Engine) GoogleCallback(ctx context.Context, sess *session.Session, identity *Identity) (*domain.SessionUser, error) {
	user, err := e.store.FindByEmailOrGoogleID(ctx, identity.Email, identity.GoogleID)
	switch {
	case err == nil:
		if !user.HasGoogleID() {
			// Email-type account with a matching address: link the
			// identity and promote the record to google login. The
			// transition is permanent.
			if err := e.store.LinkGoogle(ctx, user.Email, identity.GoogleID, identity.Picture); err != nil {
				return nil, fmt.Errorf("failed to link google identity: %w", err)
			}
			user.GoogleID = &identity.GoogleID
			user.Picture = identity.Picture
			user.LoginType = domain.LoginTypeGoogle
		}
	case errors.Is(err, domain.ErrUserNotFound):
		user = &domain.User{
			Name:      identity.Name,
			Email:     identity.Email,
			LoginType: domain.LoginTypeGoogle,
			GoogleID:  &identity.GoogleID,
			Picture:   identity.Picture,
			CreatedAt: time.Now(),
		}
		if err := e.store.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create google user: %w", err)
		}
	default:
		return nil, fmt.Errorf("google callback lookup failed: %w", err)
	}

	snapshot := user.Snapshot()
	e.sessions.Update(sess, func(s *session.Session) {
		s.User = snapshot
	})
	return snapshot, nil
}

// RequestOTPRequest carries the recovery-mail form fields.
type RequestOTPRequest struct {
	Email     string
	CSRFToken string
}

// RequestOTP issues a fresh recovery code for an email account, binds the
// recovery flow to the session and dispatches the code. A delivery failure
// is reported without rolling back the stored code.
func (e *Engine) RequestOTP(ctx context.Context, sess *session.Session, req RequestOTPRequest) (*Result, error) {
	if !sess.CheckCSRF(req.CSRFToken) {
		return nil, domain.Flow(domain.KindCSRF, "", "Invalid request (CSRF verification failed).")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, domain.Flow(domain.KindValidation, "", "Email is required!")
	}
	if !validate.Email(email) {
		return nil, domain.Flow(domain.KindValidation, "", "Invalid email address!")
	}

	user, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Flow(domain.KindNotFound, "", "No account found with this email.")
		}
		e.logger.Error("otp request lookup failed", "error", err)
		return nil, domain.StoreFailure()
	}

	if strings.EqualFold(user.LoginType, domain.LoginTypeGoogle) {
		return nil, domain.Flow(domain.KindWrongProvider, "", "This account was created with Google login. Please sign in using Google.")
	}

	code, err := GenerateOTP()
	if err != nil {
		e.logger.Error("otp generation failed", "error", err)
		return nil, domain.StoreFailure()
	}

	expiry := time.Now().Add(e.config.OTPTTL)
	if err := e.store.SetOTP(ctx, email, code, expiry); err != nil {
		e.logger.Error("otp save failed", "error", err)
		return nil, domain.Flow(domain.KindStore, "", "Failed to save OTP. Try again later.")
	}

	e.sessions.Update(sess, func(s *session.Session) {
		s.ResetEmail = email
		s.OTPVerified = false
	})
	e.sessions.RotateID(sess)

	if err := e.notifier.SendOTP(ctx, email, code); err != nil {
		e.logger.Error("otp delivery failed", "error", err, "email", email)
		return nil, domain.Flow(domain.KindDelivery, "", "Email could not be sent. Error: "+err.Error())
	}

	e.logger.Info("otp issued", "user_id", user.ID)
	return &Result{Msg: "OTP has been sent to your email!", Email: email}, nil
}

// VerifyOTPRequest carries the otp form fields.
type VerifyOTPRequest struct {
	Code      string
	CSRFToken string
}

// VerifyOTP consumes a recovery code. The used-check precedes the expiry
// check: a used-but-expired code reports "already used", not "expired".
func (e *Engine) VerifyOTP(ctx context.Context, sess *session.Session, req VerifyOTPRequest) (*Result, error) {
	if !sess.CheckCSRF(req.CSRFToken) {
		return nil, domain.FlowTitled(domain.KindCSRF, "Security Warning", "Invalid or missing CSRF token!")
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, domain.FlowAlert(domain.KindInvalidOTPFormat, "Missing Field", "OTP is required!")
	}
	if !ValidOTPFormat(code) {
		return nil, domain.FlowAlert(domain.KindInvalidOTPFormat, "Invalid OTP Format", "OTP must be exactly 6 digits!")
	}

	if sess.ResetEmail == "" {
		return nil, domain.FlowTitled(domain.KindSessionExpired, "Session Expired", "Your session has expired. Please request a new OTP.")
	}

	user, err := e.store.FindByEmailAndOTP(ctx, sess.ResetEmail, code)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.FlowAlert(domain.KindInvalidOTP, "Invalid OTP", "The OTP you entered is incorrect!")
		}
		e.logger.Error("otp verify lookup failed", "error", err)
		return nil, domain.StoreFailure()
	}

	if user.OTPUsed {
		return nil, domain.FlowAlert(domain.KindAlreadyUsed, "Already Used", "This OTP has already been used!")
	}
	if user.OTPExpiry == nil || time.Now().After(*user.OTPExpiry) {
		return nil, domain.FlowTitled(domain.KindExpired, "Expired OTP", "This OTP has expired. Please request a new one!")
	}

	if err := e.store.MarkOTPUsed(ctx, user.ID); err != nil {
		e.logger.Error("otp consume failed", "error", err)
		return nil, domain.StoreFailure()
	}

	e.sessions.Update(sess, func(s *session.Session) {
		s.OTPVerified = true
	})

	return &Result{Title: "Verified", Msg: "OTP verified successfully!"}, nil
}

// ResetPasswordRequest carries the reset form fields.
type ResetPasswordRequest struct {
	Password        string
	ConfirmPassword string
	CSRFToken       string
}

// ResetPassword completes the recovery flow. It is gated on a verified OTP;
// on success the stored OTP state and the session's recovery state are
// cleared.
func (e *Engine) ResetPassword(ctx context.Context, sess *session.Session, req ResetPasswordRequest) (*Result, error) {
	if !sess.CheckCSRF(req.CSRFToken) {
		return nil, domain.Flow(domain.KindCSRF, "", "Invalid CSRF token!")
	}

	if !sess.OTPVerified || sess.ResetEmail == "" {
		return nil, domain.FlowTitled(domain.KindSessionExpired, "Session Expired", "Your session has expired. Please request a new OTP.")
	}

	password := strings.TrimSpace(req.Password)
	confirm := strings.TrimSpace(req.ConfirmPassword)

	if password == "" {
		return nil, domain.Flow(domain.KindValidation, "password", "Password is required!")
	}
	if !validate.SignupPassword(password) {
		return nil, domain.Flow(domain.KindValidation, "password", "Password must be at least 8 characters long and include uppercase, lowercase, number, and special character.")
	}
	if password != confirm {
		return nil, domain.Flow(domain.KindValidation, "confirm_password", "Passwords do not match!")
	}

	user, err := e.store.FindByEmail(ctx, sess.ResetEmail)
	if err != nil {
		e.logger.Error("reset lookup failed", "error", err)
		return nil, domain.StoreFailure()
	}

	hash, err := HashPassword(password, e.config.BcryptCost)
	if err != nil {
		e.logger.Error("password hashing failed", "error", err)
		return nil, domain.StoreFailure()
	}

	if err := e.store.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		e.logger.Error("password update failed", "error", err)
		return nil, domain.StoreFailure()
	}
	if err := e.store.ClearOTP(ctx, user.ID); err != nil {
		e.logger.Error("otp clear failed", "error", err)
		return nil, domain.StoreFailure()
	}

	e.sessions.Update(sess, func(s *session.Session) {
		s.ResetEmail = ""
		s.OTPVerified = false
	})

	e.logger.Info("password reset completed", "user_id", user.ID)
	return &Result{Msg: "Your password has been reset successfully!"}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
