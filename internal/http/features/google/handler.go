// Package google handles the Google OAuth endpoints. The redirect-based
// callback is guarded by the OAuth state parameter rather than the form CSRF
// token.
package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aireap/aireap-auth/internal/auth"
	"github.com/aireap/aireap-auth/internal/http/middleware"
	"github.com/aireap/aireap-auth/internal/httputil"
)

// stateTTL bounds how long a started OAuth round-trip stays valid.
const stateTTL = 10 * time.Minute

// Provider is the OAuth provider surface the handler needs.
type Provider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.Identity, error)
}

// Handler handles Google OAuth endpoints.
type Handler struct {
	logger      *slog.Logger
	provider    Provider
	engine      *auth.Engine
	states      *stateStore
	successPath string
	failurePath string
}

// NewHandler creates a new Google handler. Successful callbacks redirect to
// successPath, failed ones to failurePath.
func NewHandler(logger *slog.Logger, provider Provider, engine *auth.Engine, successPath, failurePath string) *Handler {
	return &Handler{
		logger:      logger,
		provider:    provider,
		engine:      engine,
		states:      newStateStore(),
		successPath: successPath,
		failurePath: failurePath,
	}
}

// stateStore holds issued OAuth states. In-memory, single replica only.
type stateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

func newStateStore() *stateStore {
	s := &stateStore{states: make(map[string]time.Time)}
	go s.cleanup()
	return s
}

func (s *stateStore) Put(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = time.Now().Add(stateTTL)
}

// Take consumes the state, reporting whether it was live.
func (s *stateStore) Take(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)
	return time.Now().Before(expiry)
}

func (s *stateStore) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for state, expiry := range s.states {
			if now.After(expiry) {
				delete(s.states, state)
			}
		}
		s.mu.Unlock()
	}
}

// Start begins the OAuth flow.
// GET /v1/auth/google
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		h.logger.Error("failed to generate oauth state", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again later!")
		return
	}
	state := base64.RawURLEncoding.EncodeToString(buf)
	h.states.Put(state)

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusFound)
}

// Callback completes the OAuth flow and authenticates the session.
// GET /v1/auth/google/callback?code=...&state=...
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("google oauth denied", "error", errParam)
		http.Redirect(w, r, h.failurePath, http.StatusFound)
		return
	}

	if !h.states.Take(r.URL.Query().Get("state")) {
		h.logger.Warn("google oauth state mismatch", "ip", r.RemoteAddr)
		http.Redirect(w, r, h.failurePath, http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, h.failurePath, http.StatusFound)
		return
	}

	identity, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google code exchange failed", "error", err)
		http.Redirect(w, r, h.failurePath, http.StatusFound)
		return
	}

	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again later!")
		return
	}

	if _, err := h.engine.GoogleCallback(r.Context(), sess, identity); err != nil {
		h.logger.Error("google sign-in failed", "error", err)
		http.Redirect(w, r, h.failurePath, http.StatusFound)
		return
	}

	http.Redirect(w, r, h.successPath, http.StatusFound)
}
