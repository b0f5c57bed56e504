// Package session implements the per-browser server-side session: an opaque
// identifier carried in a cookie, a CSRF token, the authenticated user
// snapshot and the transient password-recovery state.
package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/aireap/aireap-auth/internal/domain"
)

// csrfTokenBytes is the entropy of the CSRF token; encoded as 64 hex chars.
const csrfTokenBytes = 32

// Session holds the state bound to one browser session. Fields are mutated
// only through the Manager, which serializes access per session.
type Session struct {
	ID          string
	CSRFToken   string
	User        *domain.SessionUser
	ResetEmail  string
	OTPVerified bool
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the session has passed its deadline.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Authenticated reports whether a user snapshot is bound to the session.
func (s *Session) Authenticated() bool {
	return s.User != nil
}

// EnsureCSRFToken generates the session's CSRF token if absent. Calling it
// again is a no-op; the token lives as long as the session.
func (s *Session) EnsureCSRFToken() error {
	if s.CSRFToken != "" {
		return nil
	}
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("failed to generate csrf token: %w", err)
	}
	s.CSRFToken = hex.EncodeToString(b)
	return nil
}

// CheckCSRF compares a submitted token against the session's token. Absence
// of either side and a mismatch are indistinguishable to the caller.
func (s *Session) CheckCSRF(submitted string) bool {
	if s.CSRFToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.CSRFToken), []byte(submitted)) == 1
}
