package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aireap/aireap-auth/internal/httputil"
	"github.com/aireap/aireap-auth/internal/session"
)

func TestSession_CreatesAndReusesSession(t *testing.T) {
	manager := session.NewManager(session.DefaultConfig())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seen []string
	handler := Session(manager, httputil.DefaultCookieConfig(), logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				t.Fatal("no session on context")
			}
			seen = append(seen, sess.ID)
			w.WriteHeader(http.StatusOK)
		}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	cookies := w.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == httputil.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("no session cookie issued")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}

	req := httptest.NewRequest("GET", "/test", nil)
	req.AddCookie(sessionCookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(seen) != 2 || seen[0] != seen[1] {
		t.Errorf("session ids = %v, want the same id twice", seen)
	}
}

func TestSession_UnknownCookieGetsFreshSession(t *testing.T) {
	manager := session.NewManager(session.DefaultConfig())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := Session(manager, httputil.DefaultCookieConfig(), logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := SessionFromContext(r.Context())
			if sess.ID == "stale-id" {
				t.Error("stale session id reused")
			}
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: httputil.SessionCookieName, Value: "stale-id"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
}
