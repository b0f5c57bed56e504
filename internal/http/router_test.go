package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/aireap/aireap-auth/internal/auth"
	"github.com/aireap/aireap-auth/internal/config"
	"github.com/aireap/aireap-auth/internal/httputil"
	"github.com/aireap/aireap-auth/internal/repository"
	"github.com/aireap/aireap-auth/internal/session"
)

type fakeNotifier struct {
	mu       sync.Mutex
	lastCode string
	lastTo   string
}

func (f *fakeNotifier) SendOTP(_ context.Context, to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTo = to
	f.lastCode = code
	return nil
}

func (f *fakeNotifier) last() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastTo, f.lastCode
}

type fakeProvider struct {
	identity *auth.Identity
}

func (f *fakeProvider) AuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/v2/auth?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*auth.Identity, error) {
	return f.identity, nil
}

func newTestServer(t *testing.T, provider *fakeProvider) (*httptest.Server, *http.Client, *fakeNotifier) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemoryStore()
	sessions := session.NewManager(session.DefaultConfig())
	notifier := &fakeNotifier{}
	engine := auth.NewEngine(auth.Config{BcryptCost: bcrypt.MinCost}, store, sessions, notifier, logger)

	cfg := RouterConfig{
		Logger:          logger,
		Engine:          engine,
		Sessions:        sessions,
		CookieConfig:    httputil.DefaultCookieConfig(),
		MaxRequestBytes: 1 << 20,
		RateLimit:       config.RateLimitConfig{},
		SecurityHeaders: config.SecurityHeadersConfig{},
		ProfilePath:     "/profile",
		LoginPath:       "/login",
	}
	if provider != nil {
		cfg.GoogleProvider = provider
	}

	srv := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, client, notifier
}

func fetchCSRF(t *testing.T, srv *httptest.Server, client *http.Client) string {
	t.Helper()
	resp, err := client.Get(srv.URL + "/v1/auth/csrf")
	if err != nil {
		t.Fatalf("csrf fetch: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("csrf decode: %v", err)
	}
	if body["csrf_token"] == "" {
		t.Fatal("empty csrf token")
	}
	return body["csrf_token"]
}

func postForm(t *testing.T, srv *httptest.Server, client *http.Client, path string, form url.Values) httputil.Envelope {
	t.Helper()
	resp, err := client.Post(srv.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var env httputil.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("POST %s decode: %v", path, err)
	}
	return env
}

func signup(t *testing.T, srv *httptest.Server, client *http.Client, name, email, password string) httputil.Envelope {
	t.Helper()
	token := fetchCSRF(t, srv, client)
	return postForm(t, srv, client, "/v1/auth/signup", url.Values{
		"name":       {name},
		"email":      {email},
		"password":   {password},
		"csrf_token": {token},
	})
}

func TestHealth(t *testing.T) {
	srv, client, _ := newTestServer(t, nil)

	resp, err := client.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSignupLoginMe(t *testing.T) {
	srv, client, _ := newTestServer(t, nil)

	env := signup(t, srv, client, "Ann Lee", "ann@example.com", "Str0ng!pw")
	if env.Type != "success" || env.Redirect != "profile" {
		t.Fatalf("signup envelope = %+v", env)
	}

	resp, err := client.Get(srv.URL + "/v1/me")
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, want 200", resp.StatusCode)
	}
	var me map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		t.Fatalf("me decode: %v", err)
	}
	if me["email"] != "ann@example.com" {
		t.Errorf("me email = %v", me["email"])
	}
	if _, ok := me["password_hash"]; ok {
		t.Error("snapshot leaks password hash")
	}

	token := fetchCSRF(t, srv, client)
	env = postForm(t, srv, client, "/v1/auth/login", url.Values{
		"email":      {"ann@example.com"},
		"password":   {"Str0ng!pw"},
		"csrf_token": {token},
	})
	if env.Type != "success" || env.Msg != "Login successful!" {
		t.Errorf("login envelope = %+v", env)
	}
}

func TestSignupRejectsMissingCSRF(t *testing.T) {
	srv, client, _ := newTestServer(t, nil)

	fetchCSRF(t, srv, client) // establish a session, discard the token
	env := postForm(t, srv, client, "/v1/auth/signup", url.Values{
		"name":     {"Ann Lee"},
		"email":    {"ann@example.com"},
		"password": {"Str0ng!pw"},
	})
	if env.Type != "error" || env.Msg != "Invalid CSRF token!" {
		t.Errorf("envelope = %+v", env)
	}

	// The account must not exist.
	token := fetchCSRF(t, srv, client)
	env = postForm(t, srv, client, "/v1/auth/login", url.Values{
		"email":      {"ann@example.com"},
		"password":   {"Str0ng!pw"},
		"csrf_token": {token},
	})
	if env.Msg != "Email not found!" {
		t.Errorf("login after rejected signup = %+v", env)
	}
}

func TestMeUnauthenticated(t *testing.T) {
	srv, client, _ := newTestServer(t, nil)

	resp, err := client.Get(srv.URL + "/v1/me")
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLogout(t *testing.T) {
	srv, client, _ := newTestServer(t, nil)

	signup(t, srv, client, "Ann Lee", "ann@example.com", "Str0ng!pw")

	env := postForm(t, srv, client, "/v1/auth/logout", url.Values{})
	if env.Type != "success" {
		t.Fatalf("logout envelope = %+v", env)
	}

	resp, err := client.Get(srv.URL + "/v1/me")
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me after logout = %d, want 401", resp.StatusCode)
	}
}

func TestRecoveryFlow(t *testing.T) {
	srv, client, notifier := newTestServer(t, nil)

	signup(t, srv, client, "Ann Lee", "ann@example.com", "Str0ng!pw")
	postForm(t, srv, client, "/v1/auth/logout", url.Values{})

	token := fetchCSRF(t, srv, client)
	env := postForm(t, srv, client, "/v1/auth/recovery/request-otp", url.Values{
		"recovery-mail": {"ann@example.com"},
		"csrf_token":    {token},
	})
	if env.Type != "success" || env.Email != "ann@example.com" {
		t.Fatalf("request-otp envelope = %+v", env)
	}

	to, code := notifier.last()
	if to != "ann@example.com" || len(code) != 6 {
		t.Fatalf("notifier got to=%q code=%q", to, code)
	}

	// The session id was rotated; the jar follows the fresh cookie and the
	// CSRF token survives the rotation.
	env = postForm(t, srv, client, "/v1/auth/recovery/verify-otp", url.Values{
		"otp":        {code},
		"csrf_token": {token},
	})
	if env.Type != "success" || env.Title != "Verified" {
		t.Fatalf("verify-otp envelope = %+v", env)
	}

	env = postForm(t, srv, client, "/v1/auth/recovery/reset-password", url.Values{
		"password":         {"N3w!passwd"},
		"confirm_password": {"N3w!passwd"},
		"csrf_token":       {token},
	})
	if env.Type != "success" || env.Msg != "Your password has been reset successfully!" {
		t.Fatalf("reset envelope = %+v", env)
	}

	// Old password is dead, new one works.
	token = fetchCSRF(t, srv, client)
	env = postForm(t, srv, client, "/v1/auth/login", url.Values{
		"email":      {"ann@example.com"},
		"password":   {"Str0ng!pw"},
		"csrf_token": {token},
	})
	if env.Msg != "Incorrect password!" {
		t.Errorf("old password login = %+v", env)
	}
	env = postForm(t, srv, client, "/v1/auth/login", url.Values{
		"email":      {"ann@example.com"},
		"password":   {"N3w!passwd"},
		"csrf_token": {token},
	})
	if env.Type != "success" {
		t.Errorf("new password login = %+v", env)
	}
}

func TestRecoveryVerifyAlertEnvelope(t *testing.T) {
	srv, client, _ := newTestServer(t, nil)

	signup(t, srv, client, "Ann Lee", "ann@example.com", "Str0ng!pw")
	token := fetchCSRF(t, srv, client)
	postForm(t, srv, client, "/v1/auth/recovery/request-otp", url.Values{
		"recovery-mail": {"ann@example.com"},
		"csrf_token":    {token},
	})

	env := postForm(t, srv, client, "/v1/auth/recovery/verify-otp", url.Values{
		"otp":        {"12345"},
		"csrf_token": {token},
	})
	if env.Type != "alert" || env.Title != "Invalid OTP Format" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestGoogleFlow(t *testing.T) {
	provider := &fakeProvider{identity: &auth.Identity{
		GoogleID: "g-123",
		Email:    "bob@example.com",
		Name:     "Bob Roy",
		Picture:  "https://pic.example/bob.png",
	}}
	srv, client, _ := newTestServer(t, provider)

	resp, err := client.Get(srv.URL + "/v1/auth/google")
	if err != nil {
		t.Fatalf("google start: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("start status = %d, want 302", resp.StatusCode)
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("start location: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatal("no state in redirect")
	}

	resp, err = client.Get(srv.URL + "/v1/auth/google/callback?code=fake-code&state=" + url.QueryEscape(state))
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/profile" {
		t.Fatalf("callback status = %d location = %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, err = client.Get(srv.URL + "/v1/me")
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	defer resp.Body.Close()
	var me map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		t.Fatalf("me decode: %v", err)
	}
	if me["email"] != "bob@example.com" || me["login_type"] != "google" {
		t.Errorf("me = %v", me)
	}
}

func TestGoogleCallbackRejectsUnknownState(t *testing.T) {
	provider := &fakeProvider{identity: &auth.Identity{GoogleID: "g-1", Email: "x@example.com", Name: "X"}}
	srv, client, _ := newTestServer(t, provider)

	resp, err := client.Get(srv.URL + "/v1/auth/google/callback?code=fake-code&state=bogus")
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Errorf("status = %d location = %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}
