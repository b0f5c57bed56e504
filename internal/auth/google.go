package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	googleAuthURL   = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL  = "https://oauth2.googleapis.com/token"
	googleIssuer    = "https://accounts.google.com"
	googleIssuerAlt = "accounts.google.com"
)

// Identity is a verified external identity returned by the provider after a
// code exchange.
type Identity struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// IdentityClient exchanges an OAuth authorization code for a verified
// identity. GoogleService is the production implementation.
type IdentityClient interface {
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// GoogleConfig holds Google OAuth configuration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// GoogleService talks to Google's OAuth endpoints.
type GoogleService struct {
	config     GoogleConfig
	httpClient *http.Client
}

// NewGoogleService creates a new Google client.
func NewGoogleService(config GoogleConfig) *GoogleService {
	return &GoogleService{
		config:     config,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthURL generates the Google authorization URL for the given state.
func (s *GoogleService) AuthURL(state string) string {
	params := url.Values{
		"client_id":     {s.config.ClientID},
		"redirect_uri":  {s.config.RedirectURI},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
	}
	return googleAuthURL + "?" + params.Encode()
}

// googleClaims are the ID-token claims this service consumes.
type googleClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Exchange trades an authorization code for tokens and extracts the identity
// from the ID token.
func (s *GoogleService) Exchange(ctx context.Context, code string) (*Identity, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {s.config.ClientID},
		"client_secret": {s.config.ClientSecret},
		"redirect_uri":  {s.config.RedirectURI},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, "POST", googleTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token exchange failed: %s", string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, err
	}

	claims, err := s.parseIDToken(tok.IDToken)
	if err != nil {
		return nil, err
	}

	return &Identity{
		GoogleID: claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Picture:  claims.Picture,
	}, nil
}

// parseIDToken extracts and sanity-checks the ID-token claims. The token
// arrives over the direct TLS exchange with Google, so issuer, audience and
// expiry checks are applied on the parsed claims.
func (s *GoogleService) parseIDToken(idToken string) (*googleClaims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(idToken, &googleClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse ID token: %w", err)
	}

	claims, ok := token.Claims.(*googleClaims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}

	if claims.Issuer != googleIssuer && claims.Issuer != googleIssuerAlt {
		return nil, fmt.Errorf("invalid issuer: %s", claims.Issuer)
	}
	if len(claims.Audience) == 0 || claims.Audience[0] != s.config.ClientID {
		return nil, errors.New("invalid audience")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("token expired")
	}
	return claims, nil
}
