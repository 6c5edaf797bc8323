package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// tokenSource exchanges the API key pair for a bearer token. It does no
// caching itself. The classifier copies it per call with the request context
// set and hands it to oauth2.ReuseTokenSource together with the cached token.
type tokenSource struct {
	ctx       context.Context
	client    *http.Client
	tokenURL  string
	apiKey    string
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	q := url.Values{}
	q.Set("grant_type", "client_credentials")
	q.Set("client_id", s.apiKey)
	q.Set("client_secret", s.secretKey)

	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.tokenURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call token endpoint: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close token response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		return nil, &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	// The cache lifetime is fixed; a shorter server-side lifetime wins.
	ttl := s.ttl
	if server := time.Duration(tr.ExpiresIn) * time.Second; server > 0 && server < ttl {
		ttl = server
	}
	return &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   "Bearer",
		Expiry:      s.now().Add(ttl),
	}, nil
}
