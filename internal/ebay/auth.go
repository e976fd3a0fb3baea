package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cardstash/cardstash/internal/metrics"
)

const (
	defaultTokenURL = "https://api.ebay.com/identity/v1/oauth2/token" //nolint:gosec // not a credential
	defaultScope    = "https://api.ebay.com/oauth/api_scope"
)

// AppTokenProvider implements TokenProvider using the eBay OAuth2 client
// credentials flow. Every Token call performs a fresh exchange; tokens are
// never cached or shared across calls.
type AppTokenProvider struct {
	clientID     string
	clientSecret string
	tokenURL     string
	scopes       string
	client       *http.Client
}

// AuthOption configures the AppTokenProvider.
type AuthOption func(*AppTokenProvider)

// WithTokenURL overrides the default eBay token endpoint.
func WithTokenURL(u string) AuthOption {
	return func(p *AppTokenProvider) {
		p.tokenURL = u
	}
}

// WithAuthHTTPClient overrides the default HTTP client.
func WithAuthHTTPClient(c *http.Client) AuthOption {
	return func(p *AppTokenProvider) {
		p.client = c
	}
}

// NewAppTokenProvider creates a token provider for the given application
// credentials.
func NewAppTokenProvider(clientID, clientSecret string, opts ...AuthOption) *AppTokenProvider {
	p := &AppTokenProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     defaultTokenURL,
		scopes:       defaultScope,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Token performs a client-credentials exchange and returns the bearer
// token. A non-success upstream status yields *AuthError. No retry.
func (p *AppTokenProvider) Token(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {p.scopes},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	creds := base64.StdEncoding.EncodeToString(
		[]byte(p.clientID + ":" + p.clientSecret),
	)
	req.Header.Set("Authorization", "Basic "+creds)

	metrics.EbayTokenRequestsTotal.Inc()

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}

	return tokenResp.AccessToken, nil
}
