package github

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

// MaxJWTDuration is the longest lifetime GitHub accepts for an App JWT.
const MaxJWTDuration = 10 * time.Minute

// tokenExpiryMargin is subtracted from installation token expiry so that
// oauth2.ReuseTokenSource refreshes before GitHub starts rejecting it.
const tokenExpiryMargin = time.Minute

// JWTGenerator signs GitHub App JWTs.
type JWTGenerator struct {
	appID      string
	privateKey *rsa.PrivateKey
}

// NewJWTGenerator creates a generator for appID from a PEM-encoded RSA key.
func NewJWTGenerator(appID string, privateKeyPEM []byte) (*JWTGenerator, error) {
	if appID == "" || appID == "0" {
		return nil, errors.New("app ID cannot be empty")
	}

	privateKey, err := parsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &JWTGenerator{
		appID:      appID,
		privateKey: privateKey,
	}, nil
}

// GenerateToken creates a JWT valid for the maximum allowed duration.
func (g *JWTGenerator) GenerateToken() (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Issuer: g.appID,
		// Backdated to tolerate clock drift against GitHub.
		IssuedAt:  jwt.NewNumericDate(now.Add(-30 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(MaxJWTDuration - 30*time.Second)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(g.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func parsePrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	if block.Type == "RSA PRIVATE KEY" {
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not RSA")
	}
	return rsaKey, nil
}

// InstallationToken is an installation access token returned by GitHub.
type InstallationToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenExchanger trades App JWTs for installation access tokens.
type TokenExchanger struct {
	httpClient *http.Client
	baseURL    string
}

// TokenExchangerOption configures a TokenExchanger.
type TokenExchangerOption func(*TokenExchanger)

// WithHTTPClient sets the HTTP client used for the exchange.
func WithHTTPClient(client *http.Client) TokenExchangerOption {
	return func(t *TokenExchanger) {
		t.httpClient = client
	}
}

// WithBaseURL points the exchanger at a different API root.
func WithBaseURL(url string) TokenExchangerOption {
	return func(t *TokenExchanger) {
		t.baseURL = strings.TrimSuffix(url, "/")
	}
}

// NewTokenExchanger creates an exchanger for api.github.com unless overridden.
func NewTokenExchanger(opts ...TokenExchangerOption) *TokenExchanger {
	t := &TokenExchanger{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.github.com",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ExchangeToken requests an installation token using a signed App JWT.
func (t *TokenExchanger) ExchangeToken(appJWT string, installationID int64) (*InstallationToken, error) {
	if appJWT == "" {
		return nil, errors.New("JWT cannot be empty")
	}
	if installationID <= 0 {
		return nil, errors.New("installation ID must be positive")
	}

	url := fmt.Sprintf("%s/app/installations/%d/access_tokens", t.baseURL, installationID)
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+appJWT)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("token exchange failed (status %d): %s", resp.StatusCode, apiErr.Message)
	}

	var token InstallationToken
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.Token == "" {
		return nil, errors.New("token exchange returned an empty token")
	}
	return &token, nil
}

// InstallationTokenSource is an oauth2.TokenSource minting installation
// tokens. Wrap it in oauth2.ReuseTokenSource to cache between calls.
type InstallationTokenSource struct {
	Generator      *JWTGenerator
	Exchanger      *TokenExchanger
	InstallationID int64
}

// Token implements oauth2.TokenSource.
func (s *InstallationTokenSource) Token() (*oauth2.Token, error) {
	appJWT, err := s.Generator.GenerateToken()
	if err != nil {
		return nil, err
	}

	installation, err := s.Exchanger.ExchangeToken(appJWT, s.InstallationID)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: installation.Token,
		TokenType:   "token",
		Expiry:      installation.ExpiresAt.Add(-tokenExpiryMargin),
	}, nil
}

// apiRoot turns a GitHub Enterprise host URL into its REST API root.
func apiRoot(baseURL string) string {
	root := strings.TrimSuffix(baseURL, "/")
	if !strings.HasSuffix(root, "/api/v3") {
		root += "/api/v3"
	}
	return root
}
