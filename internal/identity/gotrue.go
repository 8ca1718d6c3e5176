package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/portfolio-web/apiserver/internal/auth"
	"golang.org/x/oauth2"
)

const (
	gotrueUserPath       = "/auth/v1/user"
	defaultClientTimeout = 10 * time.Second
	maxErrorBodyBytes    = 4 << 10
)

// GoTrueClient asks a GoTrue-compatible auth server who owns a token.
type GoTrueClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGoTrueClient builds a client for the auth server at baseURL. apiKey is
// the project's public (anon) key sent as the apikey header.
func NewGoTrueClient(baseURL, apiKey string, httpClient *http.Client) (*GoTrueClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("identity base url is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultClientTimeout}
	}
	return &GoTrueClient{baseURL: baseURL, apiKey: apiKey, httpClient: httpClient}, nil
}

type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CurrentUser calls GET /auth/v1/user with the token as bearer credential.
func (c *GoTrueClient) CurrentUser(ctx context.Context, token string) (*auth.Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+gotrueUserPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("identity provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var user gotrueUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	if strings.TrimSpace(user.ID) == "" {
		return nil, errors.New("identity response has no user id")
	}
	return &auth.Identity{ID: user.ID, Email: user.Email}, nil
}
