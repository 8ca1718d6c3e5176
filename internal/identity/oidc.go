package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/portfolio-web/apiserver/internal/auth"
	"golang.org/x/oauth2"
)

// OIDCUserInfo resolves tokens through an OpenID Connect UserInfo endpoint.
type OIDCUserInfo struct {
	provider *oidc.Provider
}

// NewOIDCUserInfo discovers the issuer's configuration.
func NewOIDCUserInfo(ctx context.Context, issuerURL string) (*OIDCUserInfo, error) {
	if strings.TrimSpace(issuerURL) == "" {
		return nil, errors.New("oidc issuer url is required")
	}
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init oidc provider: %w", err)
	}
	return &OIDCUserInfo{provider: provider}, nil
}

// CurrentUser returns the subject and email reported by the UserInfo endpoint.
func (o *OIDCUserInfo) CurrentUser(ctx context.Context, token string) (*auth.Identity, error) {
	info, err := o.provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	if err != nil {
		return nil, fmt.Errorf("oidc userinfo failed: %w", err)
	}
	if strings.TrimSpace(info.Subject) == "" {
		return nil, errors.New("oidc userinfo has no subject")
	}
	return &auth.Identity{ID: info.Subject, Email: info.Email}, nil
}
