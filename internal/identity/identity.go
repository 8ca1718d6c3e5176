// Package identity holds the identity-provider clients used to validate
// bearer tokens.
package identity

import (
	"context"
	"fmt"

	"github.com/portfolio-web/apiserver/config"
	"github.com/portfolio-web/apiserver/internal/auth"
)

var (
	_ auth.IdentityProvider = (*JWTVerifier)(nil)
	_ auth.IdentityProvider = (*GoTrueClient)(nil)
	_ auth.IdentityProvider = (*OIDCUserInfo)(nil)
)

// NewFromConfig builds the provider selected by cfg.Mode.
func NewFromConfig(ctx context.Context, cfg config.IdentityConfig) (auth.IdentityProvider, error) {
	switch cfg.Mode {
	case config.IdentityModeJWT:
		return NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	case config.IdentityModeGoTrue:
		return NewGoTrueClient(cfg.BaseURL, cfg.AnonKey, nil)
	case config.IdentityModeOIDC:
		return NewOIDCUserInfo(ctx, cfg.OIDCIssuerURL)
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Mode)
	}
}
