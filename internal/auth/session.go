package auth

import (
	"context"
	"log/slog"
	"strings"
)

// IdentityProvider validates a bearer token with the external identity
// service and returns the identity it belongs to.
type IdentityProvider interface {
	CurrentUser(ctx context.Context, token string) (*Identity, error)
}

// SessionResolver turns an extracted token into an Identity.
type SessionResolver struct {
	provider IdentityProvider
	logger   *slog.Logger
}

func NewSessionResolver(provider IdentityProvider, logger *slog.Logger) *SessionResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionResolver{provider: provider, logger: logger}
}

// Resolve returns the identity for token, or nil for anonymous. An empty
// token never reaches the provider, and provider failures are treated the same
// as a missing credential.
func (s *SessionResolver) Resolve(ctx context.Context, token string) *Identity {
	if strings.TrimSpace(token) == "" || s.provider == nil {
		return nil
	}

	identity, err := s.provider.CurrentUser(ctx, token)
	if err != nil {
		s.logger.DebugContext(ctx, "session rejected by identity provider", "error", err)
		return nil
	}
	if identity == nil || strings.TrimSpace(identity.ID) == "" {
		return nil
	}
	return identity
}
