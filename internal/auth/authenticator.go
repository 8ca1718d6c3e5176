package auth

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/portfolio-web/apiserver/types"
)

const tracerName = "github.com/portfolio-web/apiserver/internal/auth"

// Authenticator resolves the caller of a request: extract the credential,
// validate it with the identity provider, then look up the stored role.
// Every request is resolved from scratch; nothing is cached.
type Authenticator struct {
	extractor *Extractor
	sessions  *SessionResolver
	roles     *RoleLookup
	tracer    trace.Tracer
}

// NewAuthenticator wires the resolution chain.
func NewAuthenticator(cookiePatterns []string, provider IdentityProvider, roles RoleSource, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		extractor: NewExtractor(cookiePatterns),
		sessions:  NewSessionResolver(provider, logger),
		roles:     NewRoleLookup(roles, logger),
		tracer:    otel.Tracer(tracerName),
	}
}

// Authenticate returns the caller of r. Failures degrade to an anonymous
// caller or to RoleUser; it never returns an error.
func (a *Authenticator) Authenticate(r *http.Request) Caller {
	return a.AuthenticateContext(r.Context(), r)
}

// AuthenticateContext is Authenticate with an explicit context.
func (a *Authenticator) AuthenticateContext(ctx context.Context, r *http.Request) Caller {
	token, ok := a.extractor.Extract(r)
	if !ok {
		return Caller{Role: types.RoleUser}
	}

	identity := a.resolveSession(ctx, token)
	if identity == nil {
		return Caller{Role: types.RoleUser}
	}

	return Caller{Identity: identity, Role: a.lookupRole(ctx, identity)}
}

func (a *Authenticator) resolveSession(ctx context.Context, token string) *Identity {
	ctx, span := a.tracer.Start(ctx, "auth.resolve_session")
	defer span.End()

	identity := a.sessions.Resolve(ctx, token)
	span.SetAttributes(attribute.Bool("auth.authenticated", identity != nil))
	return identity
}

func (a *Authenticator) lookupRole(ctx context.Context, identity *Identity) types.Role {
	ctx, span := a.tracer.Start(ctx, "auth.lookup_role")
	defer span.End()

	role := a.roles.RoleOf(ctx, identity)
	span.SetAttributes(attribute.String("auth.role", role.String()))
	return role
}
