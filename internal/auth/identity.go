package auth

import (
	"context"

	"github.com/portfolio-web/apiserver/types"
)

// Identity is an authenticated caller as reported by the identity provider.
// A nil *Identity stands for an anonymous caller.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Caller is the resolved "who is making this request" for one request.
type Caller struct {
	Identity *Identity
	Role     types.Role
}

// Anonymous reports whether no valid credential was resolved.
func (c Caller) Anonymous() bool {
	return c.Identity == nil
}

// ID returns the caller's identity id, or "" when anonymous.
func (c Caller) ID() string {
	if c.Identity == nil {
		return ""
	}
	return c.Identity.ID
}

type callerContextKey struct{}

// WithCaller attaches the resolved caller to ctx.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerContextKey{}, caller)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerContextKey{}).(Caller)
	return caller, ok
}
