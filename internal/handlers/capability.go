package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/portfolio-web/apiserver/internal/auth"
	"github.com/portfolio-web/apiserver/internal/store"
	"github.com/portfolio-web/apiserver/types"
)

const (
	msgUnauthorized = "Unauthorized: sign in required"
	msgForbidden    = "Forbidden: insufficient permissions"
)

// CallerResolver resolves who is making a request.
type CallerResolver interface {
	Authenticate(r *http.Request) auth.Caller
}

// OwnerFunc returns the id of the identity owning the addressed resource.
type OwnerFunc func(r *http.Request) (string, error)

// Guard turns authorization requirements into route middleware.
type Guard struct {
	resolver CallerResolver
}

func NewGuard(resolver CallerResolver) *Guard {
	return &Guard{resolver: resolver}
}

// Require authenticates the request and lets it through only when the
// caller satisfies requirement. Anonymous callers are rejected before owner
// is consulted, so storage is never read for them. The resolved caller is
// stored in the request context.
func (g *Guard) Require(requirement auth.Requirement, owner OwnerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := g.resolver.Authenticate(r)
			if requirement != auth.Public && caller.Identity == nil {
				writeDenied(w, auth.Decision{Reason: auth.DenyUnauthenticated})
				return
			}

			var ownerID string
			if owner != nil {
				id, err := owner(r)
				if err != nil {
					writeOwnerError(w, err)
					return
				}
				ownerID = id
			}

			decision := auth.Authorize(requirement, caller.Identity, caller.Role, ownerID)
			if !decision.Allowed {
				writeDenied(w, decision)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), caller)))
		})
	}
}

// Public resolves the caller without restricting access.
func (g *Guard) Public() func(http.Handler) http.Handler {
	return g.Require(auth.Public, nil)
}

// requireSuperAdmin must run after Require.
func requireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callerFrom(r).Role != types.RoleSuperAdmin {
			writeError(w, http.StatusForbidden, "Forbidden: super admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeDenied(w http.ResponseWriter, decision auth.Decision) {
	if decision.Reason == auth.DenyUnauthenticated {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	writeError(w, http.StatusForbidden, msgForbidden)
}

func writeOwnerError(w http.ResponseWriter, err error) {
	var param paramError
	switch {
	case errors.As(err, &param):
		writeError(w, http.StatusBadRequest, param.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	default:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to resolve resource owner: %v", err))
	}
}

// paramError is a malformed URL parameter met while resolving an owner.
type paramError struct {
	err error
}

func (e paramError) Error() string { return e.err.Error() }

// callerFrom returns the caller stored by Guard, or an anonymous caller.
func callerFrom(r *http.Request) auth.Caller {
	if caller, ok := auth.CallerFromContext(r.Context()); ok {
		return caller
	}
	return auth.Caller{Role: types.RoleUser}
}
