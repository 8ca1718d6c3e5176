package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/portfolio-web/apiserver/internal/store"
	"github.com/portfolio-web/apiserver/types"
)

// RoleSource reads the stored role of a profile.
type RoleSource interface {
	RoleByID(ctx context.Context, id string) (types.Role, error)
}

// RoleLookup resolves the role of an authenticated identity.
type RoleLookup struct {
	source RoleSource
	logger *slog.Logger
}

func NewRoleLookup(source RoleSource, logger *slog.Logger) *RoleLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleLookup{source: source, logger: logger}
}

// RoleOf returns the identity's role. A missing profile or a failed query
// yields RoleUser, never an elevated role.
func (l *RoleLookup) RoleOf(ctx context.Context, identity *Identity) types.Role {
	if identity == nil || l.source == nil {
		return types.RoleUser
	}

	role, err := l.source.RoleByID(ctx, identity.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.logger.WarnContext(ctx, "role lookup failed, using default role",
				"user_id", identity.ID,
				"error", err,
			)
		}
		return types.RoleUser
	}
	return role
}
