package auth

import (
	"errors"

	"github.com/portfolio-web/apiserver/types"
)

// Requirement is the capability an operation demands of its caller.
type Requirement int

const (
	// Public operations are open to everyone.
	Public Requirement = iota

	// Authenticated operations need any valid identity.
	Authenticated

	// OwnerOrSuperAdmin operations need the resource owner or a super admin.
	OwnerOrSuperAdmin

	// AdminOrSuperAdmin operations need the admin or super_admin role.
	AdminOrSuperAdmin
)

func (r Requirement) String() string {
	switch r {
	case Public:
		return "PUBLIC"
	case Authenticated:
		return "AUTHENTICATED"
	case OwnerOrSuperAdmin:
		return "OWNER_OR_SUPER_ADMIN"
	case AdminOrSuperAdmin:
		return "ADMIN_OR_SUPER_ADMIN"
	default:
		return "UNKNOWN"
	}
}

// DenyReason explains a rejected Decision.
type DenyReason int

const (
	// NotDenied is the reason of an allowing Decision.
	NotDenied DenyReason = iota

	// DenyUnauthenticated means no valid credential was resolved.
	DenyUnauthenticated

	// DenyForbidden means the credential is valid but lacks role or ownership.
	DenyForbidden
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Err returns nil for an allowing decision, otherwise ErrUnauthenticated or
// ErrForbidden.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == DenyUnauthenticated {
		return ErrUnauthenticated
	}
	return ErrForbidden
}

var (
	allow           = Decision{Allowed: true, Reason: NotDenied}
	unauthenticated = Decision{Reason: DenyUnauthenticated}
	forbidden       = Decision{Reason: DenyForbidden}
)

// Authorize decides whether identity with role may perform an operation with
// the given requirement. resourceOwnerID is the owner of the target resource,
// "" when the operation has none. Authentication is always checked before
// role or ownership.
func Authorize(requirement Requirement, identity *Identity, role types.Role, resourceOwnerID string) Decision {
	if requirement == Public {
		return allow
	}
	if identity == nil {
		return unauthenticated
	}

	switch requirement {
	case Authenticated:
		return allow
	case OwnerOrSuperAdmin:
		if (resourceOwnerID != "" && identity.ID == resourceOwnerID) || role == types.RoleSuperAdmin {
			return allow
		}
		return forbidden
	case AdminOrSuperAdmin:
		if role == types.RoleAdmin || role == types.RoleSuperAdmin {
			return allow
		}
		return forbidden
	default:
		return forbidden
	}
}
