package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Profile represents application-level data about an authenticated identity.
// Its ID is the identity provider's user id, one profile per identity.
type Profile struct {
	// ID is the identity provider's user id this profile belongs to.
	ID string `json:"id" db:"id"`

	// Name is the optional display name.
	Name *string `json:"name" db:"name"`

	// AvatarURL is the optional public URL of the avatar image.
	AvatarURL *string `json:"avatar_url" db:"avatar_url"`

	// Role is the authorization level of the profile owner.
	Role Role `json:"role" db:"role"`

	// CVURL is the optional public URL of the uploaded CV document.
	CVURL *string `json:"cv_url" db:"cv_url"`

	// CreatedAt is the timestamp when the profile was provisioned.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the profile.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultProfile returns the profile used for identities that have not been
// provisioned yet.
func DefaultProfile(id string) Profile {
	return Profile{ID: id, Role: RoleUser}
}

// Role represents the authorization level stored on a profile.
type Role int

// Supported roles, ordered from least to most privileged.
const (
	// RoleUser is the default role of every identity.
	RoleUser Role = iota

	// RoleAdmin may moderate site content.
	RoleAdmin

	// RoleSuperAdmin may additionally edit any profile and assign roles.
	RoleSuperAdmin
)

// ParseRole maps a stored role string to a Role. Unknown values map to
// RoleUser; ok reports whether the value was recognised.
func ParseRole(value string) (role Role, ok bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "user":
		return RoleUser, true
	case "admin":
		return RoleAdmin, true
	case "super_admin":
		return RoleSuperAdmin, true
	default:
		return RoleUser, false
	}
}

// String returns the representation stored in the database and used in API
// responses.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleSuperAdmin:
		return "super_admin"
	default:
		return "user"
	}
}

// IsAdmin reports whether the role carries admin capability.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	role, ok := ParseRole(raw)
	if !ok {
		return &InvalidRoleError{Value: raw}
	}
	*r = role
	return nil
}

// InvalidRoleError is returned when a role string is not one of the known roles.
type InvalidRoleError struct {
	Value string
}

func (e *InvalidRoleError) Error() string {
	return "invalid role: " + e.Value
}
