package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		role Role
		ok   bool
	}{
		{"user", RoleUser, true},
		{"admin", RoleAdmin, true},
		{" Super_Admin ", RoleSuperAdmin, true},
		{"owner", RoleUser, false},
		{"", RoleUser, false},
	}
	for _, tt := range tests {
		role, ok := ParseRole(tt.in)
		assert.Equal(t, tt.role, role, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestRoleIsAdmin(t *testing.T) {
	assert.False(t, RoleUser.IsAdmin())
	assert.True(t, RoleAdmin.IsAdmin())
	assert.True(t, RoleSuperAdmin.IsAdmin())
}

func TestProfileJSON(t *testing.T) {
	name := "Ada"
	data, err := json.Marshal(Profile{ID: "u1", Name: &name, Role: RoleSuperAdmin})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"role":"super_admin"`)
	assert.Contains(t, string(data), `"avatar_url":null`)

	var decoded Profile
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, RoleSuperAdmin, decoded.Role)
}

func TestRoleUnmarshalRejectsUnknown(t *testing.T) {
	var role Role
	err := json.Unmarshal([]byte(`"owner"`), &role)

	var invalid *InvalidRoleError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "owner", invalid.Value)
}

func TestDefaultProfile(t *testing.T) {
	profile := DefaultProfile("u1")
	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, RoleUser, profile.Role)
	assert.Nil(t, profile.Name)
}

func TestParseContactStatus(t *testing.T) {
	status, ok := ParseContactStatus(" READ ")
	assert.True(t, ok)
	assert.Equal(t, ContactStatusRead, status)

	_, ok = ParseContactStatus("spam")
	assert.False(t, ok)
}
