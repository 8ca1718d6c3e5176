package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-web/apiserver/types"
)

func TestGetUnprovisionedProfile(t *testing.T) {
	rec := newTestEnv(t).do(http.MethodGet, "/profiles/nobody", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var profile types.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "nobody", profile.ID)
	assert.Equal(t, types.RoleUser, profile.Role)
}

func TestGetProfileUpstreamFailureKeepsMessage(t *testing.T) {
	env := newTestEnv(t)
	env.profiles.err = errors.New("connection refused")

	rec := env.do(http.MethodGet, "/profiles/owner-1", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to fetch profile: connection refused", decodeError(t, rec))
}

func TestUpdateProfileCapabilities(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		body   string
		status int
	}{
		{"anonymous", "", `{"name":"Mallory"}`, http.StatusUnauthorized},
		{"other user", otherToken, `{"name":"Mallory"}`, http.StatusForbidden},
		{"admin is not owner", adminToken, `{"name":"Mallory"}`, http.StatusForbidden},
		{"owner", ownerToken, `{"name":"Olivia"}`, http.StatusOK},
		{"super admin", superAdminToken, `{"name":"Olivia"}`, http.StatusOK},
		{"owner changing role", ownerToken, `{"name":"Olivia","role":"super_admin"}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(http.MethodPut, "/profiles/owner-1", tt.token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			stored, ok := env.profiles.profiles["owner-1"]
			if tt.status == http.StatusOK {
				require.True(t, ok)
				require.NotNil(t, stored.Name)
				assert.Equal(t, "Olivia", *stored.Name)
				assert.Equal(t, types.RoleUser, stored.Role)
			} else {
				assert.False(t, ok)
			}
		})
	}
}

func TestSuperAdminUpdatesRoleInline(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPut, "/profiles/owner-1", superAdminToken, `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, types.RoleAdmin, env.profiles.profiles["owner-1"].Role)

	rec = env.do(http.MethodPut, "/profiles/owner-1", superAdminToken, `{"role":"owner"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInlineRoleChangeDoesNotUseSeparateRoleWrite(t *testing.T) {
	env := newTestEnv(t)
	env.profiles.roleErr = errors.New("connection refused")

	rec := env.do(http.MethodPut, "/profiles/owner-1", superAdminToken, `{"name":"Olivia","role":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored := env.profiles.profiles["owner-1"]
	require.NotNil(t, stored.Name)
	assert.Equal(t, "Olivia", *stored.Name)
	assert.Equal(t, types.RoleAdmin, stored.Role)
}

func TestSetRoleRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPut, "/profiles/owner-1/role", ownerToken, `{"role":"super_admin"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPut, "/profiles/owner-1/role", adminToken, `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPut, "/profiles/owner-1/role", superAdminToken, `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.RoleAdmin, env.profiles.profiles["owner-1"].Role)

	// the new role is picked up on the next request
	rec = env.do(http.MethodPost, "/quotes", ownerToken, `{"text":"Hello"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func multipartRequest(t *testing.T, path, token, field, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv(t)

	rec := env.serve(multipartRequest(t, "/profiles/owner-1/avatar", otherToken, "file", "a.png", pngHeader))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.serve(multipartRequest(t, "/profiles/owner-1/avatar", ownerToken, "file", "a.png", pngHeader))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var profile types.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.NotNil(t, profile.AvatarURL)
	assert.True(t, strings.HasPrefix(*profile.AvatarURL, "https://cdn.example.com/avatars/owner-1/"))
	assert.Contains(t, env.blobs.objects, *profile.AvatarURL)
}

func TestUploadAvatarRejectsNonImage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.serve(multipartRequest(t, "/profiles/owner-1/avatar", ownerToken, "file", "a.png", []byte("just text")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Empty(t, env.blobs.objects)
}

func TestUploadAndDeleteCV(t *testing.T) {
	env := newTestEnv(t)

	rec := env.serve(multipartRequest(t, "/profiles/owner-1/cv", ownerToken, "file", "cv.pdf", []byte("%PDF-1.7\n")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, env.blobs.objects, 1)

	rec = env.do(http.MethodDelete, "/profiles/owner-1/cv", ownerToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.blobs.objects)
	assert.Nil(t, env.profiles.profiles["owner-1"].CVURL)
}

func TestListProfilesRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/profiles", ownerToken, "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/profiles", adminToken, "").Code)
}
