package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthz(t *testing.T) {
	rec := newTestEnv(t).do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgUnauthorized, decodeError(t, rec))

	rec = env.do(http.MethodGet, "/me", "not-a-valid-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/me", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "admin-1", me.Identity.ID)
	assert.Equal(t, "admin", me.Role.String())
	assert.Equal(t, "admin-1", me.Profile.ID)
}

func TestMeWithSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Cookie", `sb-proj-auth-token=%7B%22access_token%22%3A%22owner-token%22%7D`)
	rec := env.serve(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var me MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "owner-1", me.Identity.ID)
	assert.Equal(t, "user", me.Role.String())
}

func TestAdminRoutes(t *testing.T) {
	env := newTestEnv(t)
	body := `{"text":"So it goes.","author":"Kurt Vonnegut","book":"Slaughterhouse-Five"}`

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"user", ownerToken, http.StatusForbidden},
		{"admin", adminToken, http.StatusCreated},
		{"super admin", superAdminToken, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/quotes", tt.token, body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	assert.Len(t, env.quotes.quotes, 2)
	for _, q := range env.quotes.quotes {
		assert.Contains(t, []string{"admin-1", "super-1"}, q.CreatedBy)
	}
}

func TestForbiddenBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodDelete, "/quotes/1", ownerToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, msgForbidden, decodeError(t, rec))
}
