package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-web/apiserver/types"
)

const contactBody = `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"Hello there"}`

func TestSubmitContactAnonymous(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(contactBody))
	req.RemoteAddr = "203.0.113.7:51234"
	rec := env.serve(req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, env.contacts.messages, 1)
	assert.Nil(t, env.contacts.messages[1].UserID)
	assert.Equal(t, types.ContactStatusNew, env.contacts.messages[1].Status)
	assert.Equal(t, []string{"203.0.113.7"}, env.limiter.clients)
}

func TestSubmitContactSignedIn(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/contact", ownerToken, contactBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, env.contacts.messages[1].UserID)
	assert.Equal(t, "owner-1", *env.contacts.messages[1].UserID)
}

func TestSubmitContactRateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.limiter.allow = false

	rec := env.do(http.MethodPost, "/contact", "", contactBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
	assert.Empty(t, env.contacts.messages)
}

func TestSubmitContactValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/contact", "", `{"name":"Ada","email":"nope","message":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/contact", "", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactModeration(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/contact", "", contactBody).Code)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/contact", "", "").Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/contact", ownerToken, "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/contact?status=new", adminToken, "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/contact?status=spam", adminToken, "").Code)

	rec := env.do(http.MethodPatch, "/contact/1", adminToken, `{"status":"read"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.ContactStatusRead, env.contacts.messages[1].Status)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPatch, "/contact/9", adminToken, `{"status":"read"}`).Code)
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/contact/1", superAdminToken, "").Code)
}
