package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-web/apiserver/types"
)

func seedNotes(env *testEnv) {
	env.notes.notes[1] = types.Note{ID: 1, AuthorID: "owner-1", Title: "Published", Published: true}
	env.notes.notes[2] = types.Note{ID: 2, AuthorID: "owner-1", Title: "Draft"}
}

func TestCreateNoteSetsAuthor(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/notes", "", `{"title":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/notes", otherToken, `{"title":"Channels","tags":["Go"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var note types.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
	assert.Equal(t, "other-1", note.AuthorID)
	assert.Equal(t, []string{"go"}, note.Tags)
}

func TestUpdateNoteOwnership(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"missing note anonymous", "/notes/99", "", http.StatusUnauthorized},
		{"bad id anonymous", "/notes/abc", "", http.StatusUnauthorized},
		{"missing note rejected token", "/notes/99", "expired-token", http.StatusUnauthorized},
		{"missing note owner", "/notes/99", ownerToken, http.StatusNotFound},
		{"bad id", "/notes/abc", ownerToken, http.StatusBadRequest},
		{"anonymous", "/notes/1", "", http.StatusUnauthorized},
		{"other user", "/notes/1", otherToken, http.StatusForbidden},
		{"admin", "/notes/1", adminToken, http.StatusForbidden},
		{"author", "/notes/1", ownerToken, http.StatusOK},
		{"super admin", "/notes/1", superAdminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			seedNotes(env)

			rec := env.do(http.MethodPut, tt.path, tt.token, `{"title":"Edited","published":true}`)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestDeleteNote(t *testing.T) {
	env := newTestEnv(t)
	seedNotes(env)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodDelete, "/notes/1", otherToken, "").Code)
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/notes/1", ownerToken, "").Code)
	assert.NotContains(t, env.notes.notes, 1)
}

func TestDeleteNoteRejectedTokenSkipsOwnerLookup(t *testing.T) {
	env := newTestEnv(t)
	env.notes.err = errors.New("connection refused")

	rec := env.do(http.MethodDelete, "/notes/abc", "expired-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, msgUnauthorized, decodeError(t, rec))

	rec = env.do(http.MethodDelete, "/notes/1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, env.notes.authorLookups)
}

func TestDraftVisibility(t *testing.T) {
	env := newTestEnv(t)
	seedNotes(env)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/notes/2", "", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/notes/2", otherToken, "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/notes/2", ownerToken, "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/notes/2", superAdminToken, "").Code)

	var list ListResponse[types.Note]
	rec := env.do(http.MethodGet, "/notes?author=owner-1", otherToken, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	rec = env.do(http.MethodGet, "/notes?author=owner-1", ownerToken, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Total)
}
