package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio-web/apiserver/internal/auth"
	"github.com/portfolio-web/apiserver/internal/services"
	"github.com/portfolio-web/apiserver/internal/store"
	"github.com/portfolio-web/apiserver/types"
)

// NoteHandler provides HTTP handlers for learning notes.
type NoteHandler struct {
	noteService *services.NoteService
}

func NewNoteHandler(noteService *services.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// NoteRouter registers note routes on the given router.
func NoteRouter(r chi.Router, noteService *services.NoteService, guard *Guard) {
	handler := NewNoteHandler(noteService)
	owner := guard.Require(auth.OwnerOrSuperAdmin, handler.noteOwner)

	r.With(guard.Public()).Get("/", handler.ListNotes)
	r.With(guard.Require(auth.Authenticated, nil)).Post("/", handler.CreateNote)
	r.Route("/{noteID}", func(r chi.Router) {
		r.With(guard.Public()).Get("/", handler.GetNote)
		r.With(owner).Put("/", handler.UpdateNote)
		r.With(owner).Delete("/", handler.DeleteNote)
	})
}

func (h *NoteHandler) noteOwner(r *http.Request) (string, error) {
	id, err := parseIntParam(r, "noteID", "note")
	if err != nil {
		return "", paramError{err: err}
	}
	return h.noteService.AuthorOf(r.Context(), id)
}

// ListNotes lists published notes. Callers listing their own notes with
// ?author=<own id> also see their drafts.
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	caller := callerFrom(r)
	filter := store.NoteFilter{
		AuthorID: strings.TrimSpace(r.URL.Query().Get("author")),
		Tag:      r.URL.Query().Get("tag"),
	}
	filter.IncludeDrafts = filter.AuthorID != "" && filter.AuthorID == caller.ID()

	items, total, err := h.noteService.List(r.Context(), filter, offset, limit)
	if err != nil {
		writeServiceError(w, err, "note not found", "failed to list notes")
		return
	}
	writeList(w, items, page, limit, total)
}

// GetNote returns a note. Drafts are reported as missing to everyone but
// their author and super admins.
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "noteID", "note")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.noteService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "note not found", "failed to fetch note")
		return
	}

	if !note.Published {
		caller := callerFrom(r)
		if caller.ID() != note.AuthorID && caller.Role != types.RoleSuperAdmin {
			writeError(w, http.StatusNotFound, "note not found")
			return
		}
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.noteService.Create(r.Context(), types.Note{
		AuthorID:  callerFrom(r).ID(),
		Title:     req.Title,
		Body:      req.Body,
		Tags:      req.Tags,
		Published: req.Published,
	})
	if err != nil {
		writeServiceError(w, err, "note not found", "failed to create note")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "noteID", "note")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.noteService.Update(r.Context(), types.Note{
		ID:        id,
		Title:     req.Title,
		Body:      req.Body,
		Tags:      req.Tags,
		Published: req.Published,
	})
	if err != nil {
		writeServiceError(w, err, "note not found", "failed to update note")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "noteID", "note")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.noteService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "note not found", "failed to delete note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NoteRequest is the body of note create and update requests.
type NoteRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Tags      []string `json:"tags"`
	Published bool     `json:"published"`
}
