package handlers

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio-web/apiserver/internal/auth"
	"github.com/portfolio-web/apiserver/internal/services"
	"github.com/portfolio-web/apiserver/types"
)

// RateLimiter throttles repeated submissions from one client.
type RateLimiter interface {
	Allow(ctx context.Context, client string) bool
	Window() time.Duration
}

// ContactHandler provides HTTP handlers for the contact form.
type ContactHandler struct {
	contactService *services.ContactService
	limiter        RateLimiter
}

func NewContactHandler(contactService *services.ContactService, limiter RateLimiter) *ContactHandler {
	return &ContactHandler{contactService: contactService, limiter: limiter}
}

// ContactRouter registers contact routes on the given router.
func ContactRouter(r chi.Router, contactService *services.ContactService, limiter RateLimiter, guard *Guard) {
	handler := NewContactHandler(contactService, limiter)
	admin := guard.Require(auth.AdminOrSuperAdmin, nil)

	r.With(guard.Public()).Post("/", handler.SubmitMessage)
	r.With(admin).Get("/", handler.ListMessages)
	r.Route("/{messageID}", func(r chi.Router) {
		r.With(admin).Get("/", handler.GetMessage)
		r.With(admin).Patch("/", handler.UpdateStatus)
		r.With(admin).Delete("/", handler.DeleteMessage)
	})
}

// SubmitMessage stores a contact form message. Signed-in senders are
// linked to their identity.
func (h *ContactHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow(r.Context(), clientAddress(r)) {
		if window := h.limiter.Window(); window > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
		}
		writeError(w, http.StatusTooManyRequests, "too many messages, try again later")
		return
	}

	var req ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg := types.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Message,
	}
	if caller := callerFrom(r); !caller.Anonymous() {
		id := caller.ID()
		msg.UserID = &id
	}

	saved, err := h.contactService.Submit(r.Context(), msg)
	if err != nil {
		writeServiceError(w, err, "message not found", "failed to submit message")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *ContactHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var status types.ContactStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, ok := types.ParseContactStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		status = parsed
	}

	items, total, err := h.contactService.List(r.Context(), status, offset, limit)
	if err != nil {
		writeServiceError(w, err, "message not found", "failed to list messages")
		return
	}
	writeList(w, items, page, limit, total)
}

func (h *ContactHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "messageID", "message")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.contactService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "message not found", "failed to fetch message")
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *ContactHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "messageID", "message")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req ContactStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, ok := types.ParseContactStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	updated, err := h.contactService.MarkStatus(r.Context(), id, status)
	if err != nil {
		writeServiceError(w, err, "message not found", "failed to update message")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ContactHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "messageID", "message")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.contactService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "message not found", "failed to delete message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clientAddress is the request's remote IP without the port. RealIP
// middleware has already applied forwarding headers.
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ContactRequest is the body of POST /contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactStatusRequest is the body of PATCH /contact/{id}.
type ContactStatusRequest struct {
	Status string `json:"status"`
}
