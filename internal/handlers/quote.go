package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio-web/apiserver/internal/auth"
	"github.com/portfolio-web/apiserver/internal/services"
	"github.com/portfolio-web/apiserver/types"
)

// QuoteHandler provides HTTP handlers for book quotes.
type QuoteHandler struct {
	quoteService *services.QuoteService
}

func NewQuoteHandler(quoteService *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// QuoteRouter registers quote routes on the given router.
func QuoteRouter(r chi.Router, quoteService *services.QuoteService, guard *Guard) {
	handler := NewQuoteHandler(quoteService)
	admin := guard.Require(auth.AdminOrSuperAdmin, nil)

	r.Get("/", handler.ListQuotes)
	r.With(admin).Post("/", handler.CreateQuote)
	r.Route("/{quoteID}", func(r chi.Router) {
		r.Get("/", handler.GetQuote)
		r.With(admin).Put("/", handler.UpdateQuote)
		r.With(admin).Delete("/", handler.DeleteQuote)
	})
}

func (h *QuoteHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.quoteService.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, err, "quote not found", "failed to list quotes")
		return
	}
	writeList(w, items, page, limit, total)
}

func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "quoteID", "quote")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.quoteService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "quote not found", "failed to fetch quote")
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.quoteService.Create(r.Context(), types.Quote{
		Text:      req.Text,
		Author:    req.Author,
		Book:      req.Book,
		CreatedBy: callerFrom(r).ID(),
	})
	if err != nil {
		writeServiceError(w, err, "quote not found", "failed to create quote")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *QuoteHandler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "quoteID", "quote")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req QuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.quoteService.Update(r.Context(), types.Quote{
		ID:     id,
		Text:   req.Text,
		Author: req.Author,
		Book:   req.Book,
	})
	if err != nil {
		writeServiceError(w, err, "quote not found", "failed to update quote")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *QuoteHandler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "quoteID", "quote")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.quoteService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "quote not found", "failed to delete quote")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QuoteRequest is the body of quote create and update requests.
type QuoteRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	Book   string `json:"book"`
}
