package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio-web/apiserver/internal/auth"
	"github.com/portfolio-web/apiserver/internal/services"
	"github.com/portfolio-web/apiserver/types"
)

// NewsHandler provides HTTP handlers for news items.
type NewsHandler struct {
	newsService *services.NewsService
}

func NewNewsHandler(newsService *services.NewsService) *NewsHandler {
	return &NewsHandler{newsService: newsService}
}

// NewsRouter registers news routes on the given router.
func NewsRouter(r chi.Router, newsService *services.NewsService, guard *Guard) {
	handler := NewNewsHandler(newsService)
	admin := guard.Require(auth.AdminOrSuperAdmin, nil)

	r.Get("/", handler.ListNews)
	r.With(admin).Post("/", handler.CreateNews)
	r.Route("/{newsID}", func(r chi.Router) {
		r.Get("/", handler.GetNews)
		r.With(admin).Put("/", handler.UpdateNews)
		r.With(admin).Delete("/", handler.DeleteNews)
	})
}

func (h *NewsHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.newsService.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, err, "news item not found", "failed to list news")
		return
	}
	writeList(w, items, page, limit, total)
}

func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "newsID", "news")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.newsService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "news item not found", "failed to fetch news item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *NewsHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	var req NewsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.newsService.Create(r.Context(), req.toItem(0, callerFrom(r).ID()))
	if err != nil {
		writeServiceError(w, err, "news item not found", "failed to create news item")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *NewsHandler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "newsID", "news")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req NewsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.newsService.Update(r.Context(), req.toItem(id, ""))
	if err != nil {
		writeServiceError(w, err, "news item not found", "failed to update news item")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *NewsHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "newsID", "news")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.newsService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "news item not found", "failed to delete news item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NewsRequest is the body of news create and update requests.
type NewsRequest struct {
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	PublishedAt *time.Time `json:"published_at"`
}

func (req NewsRequest) toItem(id int, createdBy string) types.NewsItem {
	item := types.NewsItem{
		ID:        id,
		Title:     req.Title,
		Body:      req.Body,
		CreatedBy: createdBy,
	}
	if req.PublishedAt != nil {
		item.PublishedAt = *req.PublishedAt
	}
	return item
}
