package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio-web/apiserver/internal/auth"
	"github.com/portfolio-web/apiserver/internal/services"
	"github.com/portfolio-web/apiserver/types"
)

const (
	maxGalleryImageBytes = 15 << 20
	formFieldImage       = "image"
	formFieldTitle       = "title"
	formFieldDesc        = "description"
)

// GalleryHandler provides HTTP handlers for the photo gallery.
type GalleryHandler struct {
	galleryService *services.GalleryService
}

func NewGalleryHandler(galleryService *services.GalleryService) *GalleryHandler {
	return &GalleryHandler{galleryService: galleryService}
}

// GalleryRouter registers gallery routes on the given router.
func GalleryRouter(r chi.Router, galleryService *services.GalleryService, guard *Guard) {
	handler := NewGalleryHandler(galleryService)
	admin := guard.Require(auth.AdminOrSuperAdmin, nil)

	r.Get("/", handler.ListItems)
	r.With(admin).Post("/", handler.CreateItem)
	r.Route("/{itemID}", func(r chi.Router) {
		r.Get("/", handler.GetItem)
		r.With(admin).Put("/", handler.UpdateItem)
		r.With(admin).Delete("/", handler.DeleteItem)
	})
}

func (h *GalleryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.galleryService.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, err, "gallery item not found", "failed to list gallery")
		return
	}
	writeList(w, items, page, limit, total)
}

func (h *GalleryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "itemID", "gallery item")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.galleryService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "gallery item not found", "failed to fetch gallery item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// CreateItem accepts a multipart form with title, description and image.
func (h *GalleryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	image, err := readUpload(r, formFieldImage, maxGalleryImageBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.galleryService.Create(r.Context(), types.GalleryItem{
		Title:       r.FormValue(formFieldTitle),
		Description: r.FormValue(formFieldDesc),
		CreatedBy:   callerFrom(r).ID(),
	}, image)
	if err != nil {
		writeServiceError(w, err, "gallery item not found", "failed to create gallery item")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *GalleryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "itemID", "gallery item")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req GalleryUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.galleryService.Update(r.Context(), types.GalleryItem{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, err, "gallery item not found", "failed to update gallery item")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *GalleryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "itemID", "gallery item")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.galleryService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "gallery item not found", "failed to delete gallery item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GalleryUpdateRequest is the body of PUT /gallery/{id}.
type GalleryUpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
