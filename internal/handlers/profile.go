package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio-web/apiserver/internal/auth"
	"github.com/portfolio-web/apiserver/internal/services"
	"github.com/portfolio-web/apiserver/types"
)

const (
	maxAvatarBytes = 5 << 20
	maxCVBytes     = 10 << 20
	formFieldFile  = "file"
	profileIDParam = "profileID"
)

// ProfileHandler provides HTTP handlers for profiles.
type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileRouter registers profile routes on the given router.
func ProfileRouter(r chi.Router, profileService *services.ProfileService, guard *Guard) {
	handler := NewProfileHandler(profileService)
	owner := guard.Require(auth.OwnerOrSuperAdmin, profileOwner)

	r.With(guard.Require(auth.AdminOrSuperAdmin, nil)).Get("/", handler.ListProfiles)
	r.Route("/{profileID}", func(r chi.Router) {
		r.Get("/", handler.GetProfile)
		r.With(owner).Put("/", handler.UpdateProfile)
		r.With(owner, requireSuperAdmin).Put("/role", handler.SetRole)
		r.With(owner).Post("/avatar", handler.UploadAvatar)
		r.With(owner).Post("/cv", handler.UploadCV)
		r.With(owner).Delete("/cv", handler.DeleteCV)
	})
}

// profileOwner treats the addressed profile as owned by its own identity.
func profileOwner(r *http.Request) (string, error) {
	return chi.URLParam(r, profileIDParam), nil
}

func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.profileService.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, err, "profile not found", "failed to list profiles")
		return
	}
	writeList(w, items, page, limit, total)
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.Get(r.Context(), chi.URLParam(r, profileIDParam))
	if err != nil {
		writeServiceError(w, err, "profile not found", "failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile changes name and avatar. Including a role is only allowed
// for super admins.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var role *types.Role
	if req.Role != nil {
		if callerFrom(r).Role != types.RoleSuperAdmin {
			writeError(w, http.StatusForbidden, "Forbidden: only super admins can change roles")
			return
		}
		parsed, ok := types.ParseRole(*req.Role)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid role")
			return
		}
		role = &parsed
	}

	updated, err := h.profileService.Update(r.Context(), chi.URLParam(r, profileIDParam), services.ProfileUpdate{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		Role:      role,
	})
	if err != nil {
		writeServiceError(w, err, "profile not found", "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProfileHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	role, ok := types.ParseRole(req.Role)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	updated, err := h.profileService.SetRole(r.Context(), chi.URLParam(r, profileIDParam), role)
	if err != nil {
		writeServiceError(w, err, "profile not found", "failed to update role")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	upload, err := readUpload(r, formFieldFile, maxAvatarBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.profileService.UploadAvatar(r.Context(), chi.URLParam(r, profileIDParam), upload)
	if err != nil {
		writeServiceError(w, err, "profile not found", "failed to upload avatar")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProfileHandler) UploadCV(w http.ResponseWriter, r *http.Request) {
	upload, err := readUpload(r, formFieldFile, maxCVBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.profileService.UploadCV(r.Context(), chi.URLParam(r, profileIDParam), upload)
	if err != nil {
		writeServiceError(w, err, "profile not found", "failed to upload cv")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProfileHandler) DeleteCV(w http.ResponseWriter, r *http.Request) {
	updated, err := h.profileService.DeleteCV(r.Context(), chi.URLParam(r, profileIDParam))
	if err != nil {
		writeServiceError(w, err, "profile not found", "failed to delete cv")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ProfileUpdateRequest is the body of PUT /profiles/{id}.
type ProfileUpdateRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Role      *string `json:"role"`
}

// RoleRequest is the body of PUT /profiles/{id}/role.
type RoleRequest struct {
	Role string `json:"role"`
}
