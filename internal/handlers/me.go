package handlers

import (
	"net/http"

	"github.com/portfolio-web/apiserver/internal/auth"
	"github.com/portfolio-web/apiserver/internal/services"
	"github.com/portfolio-web/apiserver/types"
)

// MeResponse describes the signed-in caller.
type MeResponse struct {
	Identity *auth.Identity `json:"identity"`
	Role     types.Role     `json:"role"`
	Profile  types.Profile  `json:"profile"`
}

// MeHandler returns the caller's identity and profile.
func MeHandler(profileService *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := callerFrom(r)
		if caller.Anonymous() {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		profile, err := profileService.Get(r.Context(), caller.ID())
		if err != nil {
			writeServiceError(w, err, "profile not found", "failed to load profile")
			return
		}

		writeJSON(w, http.StatusOK, MeResponse{
			Identity: caller.Identity,
			Role:     caller.Role,
			Profile:  profile,
		})
	}
}
