package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"heritage-experiment/concordance/internal/common"
	"heritage-experiment/concordance/internal/models/dtos"
)

// SaveProfile handles POST /api/v1/sessions/{sessionID}/profiles
func (h *Handlers) SaveProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var req dtos.SaveProfileReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			common.RespondError(w, initTime, nil, "name is required", http.StatusBadRequest)
			return
		}

		resp, err := h.deps.Services.Sessions.SaveProfile(r.Context(), sessionID, strings.TrimSpace(req.Name))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Profile saved", resp, http.StatusCreated)
	}
}

// ApplyProfile handles POST /api/v1/sessions/{sessionID}/profiles/apply
func (h *Handlers) ApplyProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var req dtos.ApplyProfileReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		applied, err := h.deps.Services.Sessions.ApplyProfile(r.Context(), sessionID, req.ProfileID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Profile applied", map[string]int{"applied": applied})
	}
}

// ListProfiles handles GET /api/v1/profiles
func (h *Handlers) ListProfiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		profiles, err := h.deps.Services.Sessions.ListProfiles(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Profiles", profiles)
	}
}
