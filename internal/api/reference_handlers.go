package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"heritage-experiment/concordance/internal/common"
	"heritage-experiment/concordance/internal/models/dtos"
	"heritage-experiment/concordance/internal/services"
)

// referencesView is the full reference panel payload.
type referencesView struct {
	Detection   *dtos.DetectionResult  `json:"detection"`
	Custom      []dtos.CustomReference `json:"custom"`
	Assignments map[string][]string    `json:"assignments"`
}

// GetReferences handles GET /api/v1/sessions/{sessionID}/references
func (h *Handlers) GetReferences() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var view referencesView
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			if session.Refs.Detection == nil {
				h.deps.Services.Refs.Detect(session.Refs, session.Records)
			}
			view = referencesView{
				Detection:   session.Refs.Detection,
				Custom:      session.Refs.Custom,
				Assignments: session.Refs.Assignments,
			}
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "References", view)
	}
}

// RedetectReferences handles POST /api/v1/sessions/{sessionID}/references/detect
func (h *Handlers) RedetectReferences() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var result *dtos.DetectionResult
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			result = h.deps.Services.Refs.Detect(session.Refs, session.Records)
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "References detected", result)
	}
}

// CreateCustomReference handles POST /api/v1/sessions/{sessionID}/references/custom
func (h *Handlers) CreateCustomReference() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var req dtos.CustomReferenceReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		var ref *dtos.CustomReference
		var validationErrs []dtos.ValidationError
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			ref, validationErrs = h.deps.Services.Refs.CreateCustomReference(session.Refs, req.Name, req.Items)
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		if len(validationErrs) > 0 {
			common.RespondValidation(w, initTime, "Custom reference is invalid", validationErrs)
			return
		}

		common.RespondSuccess(w, initTime, "Custom reference created", ref, http.StatusCreated)
	}
}

// ConvertReference handles POST /api/v1/sessions/{sessionID}/references/convert
func (h *Handlers) ConvertReference() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var req dtos.ConvertReferenceReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		var ref *dtos.CustomReference
		var validationErrs []dtos.ValidationError
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			ref, validationErrs = h.deps.Services.Refs.ConvertToCustom(session.Refs, req.Type, req.Name)
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		if len(validationErrs) > 0 {
			common.RespondValidation(w, initTime, "Conversion is invalid", validationErrs)
			return
		}

		common.RespondSuccess(w, initTime, "Reference converted", ref, http.StatusCreated)
	}
}

// AssignReferences handles PUT /api/v1/sessions/{sessionID}/references/assign/{propertyID}
func (h *Handlers) AssignReferences() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")
		propertyID := chi.URLParam(r, "propertyID")

		var req dtos.AssignReferencesReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		var assigned []string
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			h.deps.Services.Refs.AssignReferencesToProperty(session.Refs, propertyID, req.ReferenceIDs)
			assigned = h.deps.Services.Refs.AssignedReferences(session.Refs, propertyID)
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "References assigned", assigned)
	}
}
