package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"heritage-experiment/concordance/internal/common"
	"heritage-experiment/concordance/internal/models/dtos"
	"heritage-experiment/concordance/internal/services"
)

// GetKeys handles GET /api/v1/sessions/{sessionID}/keys
func (h *Handlers) GetKeys() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var snapshot dtos.KeysSnapshot
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			snapshot = h.deps.Services.Mapping.KeysSnapshot(session.Mapping)
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Key snapshot", snapshot)
	}
}

// CategorizeKey handles POST /api/v1/sessions/{sessionID}/keys/categorize
func (h *Handlers) CategorizeKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var req dtos.CategorizeKeyReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		var snapshot dtos.KeysSnapshot
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			if err := h.deps.Services.Mapping.Categorize(session.Mapping, req.Key, req.Category); err != nil {
				return err
			}
			snapshot = h.deps.Services.Mapping.KeysSnapshot(session.Mapping)
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Key categorized", snapshot)
	}
}

// MapKey handles POST /api/v1/sessions/{sessionID}/keys/map
func (h *Handlers) MapKey() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var req dtos.MapKeyReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		var mapping *dtos.PropertyMapping
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			m, err := h.deps.Services.Mapping.Map(session.Mapping, req.Key, req.Property, req.SubField, false)
			if err != nil {
				return err
			}
			mapping = m
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Key mapped", mapping)
	}
}

// AddManualProperty handles POST /api/v1/sessions/{sessionID}/properties/manual
func (h *Handlers) AddManualProperty() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var req dtos.ManualPropertyReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		var manual dtos.ManualProperty
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			manual = h.deps.Services.Mapping.AddManualProperty(session.Mapping, req.Property, req.DefaultValue, req.Required)
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Manual property added", manual, http.StatusCreated)
	}
}

// GetBlocks handles GET /api/v1/sessions/{sessionID}/mappings/{mappingID}/blocks
func (h *Handlers) GetBlocks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")
		mappingID := chi.URLParam(r, "mappingID")

		var blocks []dtos.TransformationBlock
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			blocks = h.deps.Services.Mapping.GetTransformationBlocks(session.Mapping, mappingID)
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Transformation blocks", blocks)
	}
}

// ReplaceBlocks handles PUT /api/v1/sessions/{sessionID}/mappings/{mappingID}/blocks
func (h *Handlers) ReplaceBlocks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")
		mappingID := chi.URLParam(r, "mappingID")

		var req dtos.ReplaceBlocksReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			return h.deps.Services.Mapping.ReplaceBlocks(session.Mapping, mappingID, req.Blocks)
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Transformation blocks replaced", req.Blocks)
	}
}

// PreviewTransform handles POST /api/v1/sessions/{sessionID}/mappings/{mappingID}/blocks/preview
func (h *Handlers) PreviewTransform() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")
		mappingID := chi.URLParam(r, "mappingID")

		var req dtos.PreviewTransformReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		var result dtos.TransformResult
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			blocks := h.deps.Services.Mapping.GetTransformationBlocks(session.Mapping, mappingID)
			result = h.deps.Services.Transform.Apply(blocks, req.RawValue)
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Transform preview", result)
	}
}
