package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"heritage-experiment/concordance/internal/common"
	"heritage-experiment/concordance/internal/models/dtos"
	"heritage-experiment/concordance/internal/services"
)

// OpenReconciliation handles POST /api/v1/sessions/{sessionID}/reconcile/open
func (h *Handlers) OpenReconciliation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var req dtos.OpenReconciliationReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		var record *dtos.ReconciliationRecord
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			// The mapping's pipeline derives the initial working value.
			blocks := h.deps.Services.Mapping.GetTransformationBlocks(session.Mapping, req.Key.MappingID)
			derived := h.deps.Services.Transform.Apply(blocks, req.RawValue)
			record = h.deps.Services.Recon.Open(session.Recon, req.Key, derived.Value)
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Reconciliation record", record)
	}
}

// ConfirmReconciliation handles POST /api/v1/sessions/{sessionID}/reconcile/confirm
func (h *Handlers) ConfirmReconciliation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var req dtos.ConfirmReconciliationReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		var record *dtos.ReconciliationRecord
		var validationErrs []dtos.ValidationError
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			property := dtos.PropertyRef{Datatype: req.Match.Datatype}
			if m, ok := session.Mapping.Mappings[req.Key.MappingID]; ok {
				property = m.Property
			}
			record, validationErrs = h.deps.Services.Recon.Confirm(session.Recon, req.Key, req.Match, property)
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		if len(validationErrs) > 0 {
			common.RespondValidation(w, initTime, "Confirmation blocked by validation errors", validationErrs)
			return
		}

		common.RespondSuccess(w, initTime, "Value reconciled", record)
	}
}

// SkipReconciliation handles POST /api/v1/sessions/{sessionID}/reconcile/skip
func (h *Handlers) SkipReconciliation() http.HandlerFunc {
	return h.transition("Value skipped", func(state *services.ReconState, key dtos.RecordKey) (*dtos.ReconciliationRecord, error) {
		return h.deps.Services.Recon.Skip(state, key)
	})
}

// ReopenReconciliation handles POST /api/v1/sessions/{sessionID}/reconcile/reopen
func (h *Handlers) ReopenReconciliation() http.HandlerFunc {
	return h.transition("Value reopened", func(state *services.ReconState, key dtos.RecordKey) (*dtos.ReconciliationRecord, error) {
		return h.deps.Services.Recon.Reopen(state, key)
	})
}

// ResetReconciliation handles POST /api/v1/sessions/{sessionID}/reconcile/reset
func (h *Handlers) ResetReconciliation() http.HandlerFunc {
	return h.transition("Value reset", func(state *services.ReconState, key dtos.RecordKey) (*dtos.ReconciliationRecord, error) {
		return h.deps.Services.Recon.Reset(state, key)
	})
}

// transition factors the shared shape of the skip/reopen/reset endpoints.
func (h *Handlers) transition(message string, fn func(*services.ReconState, dtos.RecordKey) (*dtos.ReconciliationRecord, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var req dtos.RecordKeyReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		var record *dtos.ReconciliationRecord
		err := h.deps.Services.Sessions.WithSession(sessionID, func(session *services.Session) error {
			rec, err := fn(session.Recon, req.Key)
			if err != nil {
				return err
			}
			record = rec
			return nil
		})
		if err != nil {
			common.RespondError(w, initTime, err, err.Error(), http.StatusConflict)
			return
		}

		common.RespondSuccess(w, initTime, message, record)
	}
}

// SearchEntities handles POST /api/v1/sessions/{sessionID}/reconcile/search.
// Superseded queries respond 409 so the client simply drops them.
func (h *Handlers) SearchEntities() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		var req dtos.EntitySearchReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		if _, err := h.deps.Services.Sessions.Get(sessionID); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		// Runs outside the session lock: a slow KB call must not block other
		// session mutations, and the coordinator has its own synchronization.
		resp, err := h.deps.Services.Search.Search(r.Context(), req.Key, req.Query)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Entity matches", resp)
	}
}

// SearchLanguages handles GET /api/v1/languages?query=
func (h *Handlers) SearchLanguages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		query := r.URL.Query().Get("query")

		languages, _, err := h.deps.Services.KB.SearchLanguages(r.Context(), query)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Languages", languages)
	}
}

// GetPropertyConstraints handles GET /api/v1/properties/{propertyID}
func (h *Handlers) GetPropertyConstraints() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		propertyID := chi.URLParam(r, "propertyID")

		property, err := h.deps.Services.Constraints.Get(r.Context(), propertyID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Property constraints", property)
	}
}
