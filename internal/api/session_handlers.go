package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"heritage-experiment/concordance/internal/common"
	"heritage-experiment/concordance/internal/models/dtos"
	"heritage-experiment/concordance/internal/services"
)

// CreateSession handles POST /api/v1/sessions
func (h *Handlers) CreateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CreateSessionReq
		if !decodeJSON(w, r, initTime, &req) {
			return
		}
		if strings.TrimSpace(req.SourceURL) == "" {
			common.RespondError(w, initTime, nil, "source_url is required", http.StatusBadRequest)
			return
		}

		resp, err := h.deps.Services.Sessions.CreateSession(r.Context(), req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Session created", resp, http.StatusCreated)
	}
}

// GetSession handles GET /api/v1/sessions/{sessionID}
func (h *Handlers) GetSession() http.HandlerFunc {
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

		common.RespondSuccess(w, initTime, "Session snapshot", snapshot)
	}
}

// DeleteSession handles DELETE /api/v1/sessions/{sessionID}
func (h *Handlers) DeleteSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		if _, err := h.deps.Services.Sessions.Get(sessionID); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		h.deps.Services.Sessions.Delete(sessionID)
		common.RespondSuccess(w, initTime, "Session deleted", nil)
	}
}

// ShareSession handles POST /api/v1/sessions/{sessionID}/share
func (h *Handlers) ShareSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		sessionID := chi.URLParam(r, "sessionID")

		if h.deps.Services.URLSigner == nil {
			common.RespondError(w, initTime, nil, "Share links are not enabled", http.StatusNotImplemented)
			return
		}

		if _, err := h.deps.Services.Sessions.Get(sessionID); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		token, err := h.deps.Services.URLSigner.GeneratePresignedURL(sessionID, 15*time.Minute)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to generate share link", http.StatusInternalServerError)
			return
		}

		resp := dtos.ShareLinkResp{
			URL:       r.Host + "/shared?token=" + token,
			ExpiresIn: 900,
		}
		common.RespondSuccess(w, initTime, "Share link generated", resp, http.StatusCreated)
	}
}

// OpenSharedSession handles GET /shared. The token is single-use: it is
// consumed on first successful validation.
func (h *Handlers) OpenSharedSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if h.deps.Services.URLSigner == nil {
			common.RespondError(w, initTime, nil, "Share links are not enabled", http.StatusNotImplemented)
			return
		}

		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			common.RespondError(w, initTime, nil, "token is required", http.StatusBadRequest)
			return
		}

		token, err := h.deps.Services.URLSigner.ValidateToken(r.Context(), tokenString)
		if err != nil {
			common.RespondError(w, initTime, err, "Invalid share link", http.StatusUnauthorized)
			return
		}

		var snapshot dtos.KeysSnapshot
		err = h.deps.Services.Sessions.WithSession(token.SessionID, func(session *services.Session) error {
			snapshot = h.deps.Services.Mapping.KeysSnapshot(session.Mapping)
			return nil
		})
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		if err := h.deps.Services.URLSigner.MarkTokenAsUsed(r.Context(), token.TokenID); err != nil {
			common.RespondError(w, initTime, err, "Failed to consume share link", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Shared session snapshot", snapshot)
	}
}
