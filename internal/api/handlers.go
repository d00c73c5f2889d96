package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"heritage-experiment/concordance/internal/common"
	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/providers"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// decodeJSON parses the request body into dst and writes the error response
// itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, initTime time.Time, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// respondServiceError maps provider error codes to HTTP status codes.
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error) {
	var provErr *providers.ProviderError
	if errors.As(err, &provErr) {
		common.RespondError(w, initTime, err, provErr.Message, mapErrorCodeToHTTPStatus(provErr.Code))
		return
	}
	common.RespondError(w, initTime, err, "An unexpected error occurred", http.StatusInternalServerError)
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(errorCode string) int {
	switch errorCode {
	// 400 Bad Request - client errors
	case constants.ErrCodeEmptyQuery,
		constants.ErrCodeInvalidCategory,
		constants.ErrCodeMalformedPayload:
		return http.StatusBadRequest

	// 404 Not Found
	case constants.ErrCodeNotFound,
		constants.ErrCodePropertyNotFound,
		constants.ErrCodeUnknownSession,
		constants.ErrCodeUnknownKey,
		constants.ErrCodeUnknownMapping:
		return http.StatusNotFound

	// 409 Conflict - superseded or disallowed transitions
	case constants.ErrCodeStaleQuery,
		constants.ErrCodeInvalidTransition,
		constants.ErrCodeDuplicateName:
		return http.StatusConflict

	// 429 / upstream failures
	case constants.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case constants.ErrCodeNetworkError,
		constants.ErrCodeSearchFailed,
		constants.ErrCodeConstraintFetchError:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
