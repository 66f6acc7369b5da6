package api

import (
	"encoding/json"
	"net/http"

	apperrors "tradecoach/internal/errors"
)

// ErrorBody is the JSON shape of an API error.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Common error codes
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeNoData        = "NO_DATA"
)

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// parseJSONBody parses a JSON request body.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// mapError translates domain errors to HTTP status and code.
func mapError(err error) (int, string, string) {
	switch {
	case apperrors.Is(err, apperrors.ErrTriggerNotFound):
		return http.StatusNotFound, ErrCodeNotFound, err.Error()
	case apperrors.Is(err, apperrors.ErrDataNotFound):
		return http.StatusNotFound, ErrCodeNoData, err.Error()
	case apperrors.Is(err, apperrors.ErrNoScoreHistory):
		return http.StatusConflict, ErrCodeNoData, err.Error()
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "an internal error occurred"
	}
}
