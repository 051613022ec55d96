package api

import (
	"encoding/json"
	"net/http"

	"lens/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error          string             `json:"error"`
	Code           string             `json:"code"`
	Details        interface{}        `json:"details,omitempty"`
	SuggestedFixes []errors.FixAction `json:"suggestedFixes,omitempty"`
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := ErrorResponse{
		Error: err.Error(),
	}

	if lensErr, ok := err.(*errors.LensError); ok {
		resp.Code = string(lensErr.Code)
		resp.Details = lensErr.Details
		resp.SuggestedFixes = lensErr.SuggestedFixes
	} else {
		resp.Code = string(errors.InternalError)
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// WriteLensError writes a LensError with automatic status code mapping
func WriteLensError(w http.ResponseWriter, err *errors.LensError) {
	WriteError(w, err, MapErrorToStatus(err.Code))
}

// MapErrorToStatus maps lens error codes to HTTP status codes
func MapErrorToStatus(code errors.ErrorCode) int {
	switch code {
	case errors.BlameUnavailable:
		return http.StatusNotFound // 404
	case errors.RevisionFetchFailed:
		return http.StatusNotFound // 404
	case errors.SymbolsUnavailable:
		return http.StatusServiceUnavailable // 503
	case errors.NotARepository:
		return http.StatusServiceUnavailable // 503
	case errors.Timeout:
		return http.StatusGatewayTimeout // 504
	case errors.ConfigInvalid:
		return http.StatusBadRequest // 400
	case errors.Unauthorized:
		return http.StatusUnauthorized // 401
	case errors.CacheError:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// BadRequest writes a 400 Bad Request error
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, &errors.LensError{
		Code:    errors.ConfigInvalid,
		Message: message,
	}, http.StatusBadRequest)
}

// NotFound writes a 404 Not Found error
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, &errors.LensError{
		Code:    errors.BlameUnavailable,
		Message: message,
	}, http.StatusNotFound)
}

// Unauthorized writes a 401 Unauthorized error
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, &errors.LensError{
		Code:    errors.Unauthorized,
		Message: message,
	}, http.StatusUnauthorized)
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, &errors.LensError{
		Code:    errors.InternalError,
		Message: message,
	}, http.StatusInternalServerError)
}
