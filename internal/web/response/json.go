package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/conduit-lang/contractabi/runtime/metadata"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSON renders v with the given status
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error renders a standard error response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, &ErrorResponse{
		Error:   errorCodeFromStatus(status),
		Message: message,
	})
}

// RegistryError maps registry lookup failures to HTTP statuses
func RegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, metadata.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, metadata.ErrNotLoaded):
		Error(w, http.StatusServiceUnavailable, "no manifest loaded")
	default:
		Error(w, http.StatusInternalServerError, err.Error())
	}
}

// errorCodeFromStatus maps HTTP status codes to error codes
func errorCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusUnprocessableEntity:
		return "unprocessable"
	case http.StatusInternalServerError:
		return "internal_error"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	default:
		return "error"
	}
}
