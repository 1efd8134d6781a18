package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/tripnest/backend/internal/domain"
)

// ErrorDetail is the body of every non-2xx response:
// {"error":{"code":"not_found","message":"trip not found"}}.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// requestError rejects a request before it reaches the service layer
// (e.g. missing or malformed body, bad path parameter).
func requestError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "bad_request", message)
}

// serviceError maps a service error onto a response. resource names what
// was looked up, for the 404 message ("trip" → "trip not found").
// Anything that is not a domain sentinel is logged and reported as a 500
// without detail.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", resource+" not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", unwrapMessage(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part after a wrapped sentinel.
// e.g. "service.TripService.Update: validation error: name is required" → "name is required"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// decodeJSON reads a JSON request body into dst. On failure it writes the
// response (400, or 413 past the body limit) and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		requestError(w, "request body is required")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			requestError(w, "request body is required")
			return false
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return false
		}
		requestError(w, "malformed request body: "+err.Error())
		return false
	}
	return true
}
