package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"tally/internal/core"
	applog "tally/internal/log"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps domain errors onto HTTP statuses. Unexpected errors
// become an opaque 500; their detail stays in the log, never in the
// response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := core.AsValidationError(err); ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "invalid input",
			Fields: verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	case errors.Is(err, core.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "not authorized"})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			applog.FieldError, err,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeRateLimited(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
}
