package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/smartfit/internal/errs"
)

// errorBody is the uniform error payload.
type errorBody struct {
	Message   string    `json:"message"`
	Errors    []string  `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, msg string, details []string) {
	if details == nil {
		details = []string{}
	}
	writeJSON(w, status, errorBody{
		Message:   msg,
		Errors:    details,
		Timestamp: time.Now().UTC(),
		Status:    status,
	})
}

// writeError maps domain errors onto HTTP statuses. Only unexpected
// failures are logged, at error level.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	if ve, ok := errs.AsValidation(err); ok {
		writeErrorBody(w, http.StatusBadRequest, "Validation failed", ve.Violations)
		return
	}
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, errs.ErrUnauthorized):
		writeErrorBody(w, http.StatusUnauthorized, "Authentication failed", nil)
	case errors.Is(err, errs.ErrRateLimited):
		writeErrorBody(w, http.StatusTooManyRequests, "Too many attempts", nil)
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromCtx(r.Context())),
			zap.Error(err),
		)
		writeErrorBody(w, http.StatusInternalServerError, "An error occurred", nil)
	}
}
