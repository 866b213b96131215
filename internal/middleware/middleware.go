package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gulfemperor/storefront/internal/domain"
)

// respondJSONError writes the standard JSON error envelope from middleware.
// Self-contained rather than calling into the handler package so middleware
// helpers stay import-cycle free.
func respondJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	logger := GetLogger(r.Context())

	attrs := []any{
		"code", code,
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	}
	if reqID := GetRequestID(r.Context()); reqID != "" {
		attrs = append(attrs, "request_id", reqID)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request rejected", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}); err != nil {
		slog.Error("failed to encode middleware error response", "error", err)
	}
}

func respondTooManyRequests(w http.ResponseWriter, r *http.Request) {
	respondJSONError(w, r, http.StatusTooManyRequests, domain.ERATELIMIT, "Too many requests")
}

func respondTooLarge(w http.ResponseWriter, r *http.Request) {
	respondJSONError(w, r, http.StatusRequestEntityTooLarge, domain.EINVALID, "Request body too large")
}
