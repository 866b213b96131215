package handler

import (
	"log/slog"
	"net/http"

	"github.com/gulfemperor/storefront/internal/domain"
)

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EGONE:
		return http.StatusGone
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.ENOTIMPL:
		return http.StatusNotImplemented
	case domain.EINTERNAL:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// ErrorResponse writes a domain error as the standard JSON error envelope.
// Internal errors are logged with their operation and underlying cause; the
// client only ever sees the generic message.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"op", domain.ErrorOp(err),
			"error", err,
		)
	}

	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Code:    code,
		Message: domain.ErrorMessage(err),
	}})
}

// ValidationErrorResponse writes field-level validation failures. Falls back
// to ErrorResponse when err carries no field map.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	fields := domain.GetValidationFields(err)
	if fields == nil {
		ErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
		Code:    domain.EINVALID,
		Message: "Validation failed",
		Fields:  fields,
	}})
}

// NotFoundResponse writes a generic 404 for unmatched routes and resources.
func NotFoundResponse(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorEnvelope{Error: errorBody{
		Code:    domain.ENOTFOUND,
		Message: "Resource not found",
	}})
}

// UnauthorizedResponse writes a generic 401.
func UnauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, errorEnvelope{Error: errorBody{
		Code:    domain.EUNAUTHORIZED,
		Message: "Authentication required",
	}})
}

// ForbiddenResponse writes a generic 403.
func ForbiddenResponse(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusForbidden, errorEnvelope{Error: errorBody{
		Code:    domain.EFORBIDDEN,
		Message: "You do not have permission to access this resource",
	}})
}

// InternalErrorResponse writes a generic 500, logging err when present.
func InternalErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.Error("internal error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}

	writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: errorBody{
		Code:    domain.EINTERNAL,
		Message: "An internal error occurred. Please try again later.",
	}})
}
