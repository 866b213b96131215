package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gulfemperor/storefront/internal/domain"
)

// maxBodyBytes caps request bodies; no endpoint accepts uploads.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// RespondJSON writes v as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, v)
}

// DecodeJSON reads the request body into dst, rejecting unknown fields and
// oversized payloads with an EINVALID domain error.
func DecodeJSON(r *http.Request, dst any) error {
	const op = "handler.decode_json"

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return domain.Invalid(op, "Request body too large")
		case errors.Is(err, io.EOF):
			return domain.Invalid(op, "Request body must not be empty")
		default:
			return domain.Invalid(op, "Request body must be valid JSON")
		}
	}

	// A second document after the first is a malformed request.
	if dec.More() {
		return domain.Invalid(op, "Request body must contain a single JSON object")
	}
	return nil
}
