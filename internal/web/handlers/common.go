package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/facegate/facegate/internal/gate"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondGateError maps a recognition pipeline error onto an HTTP status
// and sends it as a JSON error body.
func respondGateError(w http.ResponseWriter, err error) {
	respondError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, gate.ErrInvalidInput),
		errors.Is(err, gate.ErrDecodeFailure),
		errors.Is(err, gate.ErrNoFaceDetected),
		errors.Is(err, gate.ErrMultipleFacesDetected),
		errors.Is(err, gate.ErrEncodingFailed),
		errors.Is(err, gate.ErrMissingCapture),
		errors.Is(err, gate.ErrDuplicateIdentity):
		return http.StatusBadRequest
	case errors.Is(err, gate.ErrNoMatch), errors.Is(err, gate.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gate.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, gate.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
