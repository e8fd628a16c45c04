package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/secureboxed/secureboxed/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusForError maps the service error taxonomy onto HTTP status codes and
// machine-readable error codes. Every category stays distinct so a client
// can tell "not authenticated", "not found", "try later" and "data
// corrupted" apart.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "file_not_found"
	case errors.Is(err, common.ErrorStorageUnavailable):
		return http.StatusServiceUnavailable, "storage_unavailable"
	case errors.Is(err, common.ErrorDecryptionFailure):
		return http.StatusInternalServerError, "decryption_failure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusForError(err)
	writeJSON(w, status, errorResponse{Error: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
