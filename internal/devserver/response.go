package devserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/gradlink/internal/apperror"
)

// ERROR BODIES:
// The devserver answers errors in the same shapes the real backend does,
// so the client's error handling is exercised against realistic input:
//
//	400 with a field → {"<field>": ["message"]}
//	400 without      → {"error": "message"}
//	401 / 403 / 409  → {"error": "message"}
//	404              → {"detail": "Not found."}
//	500              → {"error": "internal_error"}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		slog.Error("unhandled devserver error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		if appErr.Field != "" {
			writeJSON(w, http.StatusBadRequest, map[string][]string{appErr.Field: {appErr.Message}})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": appErr.Message})
	case errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	case errors.Is(err, apperror.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": appErr.Message})
	case errors.Is(err, apperror.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": appErr.Message})
	case errors.Is(err, apperror.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": appErr.Message})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
	}
}

// notAuthorized is the backend's wording for a wrong-party action.
var notAuthorized = apperror.Forbidden("Not authorized")
