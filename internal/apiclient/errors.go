package apiclient

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/sakif/gradlink/internal/apperror"
)

// Error is a response the backend answered with a non-2xx status.
//
// The raw body is kept as-is so callers can show the backend's own field
// errors. errors.Is works against the apperror sentinels:
//
//	400 → apperror.ErrValidation
//	401 → apperror.ErrUnauthorized
//	403 → apperror.ErrForbidden
//	404 → apperror.ErrNotFound
//	409 → apperror.ErrConflict
type Error struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *Error) Error() string {
	msg := e.Message()
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, msg)
}

func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return apperror.ErrValidation
	case http.StatusUnauthorized:
		return apperror.ErrUnauthorized
	case http.StatusForbidden:
		return apperror.ErrForbidden
	case http.StatusNotFound:
		return apperror.ErrNotFound
	case http.StatusConflict:
		return apperror.ErrConflict
	}
	return nil
}

// Message pulls a human-readable message out of the body.
//
// The backend answers errors in a few shapes: {"error": "..."},
// {"detail": "..."}, {"message": "..."} or a field map like
// {"resume": ["This field is required."]}. The first matching shape wins (field maps in key order);
// a body that is not JSON is returned trimmed.
func (e *Error) Message() string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &obj); err != nil {
		return strings.TrimSpace(string(e.Body))
	}

	for _, key := range []string{"error", "detail", "message", "non_field_errors"} {
		if msg := firstString(obj[key]); msg != "" {
			return msg
		}
	}
	for _, field := range slices.Sorted(maps.Keys(obj)) {
		if msg := firstString(obj[field]); msg != "" {
			return field + ": " + msg
		}
	}
	return ""
}

// firstString accepts "msg" or ["msg", ...].
func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}
