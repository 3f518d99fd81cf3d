package devserver

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/sakif/gradlink/internal/apperror"
)

const maxUpload = 10 << 20

// input is a request body flattened to form semantics, whichever encoding
// the client chose. Endpoints that accept JSON or multipart (profile,
// activities, referrals) read through it, so both encodings behave alike.
type input struct {
	values map[string][]string
	files  map[string]*multipart.FileHeader
}

func readInput(r *http.Request) (*input, error) {
	in := &input{values: map[string][]string{}, files: map[string]*multipart.FileHeader{}}

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			return nil, apperror.ValidationFailed("", "malformed multipart body")
		}
		in.values = r.MultipartForm.Value
		for field, fhs := range r.MultipartForm.File {
			in.files[field] = fhs[0]
		}
	case "application/json", "":
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxUpload))
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			return in, nil
		}
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, apperror.ValidationFailed("", "JSON parse error")
		}
		for k, v := range obj {
			in.values[k] = flatten(v)
		}
	default:
		return nil, apperror.ValidationFailed("", fmt.Sprintf("unsupported media type %q", mt))
	}
	return in, nil
}

func flatten(v any) []string {
	switch v := v.(type) {
	case nil:
		return []string{""}
	case string:
		return []string{v}
	case bool:
		return []string{strconv.FormatBool(v)}
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return nil
}

func (in *input) has(field string) bool {
	_, ok := in.values[field]
	return ok
}

func (in *input) str(field string) string {
	if v := in.values[field]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (in *input) int(field string) (int64, error) {
	s := in.str(field)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, apperror.ValidationFailed(field, "A valid integer is required.")
	}
	return n, nil
}

func (in *input) bool(field string) bool {
	b, _ := strconv.ParseBool(in.str(field))
	return b
}

func (in *input) ints(field string) ([]int64, error) {
	var out []int64
	for _, s := range in.values[field] {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, apperror.ValidationFailed(field, fmt.Sprintf("Incorrect type. Expected pk value, received %q.", s))
		}
		out = append(out, n)
	}
	return out, nil
}

func (in *input) file(field string) *multipart.FileHeader {
	return in.files[field]
}

// decodeJSON is for the JSON-only endpoints.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUpload)).Decode(v); err != nil {
		return apperror.ValidationFailed("", "JSON parse error")
	}
	return nil
}
