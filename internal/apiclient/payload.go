package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

// Payload is a request body together with its encoding.
//
// It is sealed: the only implementations are JSON(...) and *Form. Which
// one a caller passes IS the choice of wire format, so nothing downstream
// has to inspect the value to guess.
type Payload interface {
	encode() (body io.Reader, contentType string, err error)
}

type jsonPayload struct {
	v any
}

// JSON sends v as application/json.
func JSON(v any) Payload {
	return jsonPayload{v: v}
}

func (p jsonPayload) encode() (io.Reader, string, error) {
	b, err := json.Marshal(p.v)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(b), "application/json", nil
}

// Form is a multipart/form-data body: plain fields plus file parts.
// Use it whenever a file (profile image, activity attachment, resume)
// travels with the request.
//
// Fields and files are written in the order they were added.
type Form struct {
	parts []formPart
}

type formPart struct {
	field    string
	value    string
	filename string
	file     io.Reader
}

// NewForm returns an empty Form.
func NewForm() *Form {
	return &Form{}
}

// Set adds a text field. Calling Set twice with the same field sends both
// values, the way list fields (mentorship_types) are encoded in a form.
func (f *Form) Set(field, value string) *Form {
	f.parts = append(f.parts, formPart{field: field, value: value})
	return f
}

// AddFile adds a file part. r is read once, when the request is sent.
func (f *Form) AddFile(field, filename string, r io.Reader) *Form {
	f.parts = append(f.parts, formPart{field: field, filename: filename, file: r})
	return f
}

// HasFile reports whether a file part named field was added.
func (f *Form) HasFile(field string) bool {
	if f == nil {
		return false
	}
	for _, p := range f.parts {
		if p.field == field && p.file != nil {
			return true
		}
	}
	return false
}

// Value returns the first text value for field.
func (f *Form) Value(field string) (string, bool) {
	if f == nil {
		return "", false
	}
	for _, p := range f.parts {
		if p.field == field && p.file == nil {
			return p.value, true
		}
	}
	return "", false
}

func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	var parts []formPart
	if f != nil {
		parts = f.parts
	}
	for _, p := range parts {
		if p.file == nil {
			if err := w.WriteField(p.field, p.value); err != nil {
				return nil, "", fmt.Errorf("writing field %q: %w", p.field, err)
			}
			continue
		}

		part, err := w.CreateFormFile(p.field, p.filename)
		if err != nil {
			return nil, "", fmt.Errorf("creating file part %q: %w", p.field, err)
		}
		if _, err := io.Copy(part, p.file); err != nil {
			return nil, "", fmt.Errorf("copying file %q: %w", p.filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
