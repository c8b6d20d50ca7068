package utils

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"github.com/go-chi/chi/v5"
)

// MaxUploadSize bounds multipart bodies held in memory before spilling to disk.
const MaxUploadSize = 32 << 20

// IDParam reads a positive integer URL parameter.
func IDParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid " + name)
	}
	return id, nil
}

func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

// FormFile returns the uploaded file under field, or a nil file when none was sent.
// The caller closes a non-nil file.
func FormFile(r *http.Request, field string) (multipart.File, string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", apperr.Validation("Invalid file upload")
	}
	return file, header.Filename, nil
}

// ParseMultipart accepts multipart and urlencoded bodies alike.
func ParseMultipart(r *http.Request) error {
	err := r.ParseMultipartForm(MaxUploadSize)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return apperr.Validation("Invalid form data")
	}
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return apperr.Validation("Invalid form data")
		}
	}
	return nil
}
