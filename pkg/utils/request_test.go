package utils

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestIDParam(t *testing.T) {
	tests := []struct {
		value     string
		expected  int
		expectErr bool
	}{
		{"12", 12, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tt.value)
			id, err := IDParam(r, "id")
			if tt.expectErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Note string `json:"note"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"note":"hi"}`))
	assert.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "hi", v.Note)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{broken`))
	assert.ErrorIs(t, DecodeJSON(r, &v), apperr.ErrValidation)
}

func TestFormFile(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Bug"))
	fw, err := mw.CreateFormFile("file", "shot.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, ParseMultipart(r))
	assert.Equal(t, "Bug", r.FormValue("title"))

	file, name, err := FormFile(r, "file")
	require.NoError(t, err)
	defer file.Close()
	content, _ := io.ReadAll(file)
	assert.Equal(t, "shot.png", name)
	assert.Equal(t, "png", string(content))

	missing, _, err := FormFile(r, "other")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
