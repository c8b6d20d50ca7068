package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GlebRadaev/projecthub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name          string
		config        *config.Config
		expectedError bool
	}{
		{name: "Valid log level info", config: &config.Config{LogLvl: "info"}},
		{name: "Valid log level warn", config: &config.Config{LogLvl: "warn"}},
		{name: "Valid log level error", config: &config.Config{LogLvl: "error"}},
		{name: "Valid log level debug", config: &config.Config{LogLvl: "debug"}},
		{name: "Invalid log level", config: &config.Config{LogLvl: "invalid"}, expectedError: true},
		{name: "JSON format", config: &config.Config{LogLvl: "info", LogFmt: "json"}},
		{name: "Unknown format", config: &config.Config{LogLvl: "info", LogFmt: "xml"}, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.config)

			if tt.expectedError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	h := AccessLog(&buf)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/domains", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), "/api/domains")
	assert.Contains(t, buf.String(), "418")
}
