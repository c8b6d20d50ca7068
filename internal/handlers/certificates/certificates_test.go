package certificates

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/dto"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*CertificateHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func uploadRequest(t *testing.T, projectID string, withFile bool) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("projectId", projectID))
	if withFile {
		fw, err := mw.CreateFormFile("certificate", "cert.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest("POST", "/api/admin/certificates", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadHandler(t *testing.T) {
	handler, service := NewMock(t)
	createdAt := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		projectID    string
		withFile     bool
		prepareMock  func()
		expectedCode int
	}{
		{
			name:      "Certificate issued",
			projectID: "5",
			withFile:  true,
			prepareMock: func() {
				service.EXPECT().Upload(gomock.Any(), 5, gomock.Any(), "cert.png").DoAndReturn(
					func(_ context.Context, projectID int, file io.Reader, _ string) (*domain.Certificate, error) {
						content, err := io.ReadAll(file)
						require.NoError(t, err)
						assert.Equal(t, "png", string(content))
						return &domain.Certificate{ID: 1, ProjectID: projectID, FilePath: "uploads/certificates/view/1-cert.png", CreatedAt: createdAt}, nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:      "File missing",
			projectID: "5",
			prepareMock: func() {
				service.EXPECT().Upload(gomock.Any(), 5, nil, "").Return(nil, apperr.Validation("Certificate file is required"))
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:      "Project not completed",
			projectID: "6",
			withFile:  true,
			prepareMock: func() {
				service.EXPECT().Upload(gomock.Any(), 6, gomock.Any(), "cert.png").
					Return(nil, apperr.Forbidden("Certificates can only be issued for completed projects"))
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "Invalid project id",
			projectID:    "abc",
			withFile:     true,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			rr := httptest.NewRecorder()
			handler.Upload(rr, uploadRequest(t, tt.projectID, tt.withFile))
			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestListForProjectHandler(t *testing.T) {
	handler, service := NewMock(t)
	createdAt := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	service.EXPECT().ListForProject(gomock.Any(), 5).Return([]domain.Certificate{
		{ID: 1, ProjectID: 5, FilePath: "uploads/certificates/view/a.png", CreatedAt: createdAt},
	}, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "5")
	req := httptest.NewRequest("GET", "/api/projects/5/certificates", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()
	handler.ListForProject(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []dto.CertificateResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, []dto.CertificateResponseDTO{
		{ID: 1, ProjectID: 5, FilePath: "uploads/certificates/view/a.png", CreatedAt: "2026-10-18T10:00:00Z"},
	}, resp)
}
