package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/dto"
	"github.com/GlebRadaev/projecthub/internal/service/projectservice"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"github.com/GlebRadaev/projecthub/pkg/auth"
	"github.com/GlebRadaev/projecthub/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*ProjectHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func asUser(r *http.Request, userID int, role string) *http.Request {
	ctx := context.WithValue(r.Context(), auth.UserIDKey, userID)
	ctx = context.WithValue(ctx, auth.RoleKey, role)
	return r.WithContext(ctx)
}

func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func multipartRequest(t *testing.T, url string, fields map[string]string, fileField, fileName string) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("content"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest("POST", url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	var resp utils.Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Message
}

func TestRequestHandler(t *testing.T) {
	handler, service := NewMock(t)
	fields := map[string]string{"userId": "3", "projectName": "Irrigation", "domain": "IoT", "deliveryDate": "2024-04-01"}

	tests := []struct {
		name          string
		fields        map[string]string
		file          bool
		userID        int
		role          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name:   "Project submitted with reference file",
			fields: fields,
			file:   true,
			userID: 3,
			role:   domain.RoleStudent,
			prepareMock: func() {
				service.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, in projectservice.SubmitInput) (*domain.Project, error) {
					assert.Equal(t, 3, in.UserID)
					assert.Equal(t, "brief.pdf", in.FileName)
					content, _ := io.ReadAll(in.File)
					assert.Equal(t, "content", string(content))
					return &domain.Project{ID: 1, Code: "HT070320241", Status: domain.ProjectPending}, nil
				})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:   "Missing required fields",
			fields: map[string]string{"userId": "3", "domain": "IoT"},
			userID: 3,
			role:   domain.RoleStudent,
			prepareMock: func() {
				service.EXPECT().Submit(gomock.Any(), gomock.Any()).
					Return(nil, apperr.Validation("userId, projectName, domain and deliveryDate are required"))
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "userId, projectName, domain and deliveryDate are required",
		},
		{
			name:          "Submitting for someone else",
			fields:        fields,
			userID:        4,
			role:          domain.RoleStudent,
			prepareMock:   func() {},
			expectedCode:  http.StatusForbidden,
			expectedError: "You can only submit projects for yourself",
		},
		{
			name:   "Admin submits on behalf of a student",
			fields: fields,
			userID: 1,
			role:   domain.RoleAdmin,
			prepareMock: func() {
				service.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(&domain.Project{ID: 2, UserID: 3}, nil)
			},
			expectedCode: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			fileField := ""
			if tt.file {
				fileField = "referenceFile"
			}
			req := asUser(multipartRequest(t, "/api/projects/request", tt.fields, fileField, "brief.pdf"), tt.userID, tt.role)
			rr := httptest.NewRecorder()

			handler.Request(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeMessage(t, rr))
			}
		})
	}
}

func TestApproveHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		id           string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Approved",
			id:   "5",
			body: `{"price":1000,"adminNotes":"ok"}`,
			prepareMock: func() {
				service.EXPECT().Approve(gomock.Any(), 5, projectservice.ApproveInput{Price: 1000, AdminNotes: "ok"}).
					Return(&domain.Project{ID: 5, Status: domain.ProjectApproved, TotalAmount: 1000}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Zero price",
			id:   "5",
			body: `{"price":0}`,
			prepareMock: func() {
				service.EXPECT().Approve(gomock.Any(), 5, projectservice.ApproveInput{}).
					Return(nil, apperr.Validation("Price must be greater than zero"))
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Bad id",
			id:           "x",
			body:         `{"price":1000}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Unknown project",
			id:   "9",
			body: `{"price":1000}`,
			prepareMock: func() {
				service.EXPECT().Approve(gomock.Any(), 9, gomock.Any()).Return(nil, apperr.NotFound("Project not found"))
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			req := withID(httptest.NewRequest("POST", "/api/admin/projects/approve/"+tt.id, strings.NewReader(tt.body)), tt.id)
			rr := httptest.NewRecorder()
			handler.Approve(rr, req)
			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestDeleteHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().Delete(gomock.Any(), 5).Return(apperr.Forbidden("Project has successful payments and can't be deleted"))
	rr := httptest.NewRecorder()
	handler.Delete(rr, withID(httptest.NewRequest("DELETE", "/api/admin/projects/5", nil), "5"))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Project has successful payments and can't be deleted", decodeMessage(t, rr))

	service.EXPECT().Delete(gomock.Any(), 6).Return(nil)
	rr = httptest.NewRecorder()
	handler.Delete(rr, withID(httptest.NewRequest("DELETE", "/api/admin/projects/6", nil), "6"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCompleteHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().Complete(gomock.Any(), 5, gomock.Not(gomock.Nil()), "final.zip").
		Return(&domain.Project{ID: 5, Status: domain.ProjectCompleted, SolutionFile: "uploads/solutions/x.zip"}, nil)

	req := withID(multipartRequest(t, "/api/admin/projects/complete/5", nil, "solutionFile", "final.zip"), "5")
	rr := httptest.NewRecorder()
	handler.Complete(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp dto.ProjectResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, domain.ProjectCompleted, resp.Status)
}

func TestListHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().ListAll(gomock.Any(), "pending").Return([]domain.ProjectWithOwner{
		{Project: domain.Project{ID: 1, Status: domain.ProjectPending}, OwnerName: "Asha"},
	}, nil)
	rr := httptest.NewRecorder()
	handler.List(rr, httptest.NewRequest("GET", "/api/admin/projects?status=pending", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []dto.ProjectResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Asha", resp[0].OwnerName)
}

func TestSummaryHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().Summary(gomock.Any()).Return(&domain.Summary{OpenReports: 2, TotalCollected: 1500}, nil)
	rr := httptest.NewRecorder()
	handler.Summary(rr, httptest.NewRequest("GET", "/api/admin/summary", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp dto.SummaryResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 2, resp.OpenReports)
}
