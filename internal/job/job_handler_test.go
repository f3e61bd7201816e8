package job

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hamlet-bot/hamlet/common"
	"github.com/hamlet-bot/hamlet/internal/dto"
	"github.com/hamlet-bot/hamlet/internal/mocks"
	"github.com/hamlet-bot/hamlet/middleware"
)

func setupRouter(svc *mocks.JobServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())

	h := NewJobHandler(svc)
	r.POST("/jobs", h.Create)
	r.GET("/jobs/:id", h.Get)
	r.GET("/jobs", h.List)
	return r
}

func TestJobHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mocks.JobServiceMock)
		expectedStatus int
	}{
		{
			name: "successful enqueue",
			body: `{"owner_id":"user-1","kind":"object_baseline","prompt":"a turnip"}`,
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("CreateJob", mock.Anything, mock.Anything).
					Return(&dto.JobResponseDTO{ID: 1, Status: "pending"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid request body JSON",
			body:           "{invalid json}",
			setupMock:      func(m *mocks.JobServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing required fields",
			body:           `{"owner_id":"user-1"}`,
			setupMock:      func(m *mocks.JobServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "service rejects kind",
			body: `{"owner_id":"user-1","kind":"tapestry","prompt":"p"}`,
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("CreateJob", mock.Anything, mock.Anything).
					Return(nil, common.Errf(http.StatusBadRequest, "invalid job kind"))
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcMock := new(mocks.JobServiceMock)
			tt.setupMock(svcMock)
			r := setupRouter(svcMock)

			req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svcMock.AssertExpectations(t)
		})
	}
}

func TestJobHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(*mocks.JobServiceMock)
		expectedStatus int
	}{
		{
			name: "found",
			path: "/jobs/1",
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("GetJobByID", mock.Anything, uint(1)).
					Return(&dto.JobResponseDTO{ID: 1, Status: "completed"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid id",
			path:           "/jobs/abc",
			setupMock:      func(m *mocks.JobServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not found",
			path: "/jobs/99",
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("GetJobByID", mock.Anything, uint(99)).
					Return(nil, common.Errf(http.StatusNotFound, "job not found"))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcMock := new(mocks.JobServiceMock)
			tt.setupMock(svcMock)
			r := setupRouter(svcMock)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestJobHandler_List(t *testing.T) {
	svcMock := new(mocks.JobServiceMock)
	svcMock.On("ListJobs", mock.Anything, "user-1").
		Return([]dto.JobResponseDTO{{ID: 1}, {ID: 2}}, nil)
	r := setupRouter(svcMock)

	req := httptest.NewRequest(http.MethodGet, "/jobs?owner=user-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var out []dto.JobResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out, 2)
}

func TestJobHandler_List_RequiresOwner(t *testing.T) {
	r := setupRouter(new(mocks.JobServiceMock))

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
