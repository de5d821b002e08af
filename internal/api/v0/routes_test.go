package v0_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	v0 "github.com/maniaxatwork/jobs-server/internal/api/v0"
	"github.com/maniaxatwork/jobs-server/internal/service/mocks"
	"github.com/maniaxatwork/jobs-server/internal/versions"
)

func TestHealthRouter(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockJobsService(ctrl)
	mockSvc.EXPECT().CheckReadiness(gomock.Any()).Return(nil).AnyTimes()

	router := v0.HealthRouter(mockSvc)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{name: "health endpoint", path: "/health", wantStatus: http.StatusOK, wantKey: "status", wantValue: "healthy"},
		{name: "readiness endpoint - ready", path: "/readiness", wantStatus: http.StatusOK, wantKey: "status", wantValue: "ready"},
		{name: "version endpoint", path: "/version", wantStatus: http.StatusOK, wantKey: "version", wantValue: versions.Version},
		{name: "unknown endpoint", path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest("GET", tt.path, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantKey == "" {
				return
			}
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantValue, body[tt.wantKey])
		})
	}
}

func TestReadinessNotReady(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSvc := mocks.NewMockJobsService(ctrl)
	mockSvc.EXPECT().CheckReadiness(gomock.Any()).Return(errors.New("database unreachable"))

	rr := httptest.NewRecorder()
	v0.HealthRouter(mockSvc).ServeHTTP(rr, httptest.NewRequest("GET", "/readiness", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "database unreachable")
}
