package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)
	h.SetReady(false)

	rec, body := serve(t, h.LivenessHandler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestHealthChecker_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		shutdown   bool
		checkErr   error
		wantStatus int
		wantChecks map[string]any
	}{
		{
			name:       "ready",
			ready:      true,
			wantStatus: http.StatusOK,
			wantChecks: map[string]any{"ready": "ok", "shutdown": "ok", "knowledge_database": "ok"},
		},
		{
			name:       "not ready",
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]any{"ready": "not ready", "shutdown": "ok", "knowledge_database": "ok"},
		},
		{
			name:       "shutting down",
			ready:      true,
			shutdown:   true,
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]any{"ready": "ok", "shutdown": "shutting down", "knowledge_database": "ok"},
		},
		{
			name:       "dependency down",
			ready:      true,
			checkErr:   errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]any{"ready": "ok", "shutdown": "ok", "knowledge_database": "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := NewServerContext(context.Background(), nil)
			sc.AddReadinessCheck("knowledge_database", func(context.Context) error { return tt.checkErr })
			if tt.shutdown {
				require.NoError(t, sc.Shutdown())
			}
			h := NewHealthChecker(sc)
			h.SetReady(tt.ready)

			rec, body := serve(t, h.ReadinessHandler(), "/readyz")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantChecks, body["checks"])
		})
	}
}

func TestHealthChecker_Detailed(t *testing.T) {
	sc := NewServerContext(context.Background(), nil)
	sc.mu.Lock()
	sc.toolsets = []Toolset{ToolsetBooking, ToolsetWebsite}
	sc.mu.Unlock()

	h := NewHealthChecker(sc)
	mux := http.NewServeMux()
	h.RegisterHealthEndpoints(mux)

	rec, body := serve(t, mux, "/healthz/detailed")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, []any{"booking", "website"}, body["toolsets"])
	assert.NotEmpty(t, body["uptime"])
}
