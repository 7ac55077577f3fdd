package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yimbot/missionplanner/internal/api"
	"github.com/yimbot/missionplanner/internal/api/models"
	"github.com/yimbot/missionplanner/internal/mission"
	"github.com/yimbot/missionplanner/internal/pathstore"
	"github.com/yimbot/missionplanner/internal/resilience"
)

func newTestRouter() http.Handler {
	logger := zerolog.New(io.Discard)
	return api.NewRouter(api.RouterConfig{
		Version:     "test",
		BuildTime:   "2024-01-01T00:00:00Z",
		Logger:      logger,
		Planner:     mission.NewPlanner(mission.Config{Logger: logger, CacheTTL: time.Minute}),
		Paths:       pathstore.NewService(pathstore.NewInMemoryRepository()),
		StoreName:   "memory",
		Registry:    resilience.NewRegistry(),
		CORSOrigins: []string{"http://localhost:3000"},
	})
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthCheck(t *testing.T) {
	w := serve(newTestRouter(), http.MethodGet, "/v1/ops/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
}

func TestRouter_ReadinessCheck(t *testing.T) {
	w := serve(newTestRouter(), http.MethodGet, "/v1/ops/ready", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	w := serve(newTestRouter(), http.MethodGet, "/v1/ops/status", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.HealthStatusOK, status.Status)
	require.Len(t, status.Subsystems, 1)
	assert.Equal(t, "path-store:memory", status.Subsystems[0].Name)
	assert.Empty(t, status.Providers)
}

func TestRouter_GenerateSaveListExport(t *testing.T) {
	router := newTestRouter()

	w := serve(router, http.MethodPost, "/v1/paths:generate", `{"name":"aisle-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var fp models.FlightPath
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fp))
	assert.Len(t, fp.Waypoints, 18)

	save, err := json.Marshal(map[string]any{"name": fp.Name, "params": fp.Params, "waypoints": fp.Waypoints})
	require.NoError(t, err)
	w = serve(router, http.MethodPost, "/v1/paths", string(save))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec models.PathRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))

	w = serve(router, http.MethodGet, "/v1/paths", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list models.PathList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, rec.ID, list.Items[0].ID)

	w = serve(router, http.MethodGet, "/v1/paths/"+rec.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/v1/paths/"+rec.ID+"/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=aisle-1.json", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	w = serve(router, http.MethodPost, "/v1/paths/"+rec.ID+":regenerate", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/v1/stats/overview", "")
	require.Equal(t, http.StatusOK, w.Code)
	var overview models.StatsOverview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
	assert.Equal(t, 1, overview.PathsCount)
}

func TestRouter_SaveWithoutWaypoints(t *testing.T) {
	w := serve(newTestRouter(), http.MethodPost, "/v1/paths", `{"name":"empty"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_RejectsNonJSONBodies(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/paths:generate", strings.NewReader("width=40"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/paths", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RequestID_Generated(t *testing.T) {
	w := serve(newTestRouter(), http.MethodGet, "/v1/ops/health", "")

	assert.Contains(t, w.Header().Get("X-Request-Id"), "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	newTestRouter().ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	w := serve(newTestRouter(), http.MethodGet, "/v1/nonexistent", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeNotFound, problem.Type)
	assert.Equal(t, "/v1/nonexistent", problem.Instance)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	w := serve(newTestRouter(), http.MethodDelete, "/v1/stats/overview", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_RequireTLS(t *testing.T) {
	router := api.NewRouter(api.RouterConfig{
		Logger:     zerolog.Nop(),
		Planner:    mission.NewPlanner(mission.Config{Logger: zerolog.Nop()}),
		Paths:      pathstore.NewService(pathstore.NewInMemoryRepository()),
		RequireTLS: true,
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "http")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
