package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yimbot/missionplanner/internal/api/models"
)

func TestProblem_NewProblem(t *testing.T) {
	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation error",
		http.StatusBadRequest,
		"req_test123",
	)

	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, "Validation error", p.Title)
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "req_test123", p.TraceID)
	assert.Empty(t, p.Detail)
	assert.Empty(t, p.Instance)
	assert.Nil(t, p.Errors)
}

func TestProblem_Builders(t *testing.T) {
	fieldErrors := []models.FieldError{
		{Field: "params.gap", Message: "must be greater than 0", Code: "INVALID"},
		{Field: "waypoints", Message: "required", Code: "REQUIRED"},
	}

	p := models.NewProblem(models.ProblemTypeValidation, "Validation error", http.StatusBadRequest, "req_test123").
		WithDetail("params.gap must be greater than 0").
		WithInstance("/v1/paths:generate").
		WithErrors(fieldErrors)

	assert.Equal(t, "params.gap must be greater than 0", p.Detail)
	assert.Equal(t, "/v1/paths:generate", p.Instance)
	require.Len(t, p.Errors, 2)
	assert.Equal(t, "REQUIRED", p.Errors[1].Code)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("req_test123", "invalid input", []models.FieldError{
		{Field: "params.width", Message: "must be finite"},
	})
	p.Instance = "/v1/paths"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, result.Type)
	assert.Equal(t, "Validation error", result.Title)
	assert.Equal(t, http.StatusBadRequest, result.Status)
	assert.Equal(t, "invalid input", result.Detail)
	assert.Equal(t, "/v1/paths", result.Instance)
	assert.Equal(t, "req_test123", result.TraceID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "params.width", result.Errors[0].Field)
}

func TestNewBadRequest(t *testing.T) {
	p := models.NewBadRequest("req_123", "invalid data", nil)

	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, "Validation error", p.Title)
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "invalid data", p.Detail)
	assert.Equal(t, "req_123", p.TraceID)
}

func TestNewUnprocessable(t *testing.T) {
	p := models.NewUnprocessable("req_123", "waypoints must be a non-empty list", []models.FieldError{
		{Field: "waypoints", Message: "required", Code: "REQUIRED"},
	})

	assert.Equal(t, models.ProblemTypeUnprocessable, p.Type)
	assert.Equal(t, "Unprocessable entity", p.Title)
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "REQUIRED", p.Errors[0].Code)
}

func TestNewNotFound(t *testing.T) {
	p := models.NewNotFound("req_123", "path pth_missing not found")

	assert.Equal(t, models.ProblemTypeNotFound, p.Type)
	assert.Equal(t, "Not found", p.Title)
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Equal(t, "path pth_missing not found", p.Detail)
}

func TestNewUnsupportedMediaType(t *testing.T) {
	p := models.NewUnsupportedMediaType("req_123", "Content-Type must be application/json")

	assert.Equal(t, models.ProblemTypeUnsupportedMediaType, p.Type)
	assert.Equal(t, "Unsupported media type", p.Title)
	assert.Equal(t, http.StatusUnsupportedMediaType, p.Status)
}

func TestNewTooManyRequests(t *testing.T) {
	p := models.NewTooManyRequests("req_123", "rate limit exceeded")

	assert.Equal(t, models.ProblemTypeTooManyRequests, p.Type)
	assert.Equal(t, "Too many requests", p.Title)
	assert.Equal(t, http.StatusTooManyRequests, p.Status)
	assert.Equal(t, "rate limit exceeded", p.Detail)
}

func TestNewInternalError(t *testing.T) {
	p := models.NewInternalError("req_123", "store error")

	assert.Equal(t, models.ProblemTypeInternal, p.Type)
	assert.Equal(t, "Internal server error", p.Title)
	assert.Equal(t, http.StatusInternalServerError, p.Status)
	assert.Equal(t, "store error", p.Detail)
}

func TestNewServiceUnavailable(t *testing.T) {
	p := models.NewServiceUnavailable("req_123", "path store unavailable")

	assert.Equal(t, models.ProblemTypeUnavailable, p.Type)
	assert.Equal(t, "Service unavailable", p.Title)
	assert.Equal(t, http.StatusServiceUnavailable, p.Status)
	assert.Equal(t, "path store unavailable", p.Detail)
}

func TestSavePathRequest_RawWaypoints(t *testing.T) {
	var req models.SavePathRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"a","points":[[1,2,3]]}`), &req))
	assert.JSONEq(t, `[[1,2,3]]`, string(req.RawWaypoints()))

	require.NoError(t, json.Unmarshal([]byte(`{"waypoints":[[4,5]],"points":[[1,2,3]]}`), &req))
	assert.JSONEq(t, `[[4,5]]`, string(req.RawWaypoints()))
}

func TestTimestamp_RoundTrip(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2026-03-04T05:06:07+02:00"`), &ts))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-04T03:06:07Z"`, string(data))
}

func TestNewGeneratePathRequest_KeepsDefaults(t *testing.T) {
	req := models.NewGeneratePathRequest()
	require.NoError(t, json.Unmarshal([]byte(`{"name":"aisle-4","params":{"gap":5}}`), &req))

	assert.Equal(t, "aisle-4", req.Name)
	assert.Equal(t, 5.0, req.Params.Gap)
	assert.Equal(t, 40.0, req.Params.Width)
	assert.Equal(t, 6.0, req.Params.MaxAlt)
}
