package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 error body, sent with Content-Type
// application/problem+json.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// TraceID echoes the request ID so clients can quote it in reports.
	TraceID string `json:"traceId"`

	// Errors lists per-field failures, keyed by JSON path (e.g. params.gap).
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError is a validation failure on one request field. Code is
// REQUIRED or INVALID.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Problem type URIs.
const (
	ProblemTypeValidation           = "https://api.yimbot.dev/problems/validation-error"
	ProblemTypeUnprocessable        = "https://api.yimbot.dev/problems/unprocessable-entity"
	ProblemTypeNotFound             = "https://api.yimbot.dev/problems/not-found"
	ProblemTypeTLSRequired          = "https://api.yimbot.dev/problems/tls-required"
	ProblemTypeUnsupportedMediaType = "https://api.yimbot.dev/problems/unsupported-media-type"
	ProblemTypeTooManyRequests      = "https://api.yimbot.dev/problems/too-many-requests"
	ProblemTypeInternal             = "https://api.yimbot.dev/problems/internal-error"
	ProblemTypeUnavailable          = "https://api.yimbot.dev/problems/service-unavailable"
)

// NewProblem creates a Problem without detail.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// WithDetail sets Detail and returns p.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance sets Instance, usually the request path, and returns p.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors sets the field errors and returns p.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write sends p with its status code.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Request-Id", p.TraceID)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p) //nolint:errcheck // client went away
}

// NewBadRequest is a 400 for requests whose parameters fail validation.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	return NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID).
		WithDetail(detail).
		WithErrors(errors)
}

// NewUnprocessable is a 422 for bodies that parse but cannot be used, e.g. a
// save request without waypoints.
func NewUnprocessable(traceID, detail string, errors []FieldError) *Problem {
	return NewProblem(ProblemTypeUnprocessable, "Unprocessable entity", http.StatusUnprocessableEntity, traceID).
		WithDetail(detail).
		WithErrors(errors)
}

func NewNotFound(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID).WithDetail(detail)
}

func NewUnsupportedMediaType(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnsupportedMediaType, "Unsupported media type", http.StatusUnsupportedMediaType, traceID).WithDetail(detail)
}

func NewTooManyRequests(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID).WithDetail(detail)
}

func NewInternalError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID).WithDetail(detail)
}

func NewServiceUnavailable(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, traceID).WithDetail(detail)
}
