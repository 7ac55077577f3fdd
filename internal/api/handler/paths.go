package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/yimbot/missionplanner/internal/api/middleware"
	"github.com/yimbot/missionplanner/internal/api/models"
	"github.com/yimbot/missionplanner/internal/api/response"
	"github.com/yimbot/missionplanner/internal/mission"
	"github.com/yimbot/missionplanner/internal/pathstore"
	"github.com/yimbot/missionplanner/pkg/sweep"
)

// maxDocumentBytes caps request bodies carrying waypoint lists.
const maxDocumentBytes = 4 << 20

// PathHandler handles flight path generation and storage endpoints.
type PathHandler struct {
	planner *mission.Planner
	paths   *pathstore.Service
	logger  zerolog.Logger
}

// NewPathHandler creates a new PathHandler.
func NewPathHandler(planner *mission.Planner, paths *pathstore.Service, logger zerolog.Logger) *PathHandler {
	return &PathHandler{planner: planner, paths: paths, logger: logger}
}

// Generate handles POST /v1/paths:generate - plan a serpentine scan.
func (h *PathHandler) Generate(w http.ResponseWriter, r *http.Request) {
	input := models.NewGeneratePathRequest()
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
			response.BadRequest(w, r, "invalid JSON body", nil)
			return
		}
	}

	result, err := h.planner.Plan(r.Context(), input.Name, input.Params)
	if err != nil {
		h.planError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toFlightPath(result.Path, &result.Preview, result.Cached))
}

// Import handles POST /v1/paths:import - re-plan an exported document.
func (h *PathHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		response.BadRequest(w, r, "could not read body", nil)
		return
	}

	result, err := h.planner.Import(r.Context(), data)
	if err != nil {
		h.planError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toFlightPath(result.Path, &result.Preview, result.Cached))
}

// Save handles POST /v1/paths - store a path. Missing or malformed
// waypoints are reported as 422.
func (h *PathHandler) Save(w http.ResponseWriter, r *http.Request) {
	var input models.SavePathRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	waypoints, err := sweep.ParseWaypoints(input.RawWaypoints())
	if err != nil {
		code := "INVALID"
		if errors.Is(err, sweep.ErrNoWaypoints) {
			code = "REQUIRED"
		}
		response.Unprocessable(w, r, err.Error(), []models.FieldError{
			{Field: "waypoints", Message: err.Error(), Code: code},
		})
		return
	}

	rec, err := h.paths.Save(r.Context(), pathstore.SaveInput{
		Name:      input.Name,
		UserEmail: input.UserEmail,
		Params:    input.Params,
		Waypoints: waypoints,
	})
	if err != nil {
		var validationErr *pathstore.ValidationError
		if errors.As(err, &validationErr) {
			response.Unprocessable(w, r, "validation failed", validationErr.Errors)
			return
		}
		h.storeError(w, r, err, "save path")
		return
	}

	// Stores that assign IDs themselves may not report one back.
	location := ""
	if rec.ID != "" {
		location = "/v1/paths/" + rec.ID
	}
	response.Created(w, r, location, toPathRecord(rec))
}

// List handles GET /v1/paths?limit=&email= - newest paths first.
func (h *PathHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := pathstore.ListOptions{Email: r.URL.Query().Get("email")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			response.BadRequest(w, r, "limit must be a positive integer", []models.FieldError{
				{Field: "limit", Message: "must be a positive integer", Code: "INVALID"},
			})
			return
		}
		opts.Limit = limit
	}

	records, err := h.paths.List(r.Context(), opts)
	if err != nil {
		h.storeError(w, r, err, "list paths")
		return
	}

	list := models.PathList{
		Items: make([]models.PathRecord, 0, len(records)),
		Meta:  models.PagedResponseMeta{Limit: pathstore.ClampLimit(opts.Limit), Count: len(records)},
	}
	if email := strings.TrimSpace(opts.Email); email != "" {
		list.Meta.Email = &email
	}
	for _, rec := range records {
		list.Items = append(list.Items, toPathRecord(rec))
	}

	response.JSON(w, r, http.StatusOK, list)
}

// Get handles GET /v1/paths/{pathId}.
func (h *PathHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.paths.Get(r.Context(), chi.URLParam(r, "pathId"))
	if err != nil {
		h.storeError(w, r, err, "get path")
		return
	}
	response.JSON(w, r, http.StatusOK, toPathRecord(rec))
}

// Export handles GET /v1/paths/{pathId}/export - download the mission
// document as <name>.json.
func (h *PathHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.paths.Export(r.Context(), chi.URLParam(r, "pathId"))
	if err != nil {
		h.storeError(w, r, err, "export path")
		return
	}

	body, err := sweep.MarshalDocument(doc)
	if err != nil {
		h.storeError(w, r, err, "export path")
		return
	}

	response.Attachment(w, r, exportFilename(doc.Name), "application/json", body)
}

// Regenerate handles POST /v1/paths/{pathId}:regenerate - re-plan a stored
// path from its parameters.
func (h *PathHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	fp, err := h.paths.Regenerate(r.Context(), chi.URLParam(r, "pathId"))
	if err != nil {
		var validationErr *pathstore.ValidationError
		if errors.As(err, &validationErr) {
			response.Unprocessable(w, r, "stored parameters are invalid", validationErr.Errors)
			return
		}
		h.storeError(w, r, err, "regenerate path")
		return
	}

	preview := h.planner.Preview(fp)
	response.JSON(w, r, http.StatusOK, toFlightPath(fp, &preview, false))
}

func (h *PathHandler) planError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *mission.ValidationError
	if errors.As(err, &validationErr) {
		response.BadRequest(w, r, "validation failed", validationErr.Errors)
		return
	}
	h.logger.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("plan mission")
	response.InternalError(w, r, "internal server error")
}

func (h *PathHandler) storeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if errors.Is(err, pathstore.ErrPathNotFound) {
		response.NotFound(w, r, fmt.Sprintf("path %q not found", chi.URLParam(r, "pathId")))
		return
	}
	h.logger.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg(op)
	response.ServiceUnavailable(w, r, "path store unavailable")
}

// exportFilename turns a path name into a safe download name.
func exportFilename(name string) string {
	cleaned := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
			return c
		case c == ' ':
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(name))
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		cleaned = pathstore.DefaultPathName
	}
	return cleaned + ".json"
}
