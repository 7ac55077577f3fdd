// Package mission plans serpentine flight paths for the API and worker: it
// validates parameters, runs the sweep generator, renders the preview and
// caches results by parameter set.
package mission

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yimbot/missionplanner/internal/api/models"
	"github.com/yimbot/missionplanner/pkg/sweep"
)

const tracerName = "github.com/yimbot/missionplanner/internal/mission"

// DefaultName is used for missions planned without a name.
const DefaultName = "warehouse-scan"

// Config holds planner settings.
type Config struct {
	Logger    zerolog.Logger
	CacheTTL  time.Duration
	CacheSize int
	Viewport  sweep.Viewport
	Metrics   *Metrics
}

// Preview is the top-down rendering of a path.
type Preview struct {
	Viewport sweep.Viewport
	Points   []sweep.ScreenPoint
	SVGPath  string
}

// Result is a planned mission.
type Result struct {
	Path    sweep.FlightPath
	Preview Preview
	Cached  bool
}

type cacheEntry struct {
	path    sweep.FlightPath
	preview Preview
}

// Planner plans missions. It is safe for concurrent use.
type Planner struct {
	logger   zerolog.Logger
	viewport sweep.Viewport
	metrics  *Metrics
	tracer   trace.Tracer

	// cache is nil when caching is disabled.
	cache *expirable.LRU[sweep.Params, cacheEntry]
}

// NewPlanner creates a planner. A zero CacheTTL disables caching.
func NewPlanner(cfg Config) *Planner {
	vp := cfg.Viewport
	if vp == (sweep.Viewport{}) {
		vp = sweep.DefaultViewport()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 256
	}
	p := &Planner{
		logger:   cfg.Logger,
		viewport: vp,
		metrics:  cfg.Metrics,
		tracer:   otel.Tracer(tracerName),
	}
	if cfg.CacheTTL > 0 {
		p.cache = expirable.NewLRU[sweep.Params, cacheEntry](size, nil, cfg.CacheTTL)
	}
	return p
}

// Plan validates params and returns the flight path with its preview.
func (p *Planner) Plan(ctx context.Context, name string, params sweep.Params) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "mission.Plan", trace.WithAttributes(
		attribute.Float64("mission.width", params.Width),
		attribute.Float64("mission.length", params.Length),
		attribute.Float64("mission.gap", params.Gap),
	))
	defer span.End()

	if fieldErrors := ParamErrors(params.Validate(), ""); len(fieldErrors) > 0 {
		span.SetStatus(codes.Error, "invalid parameters")
		return nil, &ValidationError{Errors: fieldErrors}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}

	if entry, ok := p.cached(params); ok {
		p.metrics.recordCache(ctx, true)
		span.SetAttributes(attribute.Bool("mission.cached", true))
		return entry.result(name, true), nil
	}
	p.metrics.recordCache(ctx, false)

	fp := sweep.Plan(name, params)
	entry := cacheEntry{path: fp, preview: p.Preview(fp)}
	p.store(params, entry)
	p.metrics.recordPlan(ctx, fp)

	span.SetAttributes(
		attribute.Int("mission.waypoints", len(fp.Waypoints)),
		attribute.Float64("mission.distance_m", fp.TotalDistance()),
	)
	p.logger.Debug().
		Str("mission", name).
		Int("waypoints", len(fp.Waypoints)).
		Float64("distance_m", fp.TotalDistance()).
		Msg("mission planned")

	return entry.result(name, false), nil
}

// Import re-plans a mission document. The document's own waypoints are
// ignored; missing params fall back to the defaults.
func (p *Planner) Import(ctx context.Context, data []byte) (*Result, error) {
	doc, err := sweep.ParseDocument(data)
	if err != nil {
		return nil, &ValidationError{Errors: []models.FieldError{{Field: "document", Message: err.Error(), Code: "INVALID"}}}
	}
	return p.Plan(ctx, doc.Name, doc.Params)
}

// Preview renders fp into the planner's viewport.
func (p *Planner) Preview(fp sweep.FlightPath) Preview {
	points := fp.Project(p.viewport)
	return Preview{
		Viewport: p.viewport,
		Points:   points,
		SVGPath:  sweep.SVGPath(points),
	}
}

// CacheLen returns the number of cached parameter sets.
func (p *Planner) CacheLen() int {
	if p.cache == nil {
		return 0
	}
	return p.cache.Len()
}

func (p *Planner) cached(params sweep.Params) (cacheEntry, bool) {
	if p.cache == nil {
		return cacheEntry{}, false
	}
	return p.cache.Get(params)
}

func (p *Planner) store(params sweep.Params, entry cacheEntry) {
	if p.cache != nil {
		p.cache.Add(params, entry)
	}
}

// result copies the cached slices so callers cannot alter the cache.
func (e cacheEntry) result(name string, cached bool) *Result {
	fp := e.path
	fp.Name = name
	fp.Waypoints = append([]sweep.Waypoint(nil), e.path.Waypoints...)
	preview := e.preview
	preview.Points = append([]sweep.ScreenPoint{}, e.preview.Points...)
	return &Result{Path: fp, Preview: preview, Cached: cached}
}

// ParamErrors converts a Params.Validate error into API field errors, with
// prefix prepended to each field name.
func ParamErrors(err error, prefix string) []models.FieldError {
	if err == nil {
		return nil
	}
	var invalid *sweep.InvalidParamsError
	if !errors.As(err, &invalid) {
		return []models.FieldError{{Field: strings.TrimSuffix(prefix, "."), Message: err.Error(), Code: "INVALID"}}
	}
	out := make([]models.FieldError, 0, len(invalid.Fields))
	for _, f := range invalid.Fields {
		out = append(out, models.FieldError{Field: prefix + f.Field, Message: f.Message, Code: "INVALID"})
	}
	return out
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
