package pathstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yimbot/missionplanner/internal/api/models"
	"github.com/yimbot/missionplanner/internal/mission"
	"github.com/yimbot/missionplanner/pkg/sweep"
)

// Overview window sizes.
const (
	OverviewDays   = 7
	OverviewRecent = 5
)

// DefaultPathName is used when a path is saved without a name.
const DefaultPathName = "path"

// SaveInput is a path to persist.
type SaveInput struct {
	Name      string
	UserEmail *string
	Params    *sweep.Params
	Waypoints []sweep.Waypoint
}

// Overview is the dashboard summary.
type Overview struct {
	PathsCount  int
	PathsLast7  []DayCount
	RecentPaths []RecentPath
	GeneratedAt time.Time
}

// Service provides path storage operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new path service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Save validates and stores a path. A missing name defaults to "path" and
// missing params default to sweep.DefaultParams.
func (s *Service) Save(ctx context.Context, input SaveInput) (*Record, error) {
	params := sweep.DefaultParams()
	if input.Params != nil {
		params = *input.Params
	}

	var fieldErrors []models.FieldError
	if len(input.Waypoints) == 0 {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "waypoints", Message: "must be a non-empty list", Code: "REQUIRED"})
	}
	fieldErrors = append(fieldErrors, mission.ParamErrors(params.Validate(), "params.")...)
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = DefaultPathName
	}

	rec := &Record{
		ID:        "pth_" + uuid.New().String(),
		Name:      name,
		UserEmail: input.UserEmail,
		Params:    params,
		Waypoints: append([]sweep.Waypoint(nil), input.Waypoints...),
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("save path: %w", err)
	}
	return rec, nil
}

// SavePlan stores a generated flight path.
func (s *Service) SavePlan(ctx context.Context, fp sweep.FlightPath, email *string) (*Record, error) {
	params := fp.Params
	return s.Save(ctx, SaveInput{
		Name:      fp.Name,
		UserEmail: email,
		Params:    &params,
		Waypoints: fp.Waypoints,
	})
}

// List returns saved paths newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	opts.Limit = ClampLimit(opts.Limit)
	opts.Email = strings.TrimSpace(opts.Email)
	return s.repo.List(ctx, opts)
}

// Get retrieves a saved path.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPathNotFound) {
			return nil, ErrPathNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Export returns the stored path as a mission document.
func (s *Service) Export(ctx context.Context, id string) (sweep.Document, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return sweep.Document{}, err
	}
	return sweep.Document{
		Name:      rec.Name,
		Params:    rec.Params,
		Waypoints: rec.Waypoints,
	}, nil
}

// Regenerate re-plans a stored path from its params. Stored waypoints are
// ignored.
func (s *Service) Regenerate(ctx context.Context, id string) (sweep.FlightPath, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return sweep.FlightPath{}, err
	}
	if fieldErrors := mission.ParamErrors(rec.Params.Validate(), "params."); len(fieldErrors) > 0 {
		return sweep.FlightPath{}, &ValidationError{Errors: fieldErrors}
	}
	return sweep.Plan(rec.Name, rec.Params), nil
}

// Overview summarizes the store: total count, the last seven days
// (zero-filled, oldest first) and the five newest paths.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	stats, err := s.repo.Stats(ctx, StatsOptions{Days: OverviewDays, Recent: OverviewRecent})
	if err != nil {
		return nil, fmt.Errorf("path stats: %w", err)
	}

	now := s.now()
	recent := stats.Recent
	if recent == nil {
		recent = []RecentPath{}
	}
	return &Overview{
		PathsCount:  stats.Total,
		PathsLast7:  fillDays(now, OverviewDays, stats.Daily),
		RecentPaths: recent,
		GeneratedAt: now.UTC(),
	}, nil
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// WithClock overrides the clock used for timestamps and the overview window.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
